// Package memory keeps categories, transactions and matching rules in process.
// It backs the demo mode of both binaries and serves as the Store in tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type rule struct {
	familyID   string
	pattern    string
	categoryID uuid.UUID
	createdAt  time.Time
}

type Store struct {
	clock clock.Clock

	mu           sync.RWMutex
	categories   map[uuid.UUID]category.Category
	transactions map[uuid.UUID]transaction.Transaction
	rules        []rule

	// importMu serialises imports the way the Postgres advisory lock does.
	importMu sync.Mutex
}

func New(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System{}
	}

	return &Store{
		clock:        clk,
		categories:   make(map[uuid.UUID]category.Category),
		transactions: make(map[uuid.UUID]transaction.Transaction),
	}
}

func (s *Store) ListCategories(_ context.Context, familyID string) ([]*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*category.Category

	for _, c := range s.categories {
		if c.FamilyID == familyID {
			out = append(out, &c)
		}
	}

	slices.SortFunc(out, func(a, b *category.Category) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID.String(), b.ID.String()),
		)
	})

	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.clock.Now()
	}

	s.categories[c.ID] = *c

	return nil
}

// PutCategory stores c as is, keeping its ID and CreatedAt.
func (s *Store) PutCategory(c category.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[c.ID] = c
}

func (s *Store) UpdateCategory(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok {
		return category.ErrNotFound
	}

	existing.Name = c.Name
	existing.Color = c.Color
	existing.Icon = c.Icon
	s.categories[c.ID] = existing

	return nil
}

func (s *Store) DeleteCategory(_ context.Context, familyID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.categories[id]; ok && c.FamilyID == familyID {
		delete(s.categories, id)
	}

	return nil
}

func (s *Store) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insert(tx)

	return nil
}

// insert requires s.mu to be held.
func (s *Store) insert(tx *transaction.Transaction) {
	now := s.clock.Now()

	tx.ID = uuid.New()
	tx.CreatedAt = now
	tx.UpdatedAt = &now
	s.transactions[tx.ID] = *tx
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok || tx.DeletedAt != nil {
		return nil, transaction.ErrNotFound
	}

	return &tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[tx.ID]
	if !ok || existing.DeletedAt != nil {
		return transaction.ErrNotFound
	}

	now := s.clock.Now()

	existing.CategoryID = tx.CategoryID
	existing.Amount = tx.Amount
	existing.Type = tx.Type
	existing.Description = tx.Description
	existing.Date = tx.Date
	existing.UpdatedAt = &now
	s.transactions[tx.ID] = existing

	tx.UpdatedAt = &now

	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || tx.DeletedAt != nil {
		return nil
	}

	now := s.clock.Now()
	tx.DeletedAt = &now
	s.transactions[id] = tx

	return nil
}

func (s *Store) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.list(filter), nil
}

// list requires s.mu to be held.
func (s *Store) list(filter transaction.ListFilter) []*transaction.Transaction {
	var out []*transaction.Transaction

	for _, tx := range s.transactions {
		if !matches(&tx, filter) {
			continue
		}

		out = append(out, &tx)
	}

	slices.SortFunc(out, func(a, b *transaction.Transaction) int {
		return cmp.Or(
			b.Date.Compare(a.Date),
			b.CreatedAt.Compare(a.CreatedAt),
			cmp.Compare(a.ID.String(), b.ID.String()),
		)
	})

	return out
}

func matches(tx *transaction.Transaction, f transaction.ListFilter) bool {
	switch {
	case tx.DeletedAt != nil:
		return false
	case tx.FamilyID != f.FamilyID:
		return false
	case f.StartDate != nil && tx.Date.Before(*f.StartDate):
		return false
	case f.EndDate != nil && tx.Date.After(*f.EndDate):
		return false
	case f.Type != nil && tx.Type != *f.Type:
		return false
	case f.CategoryID != nil && tx.CategoryID != *f.CategoryID:
		return false
	}

	return true
}

type importTx struct {
	store    *Store
	familyID string
	staged   []*transaction.Transaction
	done     bool
}

func (s *Store) BeginImport(_ context.Context, familyID string, _, _ time.Time) (transaction.ImportTx, error) {
	s.importMu.Lock()

	return &importTx{store: s, familyID: familyID}, nil
}

func (itx *importTx) FindDuplicates(_ context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	itx.store.mu.RLock()
	defer itx.store.mu.RUnlock()

	var duplicates []*transaction.Transaction

	for _, tx := range itx.store.list(transaction.ListFilter{FamilyID: itx.familyID}) {
		for _, p := range params {
			if transaction.IsDuplicate(tx, p) {
				duplicates = append(duplicates, tx)
				break
			}
		}
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(_ context.Context, txs []*transaction.Transaction) error {
	itx.staged = append(itx.staged, txs...)
	return nil
}

func (itx *importTx) Commit() error {
	if itx.done {
		return nil
	}

	itx.store.mu.Lock()
	for _, tx := range itx.staged {
		itx.store.insert(tx)
	}
	itx.store.mu.Unlock()

	itx.finish()

	return nil
}

func (itx *importTx) Rollback() error {
	if itx.done {
		return nil
	}

	itx.staged = nil
	itx.finish()

	return nil
}

func (itx *importTx) finish() {
	itx.done = true
	itx.store.importMu.Unlock()
}

func (s *Store) FindMatch(_ context.Context, familyID, description string) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	desc := strings.ToLower(description)

	var best *rule

	for i := range s.rules {
		r := &s.rules[i]
		if r.familyID != familyID || !strings.Contains(desc, r.pattern) {
			continue
		}

		if best == nil || len(r.pattern) > len(best.pattern) ||
			(len(r.pattern) == len(best.pattern) && r.createdAt.After(best.createdAt)) {
			best = r
		}
	}

	if best == nil {
		return uuid.Nil, nil
	}

	return best.categoryID, nil
}

func (s *Store) CreateRule(_ context.Context, familyID, pattern string, categoryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	for i := range s.rules {
		if s.rules[i].familyID == familyID && s.rules[i].pattern == pattern {
			s.rules[i].categoryID = categoryID
			s.rules[i].createdAt = now

			return nil
		}
	}

	s.rules = append(s.rules, rule{familyID: familyID, pattern: pattern, categoryID: categoryID, createdAt: now})

	return nil
}
