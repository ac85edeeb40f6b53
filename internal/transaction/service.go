package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/notify"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	BeginImport(ctx context.Context, familyID string, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo      Repository
	publisher notify.Publisher
}

func NewService(repo Repository, publisher notify.Publisher) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}

	return &Service{repo: repo, publisher: publisher}
}

type CreateParams struct {
	FamilyID    string
	CategoryID  uuid.UUID
	Amount      int64
	Type        Type
	Description string
	Date        time.Time
	AddedBy     string
}

type UpdateParams struct {
	CategoryID  *uuid.UUID
	Amount      *int64
	Type        *Type
	Description *string
	Date        *time.Time
}

// ListFilter bounds are inclusive. A zero FamilyID lists nothing.
type ListFilter struct {
	FamilyID   string
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *Type
	CategoryID *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := newTransaction(params)
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tx.FamilyID)

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// Get returns ErrNotFound for transactions of another family.
func (s *Service) Get(ctx context.Context, familyID string, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.FamilyID != familyID {
		return nil, ErrNotFound
	}

	return tx, nil
}

func (s *Service) Update(ctx context.Context, familyID string, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.Get(ctx, familyID, id)
	if err != nil {
		return nil, err
	}

	if params.CategoryID != nil {
		tx.CategoryID = *params.CategoryID
	}

	if params.Amount != nil {
		tx.Amount = *params.Amount
	}

	if params.Type != nil {
		tx.Type = *params.Type
	}

	if params.Description != nil {
		tx.Description = strings.TrimSpace(*params.Description)
	}

	if params.Date != nil {
		tx.Date = *params.Date
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.invalidate(ctx, familyID)

	return tx, nil
}

// Delete soft-deletes a transaction. Deleting a missing one succeeds.
func (s *Service) Delete(ctx context.Context, familyID string, id uuid.UUID) error {
	_, err := s.Get(ctx, familyID, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, familyID)

	return nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type dupKey struct {
	Date        string
	Amount      int64
	Type        Type
	Description string
}

func keyOf(date time.Time, amount int64, t Type, description string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Amount:      amount,
		Type:        t,
		Description: strings.ToLower(strings.TrimSpace(description)),
	}
}

// ImportBatch inserts params unless some of them already exist. When there are
// conflicts nothing is written and the caller decides via CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, familyID string, params []CreateParams) (*ImportResult, error) {
	params, err := prepare(familyID, params)
	if err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, familyID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Type, d.Description)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.Type, p.Description)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := paramsToTransactions(newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.invalidate(ctx, familyID)

	return &ImportResult{Imported: txs}, nil
}

func (s *Service) CreateBatch(ctx context.Context, familyID string, params []CreateParams) ([]*Transaction, error) {
	params, err := prepare(familyID, params)
	if err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return nil, nil
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, familyID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := paramsToTransactions(params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.invalidate(ctx, familyID)

	return txs, nil
}

func (s *Service) invalidate(ctx context.Context, familyID string) {
	err := s.publisher.Publish(ctx, notify.NewInvalidation(familyID, notify.ScopeTransactions))
	if err != nil {
		slog.Warn("failed to publish invalidation", "family_id", familyID, "error", err)
	}
}

// prepare stamps the family on every row and rejects the batch on the first invalid one.
func prepare(familyID string, params []CreateParams) ([]CreateParams, error) {
	out := make([]CreateParams, len(params))

	for i, p := range params {
		p.FamilyID = familyID
		if err := newTransaction(p).Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		out[i] = p
	}

	return out, nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func newTransaction(p CreateParams) *Transaction {
	return &Transaction{
		FamilyID:    p.FamilyID,
		CategoryID:  p.CategoryID,
		Amount:      p.Amount,
		Type:        p.Type,
		Description: strings.TrimSpace(p.Description),
		Date:        p.Date,
		AddedBy:     p.AddedBy,
	}
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(p)
	}

	return txs
}

// IsDuplicate reports whether tx matches p on day, amount, type and description.
func IsDuplicate(tx *Transaction, p CreateParams) bool {
	return keyOf(tx.Date, tx.Amount, tx.Type, tx.Description) == keyOf(p.Date, p.Amount, p.Type, p.Description)
}
