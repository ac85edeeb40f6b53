package category

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/fynance/internal/notify"
)

const DefaultConcurrency = 8

// Reconciler seeds the default catalog and removes duplicate categories.
// Both operations are best-effort: one failed write never stops the others.
type Reconciler struct {
	repo        Repository
	publisher   notify.Publisher
	logger      *slog.Logger
	concurrency int
}

func NewReconciler(repo Repository, publisher notify.Publisher, logger *slog.Logger, concurrency int) *Reconciler {
	if publisher == nil {
		publisher = notify.Nop{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	return &Reconciler{
		repo:        repo,
		publisher:   publisher,
		logger:      logger.With("component", "category_reconciler"),
		concurrency: concurrency,
	}
}

type DedupReport struct {
	GroupsAffected    int
	DuplicatesRemoved int
	// Survivors maps every well-formed key to the category that was kept.
	Survivors map[Key]uuid.UUID
	Failed    []uuid.UUID
}

type ReconcileReport struct {
	Created int
	Dedup   DedupReport
	Counts  Counts
}

type Counts struct {
	Total      int `json:"total"`
	Income     int `json:"income"`
	Expense    int `json:"expense"`
	Duplicates int `json:"duplicates"`
}

// EnsureDefaults creates the default catalog when current is empty and
// returns how many categories were created.
func (r *Reconciler) EnsureDefaults(ctx context.Context, familyID string, current []*Category) (int, error) {
	if len(current) > 0 {
		r.logger.Debug("categories already exist, skipping defaults", "family_id", familyID, "count", len(current))
		return 0, nil
	}

	var (
		mu      sync.Mutex
		created int
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, tmpl := range Defaults {
		g.Go(func() error {
			err := r.repo.CreateCategory(gctx, tmpl.New(familyID))

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, fmt.Errorf("creating default %q (%s): %w", tmpl.Name, tmpl.Type, err))
				return nil
			}

			created++

			return nil
		})
	}

	_ = g.Wait()

	err := errors.Join(errs...)
	if err != nil {
		r.logger.Error("failed to create some default categories",
			"family_id", familyID, "created", created, "failed", len(errs), "error", err)
	} else {
		r.logger.Info("created default categories", "family_id", familyID, "count", created)
	}

	return created, err
}

// Deduplicate keeps the earliest created category of every Key group and
// deletes the rest. Transactions pointing at a deleted duplicate are left as is.
func (r *Reconciler) Deduplicate(ctx context.Context, familyID string, current []*Category) (DedupReport, error) {
	report := DedupReport{Survivors: make(map[Key]uuid.UUID)}

	var order []Key

	groups := make(map[Key][]*Category)

	for _, c := range current {
		if c == nil {
			continue
		}

		if c.FamilyID != familyID {
			r.logger.Warn("skipping category of another family", "id", c.ID, "family_id", c.FamilyID)
			continue
		}

		if err := c.Validate(); err != nil {
			r.logger.Warn("skipping malformed category", "id", c.ID, "error", err)
			continue
		}

		k := c.Key()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}

		groups[k] = append(groups[k], c)
	}

	var doomed []*Category

	for _, k := range order {
		group := groups[k]
		if len(group) > 1 {
			slices.SortStableFunc(group, compareAge)
			report.GroupsAffected++

			r.logger.Info("found duplicate categories",
				"key", k.String(), "keep", group[0].ID, "duplicates", len(group)-1)

			doomed = append(doomed, group[1:]...)
		}

		report.Survivors[k] = group[0].ID
	}

	if len(doomed) == 0 {
		return report, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, c := range doomed {
		g.Go(func() error {
			err := r.repo.DeleteCategory(gctx, familyID, c.ID)
			if errors.Is(err, ErrNotFound) {
				err = nil
			}

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, fmt.Errorf("deleting duplicate %s: %w", c.ID, err))
				report.Failed = append(report.Failed, c.ID)

				return nil
			}

			report.DuplicatesRemoved++

			return nil
		})
	}

	_ = g.Wait()

	slices.SortFunc(report.Failed, func(a, b uuid.UUID) int {
		return cmp.Compare(a.String(), b.String())
	})

	err := errors.Join(errs...)
	if err != nil {
		r.logger.Error("failed to delete some duplicate categories",
			"family_id", familyID, "removed", report.DuplicatesRemoved, "failed", len(report.Failed), "error", err)
	} else {
		r.logger.Info("removed duplicate categories", "family_id", familyID, "count", report.DuplicatesRemoved)
	}

	return report, err
}

// Reconcile runs EnsureDefaults and Deduplicate against the stored categories.
// A listing failure is returned before anything is written; write failures
// are joined into the returned error alongside a usable report.
func (r *Reconciler) Reconcile(ctx context.Context, familyID string) (ReconcileReport, error) {
	var report ReconcileReport

	current, err := r.repo.ListCategories(ctx, familyID)
	if err != nil {
		return report, fmt.Errorf("listing categories: %w", err)
	}

	var errs []error

	created, err := r.EnsureDefaults(ctx, familyID, current)
	if err != nil {
		errs = append(errs, err)
	}

	report.Created = created

	if created > 0 {
		current, err = r.repo.ListCategories(ctx, familyID)
		if err != nil {
			return report, errors.Join(append(errs, fmt.Errorf("listing categories: %w", err))...)
		}
	}

	report.Dedup, err = r.Deduplicate(ctx, familyID, current)
	if err != nil {
		errs = append(errs, err)
	}

	report.Counts = Count(remaining(current, report.Dedup))

	if report.Created > 0 || report.Dedup.DuplicatesRemoved > 0 {
		inv := notify.NewInvalidation(familyID, notify.ScopeCategories)
		if err := r.publisher.Publish(ctx, inv); err != nil {
			r.logger.Warn("failed to publish invalidation", "family_id", familyID, "error", err)
		}
	}

	return report, errors.Join(errs...)
}

// Count summarises categories the same way the category screen does.
// Duplicates counts every category whose key was already seen.
func Count(categories []*Category) Counts {
	var counts Counts

	seen := make(map[Key]struct{}, len(categories))

	for _, c := range categories {
		counts.Total++

		switch c.Type {
		case TypeIncome:
			counts.Income++
		case TypeExpense:
			counts.Expense++
		}

		k := c.Key()
		if _, ok := seen[k]; ok {
			counts.Duplicates++
			continue
		}

		seen[k] = struct{}{}
	}

	return counts
}

func compareAge(a, b *Category) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return cmp.Compare(a.ID.String(), b.ID.String())
}

// remaining drops the duplicates that were deleted successfully.
func remaining(current []*Category, report DedupReport) []*Category {
	failed := make(map[uuid.UUID]struct{}, len(report.Failed))
	for _, id := range report.Failed {
		failed[id] = struct{}{}
	}

	out := make([]*Category, 0, len(current))

	for _, c := range current {
		if c == nil {
			continue
		}

		survivor, ok := report.Survivors[c.Key()]
		if !ok || survivor == c.ID {
			out = append(out, c)
			continue
		}

		if _, kept := failed[c.ID]; kept {
			out = append(out, c)
		}
	}

	return out
}
