package report

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

const (
	recentLimit = 5

	// OtherLabel names transactions whose category cannot be resolved.
	OtherLabel = "Other"

	incomeIcon  = "💰"
	expenseIcon = "💸"
)

type CategoryLister interface {
	ListCategories(ctx context.Context, familyID string) ([]*category.Category, error)
}

type TransactionLister interface {
	ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Report struct {
	Period       Period
	Start        time.Time
	End          time.Time
	Buckets      []Bucket
	Categories   []CategorySummary
	TotalIncome  int64
	TotalExpense int64
	// NoData is set when the range holds no expenses.
	NoData bool
}

// Entry is a transaction with its category resolved for display.
type Entry struct {
	Transaction  *transaction.Transaction
	CategoryName string
	CategoryIcon string
	Color        string
}

type Dashboard struct {
	Balance          int64
	MonthIncome      int64
	MonthExpense     int64
	Budget           int64
	BudgetUsed       int64
	BudgetPercentage int
	Recent           []Entry
}

type HistoryFilter struct {
	Search     string
	Type       *transaction.Type
	CategoryID *uuid.UUID
	Start      *time.Time
	End        *time.Time
}

type HistoryDay struct {
	Date    time.Time
	Entries []Entry
}

type History struct {
	Days         []HistoryDay
	Count        int
	TotalIncome  int64
	TotalExpense int64
}

type Service struct {
	categories   CategoryLister
	transactions TransactionLister
	clock        clock.Clock
	location     *time.Location
	topN         int
	logger       *slog.Logger
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func WithTopN(n int) Option {
	return func(s *Service) { s.topN = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(categories CategoryLister, transactions TransactionLister, opts ...Option) *Service {
	s := &Service{
		categories:   categories,
		transactions: transactions,
		clock:        clock.System{},
		location:     time.Local,
		topN:         DefaultTopN,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("component", "report")

	return s
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.location)
}

// Generate builds the report of period as of now. A transaction listing error
// is returned; a category listing error degrades to an empty category set.
func (s *Service) Generate(ctx context.Context, familyID string, period Period) (*Report, error) {
	start, end, err := ResolvePeriodRange(period, s.now())
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.ListTransactions(ctx, transaction.ListFilter{
		FamilyID:  familyID,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	cats := s.listCategories(ctx, familyID)

	buckets, err := BuildTimeBuckets(period, start, txs)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Period:     period,
		Start:      start,
		End:        end,
		Buckets:    buckets,
		Categories: BuildCategorySummary(txs, cats, s.topN),
	}

	r.TotalIncome, r.TotalExpense = totals(txs)
	r.NoData = r.TotalExpense == 0

	return r, nil
}

// Dashboard summarises all of a family's transactions. Budget usage is the
// current month's expense against budget and is not capped at 100.
func (s *Service) Dashboard(ctx context.Context, familyID string, budget int64) (*Dashboard, error) {
	txs, err := s.transactions.ListTransactions(ctx, transaction.ListFilter{FamilyID: familyID})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	lookup := category.Lookup(s.listCategories(ctx, familyID))

	monthStart, monthEnd, _ := ResolvePeriodRange(PeriodMonth, s.now())

	d := &Dashboard{Budget: budget}

	for _, tx := range txs {
		if !tx.IsIncome() && !tx.IsExpense() {
			continue
		}

		d.Balance += tx.Signed()

		if tx.Date.Before(monthStart) || tx.Date.After(monthEnd) {
			continue
		}

		if tx.IsIncome() {
			d.MonthIncome += tx.Amount
		} else {
			d.MonthExpense += tx.Amount
		}
	}

	d.BudgetUsed = d.MonthExpense
	d.BudgetPercentage = percentage(d.BudgetUsed, budget)

	recent := slices.DeleteFunc(slices.Clone(txs), malformed)
	slices.SortStableFunc(recent, newestFirst)

	for _, tx := range recent[:min(recentLimit, len(recent))] {
		d.Recent = append(d.Recent, resolve(tx, lookup))
	}

	return d, nil
}

// History lists transactions matching f grouped by calendar day, newest first.
// Search matches category name, description and AddedBy, ignoring case.
// Malformed records are left out of both the days and the totals.
func (s *Service) History(ctx context.Context, familyID string, f HistoryFilter) (*History, error) {
	filter := transaction.ListFilter{
		FamilyID:   familyID,
		Type:       f.Type,
		CategoryID: f.CategoryID,
	}

	if f.Start != nil {
		start := startOfDay(f.Start.In(s.location))
		filter.StartDate = &start
	}

	if f.End != nil {
		end := endOfDay(f.End.In(s.location))
		filter.EndDate = &end
	}

	txs, err := s.transactions.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	lookup := category.Lookup(s.listCategories(ctx, familyID))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	txs = slices.DeleteFunc(txs, malformed)
	slices.SortStableFunc(txs, newestFirst)

	h := &History{}

	for _, tx := range txs {
		e := resolve(tx, lookup)
		if search != "" && !e.matches(search) {
			continue
		}

		h.Count++

		if tx.IsIncome() {
			h.TotalIncome += tx.Amount
		} else {
			h.TotalExpense += tx.Amount
		}

		day := startOfDay(tx.Date.In(s.location))
		if n := len(h.Days); n == 0 || !h.Days[n-1].Date.Equal(day) {
			h.Days = append(h.Days, HistoryDay{Date: day})
		}

		last := &h.Days[len(h.Days)-1]
		last.Entries = append(last.Entries, e)
	}

	return h, nil
}

func (s *Service) listCategories(ctx context.Context, familyID string) []*category.Category {
	cats, err := s.categories.ListCategories(ctx, familyID)
	if err != nil {
		s.logger.Warn("failed to list categories, continuing without them", "family_id", familyID, "error", err)
		return nil
	}

	return cats
}

func (e Entry) matches(search string) bool {
	if e.CategoryName != OtherLabel && strings.Contains(strings.ToLower(e.CategoryName), search) {
		return true
	}

	return strings.Contains(strings.ToLower(e.Transaction.Description), search) ||
		strings.Contains(strings.ToLower(e.Transaction.AddedBy), search)
}

func resolve(tx *transaction.Transaction, lookup map[uuid.UUID]*category.Category) Entry {
	if c, ok := lookup[tx.CategoryID]; ok {
		return Entry{Transaction: tx, CategoryName: c.Name, CategoryIcon: c.Icon, Color: c.Color}
	}

	icon := expenseIcon
	if tx.Type == transaction.TypeIncome {
		icon = incomeIcon
	}

	return Entry{Transaction: tx, CategoryName: OtherLabel, CategoryIcon: icon}
}

// malformed reports records that are neither a valid income nor a valid
// expense, including nil entries.
func malformed(tx *transaction.Transaction) bool {
	return !tx.IsIncome() && !tx.IsExpense()
}

func totals(txs []*transaction.Transaction) (income, expense int64) {
	for _, tx := range txs {
		switch {
		case tx.IsIncome():
			income += tx.Amount
		case tx.IsExpense():
			expense += tx.Amount
		}
	}

	return income, expense
}

func newestFirst(a, b *transaction.Transaction) int {
	return cmp.Or(b.Date.Compare(a.Date), b.CreatedAt.Compare(a.CreatedAt))
}
