package report_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	"github.com/MrJamesThe3rd/fynance/internal/memory"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

const familyID = "fam-1"

type failingCategories struct{}

func (failingCategories) ListCategories(context.Context, string) ([]*category.Category, error) {
	return nil, errors.New("categories unavailable")
}

type failingTransactions struct{}

func (failingTransactions) ListTransactions(context.Context, transaction.ListFilter) ([]*transaction.Transaction, error) {
	return nil, errors.New("transactions unavailable")
}

type staticTransactions []*transaction.Transaction

func (s staticTransactions) ListTransactions(context.Context, transaction.ListFilter) ([]*transaction.Transaction, error) {
	return slices.Clone(s), nil
}

type fixture struct {
	store *memory.Store
	clock *clock.Mock
	food  *category.Category
	gaji  *category.Category
}

// newFixture pins now to Wednesday 2024-10-16 15:00 WIB.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	clk := &clock.Mock{FixedNow: time.Date(2024, 10, 16, 15, 0, 0, 0, wib)}
	s := memory.New(clk)

	food := &category.Category{FamilyID: familyID, Name: "Makanan & Minuman", Type: category.TypeExpense, Icon: "🍽️"}
	gaji := &category.Category{FamilyID: familyID, Name: "Gaji", Type: category.TypeIncome, Icon: "💰"}
	require.NoError(t, s.CreateCategory(ctx, food))
	require.NoError(t, s.CreateCategory(ctx, gaji))

	add := func(amount int64, typ transaction.Type, catID uuid.UUID, date time.Time, desc, by string) {
		require.NoError(t, s.CreateTransaction(ctx, &transaction.Transaction{
			FamilyID:    familyID,
			CategoryID:  catID,
			Amount:      amount,
			Type:        typ,
			Date:        date,
			Description: desc,
			AddedBy:     by,
		}))
	}

	add(5_000_000, transaction.TypeIncome, gaji.ID, time.Date(2024, 10, 1, 9, 0, 0, 0, wib), "Gaji Oktober", "budi@example.com")
	add(50_000, transaction.TypeExpense, food.ID, time.Date(2024, 10, 14, 12, 0, 0, 0, wib), "Nasi padang", "budi@example.com")
	add(30_000, transaction.TypeExpense, food.ID, time.Date(2024, 10, 14, 19, 0, 0, 0, wib), "Martabak", "siti@example.com")
	add(20_000, transaction.TypeExpense, uuid.New(), time.Date(2024, 10, 15, 8, 0, 0, 0, wib), "Parkir", "siti@example.com")
	add(400_000, transaction.TypeExpense, food.ID, time.Date(2024, 10, 2, 19, 0, 0, 0, wib), "Belanja bulanan", "budi@example.com")
	add(1_000_000, transaction.TypeExpense, food.ID, time.Date(2024, 9, 20, 12, 0, 0, 0, wib), "Arisan", "budi@example.com")

	require.NoError(t, s.CreateTransaction(ctx, &transaction.Transaction{
		FamilyID: "fam-2",
		Amount:   999,
		Type:     transaction.TypeExpense,
		Date:     time.Date(2024, 10, 14, 12, 0, 0, 0, wib),
	}))

	return &fixture{store: s, clock: clk, food: food, gaji: gaji}
}

func (f *fixture) service(opts ...report.Option) *report.Service {
	base := []report.Option{
		report.WithClock(f.clock),
		report.WithLocation(wib),
		report.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}

	return report.NewService(f.store, f.store, append(base, opts...)...)
}

func TestService_Generate_Week(t *testing.T) {
	f := newFixture(t)

	r, err := f.service().Generate(context.Background(), familyID, report.PeriodWeek)
	require.NoError(t, err)

	assert.True(t, r.Start.Equal(time.Date(2024, 10, 14, 0, 0, 0, 0, wib)))
	assert.True(t, r.End.Equal(time.Date(2024, 10, 16, 23, 59, 59, 999_000_000, wib)))
	assert.Equal(t, []int64{80_000, 20_000, 0, 0, 0, 0, 0}, amounts(r.Buckets))
	assert.Equal(t, int64(100_000), r.TotalExpense)
	assert.Zero(t, r.TotalIncome)
	assert.False(t, r.NoData)

	require.Len(t, r.Categories, 1)
	assert.Equal(t, "Makanan & Minuman", r.Categories[0].CategoryName)
	assert.Equal(t, 80, r.Categories[0].Percentage)
}

func TestService_Generate_Month(t *testing.T) {
	f := newFixture(t)

	r, err := f.service().Generate(context.Background(), familyID, report.PeriodMonth)
	require.NoError(t, err)

	assert.Equal(t, []int64{400_000, 80_000, 20_000, 0}, amounts(r.Buckets))
	assert.Equal(t, int64(5_000_000), r.TotalIncome)
	assert.Equal(t, int64(500_000), r.TotalExpense)
}

func TestService_Generate_NoData(t *testing.T) {
	f := newFixture(t)
	f.clock.SetNow(time.Date(2025, 3, 3, 10, 0, 0, 0, wib))

	r, err := f.service().Generate(context.Background(), familyID, report.PeriodWeek)
	require.NoError(t, err)
	assert.True(t, r.NoData)
	assert.Empty(t, r.Categories)
	assert.Len(t, r.Buckets, 7)
}

func TestService_Generate_Failures(t *testing.T) {
	f := newFixture(t)
	quiet := report.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("TransactionsUnavailable", func(t *testing.T) {
		svc := report.NewService(f.store, failingTransactions{}, report.WithClock(f.clock), quiet)

		_, err := svc.Generate(context.Background(), familyID, report.PeriodWeek)
		assert.ErrorContains(t, err, "transactions unavailable")
	})

	t.Run("CategoriesUnavailable", func(t *testing.T) {
		svc := report.NewService(failingCategories{}, f.store, report.WithClock(f.clock), report.WithLocation(wib), quiet)

		r, err := svc.Generate(context.Background(), familyID, report.PeriodWeek)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), r.TotalExpense)
		assert.Empty(t, r.Categories)
	})

	t.Run("InvalidPeriod", func(t *testing.T) {
		_, err := f.service().Generate(context.Background(), familyID, "decade")
		assert.ErrorIs(t, err, report.ErrInvalidPeriod)
	})
}

func TestService_Dashboard(t *testing.T) {
	f := newFixture(t)

	d, err := f.service().Dashboard(context.Background(), familyID, 400_000)
	require.NoError(t, err)

	assert.Equal(t, int64(5_000_000-50_000-30_000-20_000-400_000-1_000_000), d.Balance)
	assert.Equal(t, int64(5_000_000), d.MonthIncome)
	assert.Equal(t, int64(500_000), d.MonthExpense)
	assert.Equal(t, int64(500_000), d.BudgetUsed)
	assert.Equal(t, 125, d.BudgetPercentage, "not capped")

	require.Len(t, d.Recent, 5)
	assert.Equal(t, "Parkir", d.Recent[0].Transaction.Description)
	assert.Equal(t, report.OtherLabel, d.Recent[0].CategoryName)
	assert.Equal(t, "Martabak", d.Recent[1].Transaction.Description)
	assert.Equal(t, "Makanan & Minuman", d.Recent[1].CategoryName)

	d, err = f.service().Dashboard(context.Background(), familyID, 0)
	require.NoError(t, err)
	assert.Zero(t, d.BudgetPercentage)
}

func TestService_History(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	h, err := svc.History(context.Background(), familyID, report.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 6, h.Count)
	assert.Equal(t, int64(5_000_000), h.TotalIncome)
	assert.Equal(t, int64(1_500_000), h.TotalExpense)
	require.Len(t, h.Days, 5)
	assert.True(t, h.Days[0].Date.Equal(time.Date(2024, 10, 15, 0, 0, 0, 0, wib)))
	assert.Len(t, h.Days[1].Entries, 2)
	assert.Equal(t, "Martabak", h.Days[1].Entries[0].Transaction.Description)

	t.Run("SearchAddedBy", func(t *testing.T) {
		h, err := svc.History(context.Background(), familyID, report.HistoryFilter{Search: "SITI"})
		require.NoError(t, err)
		assert.Equal(t, 2, h.Count)
	})

	t.Run("SearchCategoryName", func(t *testing.T) {
		h, err := svc.History(context.Background(), familyID, report.HistoryFilter{Search: "gaji"})
		require.NoError(t, err)
		assert.Equal(t, 1, h.Count)
	})

	t.Run("DateRangeIsInclusiveToEndOfDay", func(t *testing.T) {
		day := time.Date(2024, 10, 14, 0, 0, 0, 0, wib)

		h, err := svc.History(context.Background(), familyID, report.HistoryFilter{Start: &day, End: &day})
		require.NoError(t, err)
		assert.Equal(t, 2, h.Count)
		assert.Equal(t, int64(80_000), h.TotalExpense)
	})

	t.Run("TypeAndCategory", func(t *testing.T) {
		expense := transaction.TypeExpense

		h, err := svc.History(context.Background(), familyID, report.HistoryFilter{Type: &expense, CategoryID: &f.food.ID})
		require.NoError(t, err)
		assert.Equal(t, 4, h.Count)
		assert.Zero(t, h.TotalIncome)
	})
}

func TestService_SkipsMalformedRecords(t *testing.T) {
	clk := &clock.Mock{FixedNow: time.Date(2024, 10, 16, 15, 0, 0, 0, wib)}
	day := func(d int) time.Time { return time.Date(2024, 10, d, 12, 0, 0, 0, wib) }

	txs := staticTransactions{
		{FamilyID: familyID, Amount: 75_000, Type: transaction.TypeExpense, Date: day(10), Description: "Bensin"},
		{FamilyID: familyID, Amount: 1_000_000, Type: transaction.TypeIncome, Date: day(5), Description: "Bonus"},
		nil,
		{FamilyID: familyID, Amount: 0, Type: transaction.TypeExpense, Date: day(16), Description: "Kosong"},
		{FamilyID: familyID, Amount: -30_000, Type: transaction.TypeIncome, Date: day(15), Description: "Negatif"},
		{FamilyID: familyID, Amount: 10_000, Type: "transfer", Date: day(14), Description: "Transfer"},
	}

	svc := report.NewService(failingCategories{}, txs,
		report.WithClock(clk),
		report.WithLocation(wib),
		report.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	h, err := svc.History(context.Background(), familyID, report.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, h.Count)
	assert.Equal(t, int64(1_000_000), h.TotalIncome)
	assert.Equal(t, int64(75_000), h.TotalExpense)
	require.Len(t, h.Days, 2)
	assert.Equal(t, "Bensin", h.Days[0].Entries[0].Transaction.Description)

	d, err := svc.Dashboard(context.Background(), familyID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(925_000), d.Balance)
	require.Len(t, d.Recent, 2)
	assert.Equal(t, "Bensin", d.Recent[0].Transaction.Description)
	assert.Equal(t, "Bonus", d.Recent[1].Transaction.Description)
}
