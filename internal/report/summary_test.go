package report_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

func spend(catID uuid.UUID, amount int64) *transaction.Transaction {
	return &transaction.Transaction{
		CategoryID: catID,
		Amount:     amount,
		Type:       transaction.TypeExpense,
		Date:       time.Date(2024, 10, 14, 12, 0, 0, 0, wib),
	}
}

func cat(name string) *category.Category {
	return &category.Category{ID: uuid.New(), Name: name, Type: category.TypeExpense, Color: "#dc2626", Icon: "🍽️"}
}

func TestBuildCategorySummary_IncomeAndUnknownExcluded(t *testing.T) {
	food := cat("Food")
	salary := uuid.New()

	txs := []*transaction.Transaction{
		spend(food.ID, 50_000),
		spend(food.ID, 30_000),
		{CategoryID: salary, Amount: 1_000_000, Type: transaction.TypeIncome},
	}

	got := report.BuildCategorySummary(txs, []*category.Category{food}, 5)

	require.Len(t, got, 1)
	assert.Equal(t, report.CategorySummary{
		CategoryID:   food.ID,
		CategoryName: "Food",
		Percentage:   100,
		Amount:       80_000,
		Color:        "#dc2626",
		Icon:         "🍽️",
	}, got[0])
}

func TestBuildCategorySummary_UnresolvedStillCountsInTotal(t *testing.T) {
	food := cat("Food")

	got := report.BuildCategorySummary([]*transaction.Transaction{
		spend(food.ID, 25_000),
		spend(uuid.New(), 75_000),
	}, []*category.Category{food}, 5)

	require.Len(t, got, 1)
	assert.Equal(t, 25, got[0].Percentage)
}

func TestBuildCategorySummary_RoundsHalfUp(t *testing.T) {
	a, b, c := cat("A"), cat("B"), cat("C")

	got := report.BuildCategorySummary([]*transaction.Transaction{
		spend(a.ID, 1),
		spend(b.ID, 3),
		spend(c.ID, 4),
	}, []*category.Category{a, b, c}, 5)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"C", "B", "A"}, []string{got[0].CategoryName, got[1].CategoryName, got[2].CategoryName})
	// 50, 37.5 and 12.5 round to a total of 101.
	assert.Equal(t, []int{50, 38, 13}, []int{got[0].Percentage, got[1].Percentage, got[2].Percentage})
}

func TestBuildCategorySummary_TopNAndStableTies(t *testing.T) {
	cats := []*category.Category{cat("A"), cat("B"), cat("C"), cat("D"), cat("E"), cat("F"), cat("G")}

	var txs []*transaction.Transaction
	for _, c := range cats {
		txs = append(txs, spend(c.ID, 1_000))
	}

	got := report.BuildCategorySummary(txs, cats, 0)
	require.Len(t, got, report.DefaultTopN)

	for i, s := range got {
		assert.Equal(t, cats[i].Name, s.CategoryName, "ties keep encounter order")
	}

	assert.Len(t, report.BuildCategorySummary(txs, cats, 2), 2)
}

func TestBuildCategorySummary_Empty(t *testing.T) {
	food := cat("Food")

	got := report.BuildCategorySummary([]*transaction.Transaction{
		{CategoryID: food.ID, Amount: 10, Type: transaction.TypeIncome},
		{CategoryID: food.ID, Amount: 0, Type: transaction.TypeExpense},
	}, []*category.Category{food}, 5)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildCategorySummary_PercentageBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	cats := []*category.Category{cat("A"), cat("B"), cat("C"), cat("D"), cat("E"), cat("F")}

	for range 100 {
		var txs []*transaction.Transaction
		for range rng.IntN(30) + 1 {
			c := cats[rng.IntN(len(cats))]
			txs = append(txs, spend(c.ID, rng.Int64N(5_000_000)+1))
		}

		for _, s := range report.BuildCategorySummary(txs, cats, len(cats)) {
			assert.GreaterOrEqual(t, s.Percentage, 0)
			assert.LessOrEqual(t, s.Percentage, 100)
		}
	}
}
