package report

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

const DefaultTopN = 5

type CategorySummary struct {
	CategoryID   uuid.UUID
	CategoryName string
	Percentage   int
	Amount       int64
	Color        string
	Icon         string
}

var hundred = decimal.NewFromInt(100)

// BuildCategorySummary ranks expense categories by amount. Percentages are of
// all expenses, including those whose category no longer exists, and are
// rounded half up independently so they need not add up to 100.
func BuildCategorySummary(txs []*transaction.Transaction, categories []*category.Category, topN int) []CategorySummary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var total int64

	var order []uuid.UUID

	sums := make(map[uuid.UUID]int64)

	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}

		total += tx.Amount

		if _, seen := sums[tx.CategoryID]; !seen {
			order = append(order, tx.CategoryID)
		}

		sums[tx.CategoryID] += tx.Amount
	}

	out := []CategorySummary{}

	if total == 0 {
		return out
	}

	lookup := category.Lookup(categories)

	for _, id := range order {
		c, ok := lookup[id]
		if !ok {
			continue
		}

		amount := sums[id]

		out = append(out, CategorySummary{
			CategoryID:   id,
			CategoryName: c.Name,
			Percentage:   percentage(amount, total),
			Amount:       amount,
			Color:        c.Color,
			Icon:         c.Icon,
		})
	}

	slices.SortStableFunc(out, func(a, b CategorySummary) int {
		switch {
		case a.Amount > b.Amount:
			return -1
		case a.Amount < b.Amount:
			return 1
		}

		return 0
	})

	if len(out) > topN {
		out = out[:topN]
	}

	return out
}

// percentage is round_half_up(part / whole * 100), 0 when whole is not positive.
func percentage(part, whole int64) int {
	if whole <= 0 {
		return 0
	}

	return int(decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(whole)).
		Round(0).
		IntPart())
}
