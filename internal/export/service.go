package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	"github.com/MrJamesThe3rd/fynance/internal/currency"
	"github.com/MrJamesThe3rd/fynance/internal/member"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

// Header matches the layout the household importer reads back.
var Header = []string{"Date", "Type", "Category", "Amount", "Description", "Added By"}

// Item is a single exported transaction with its category resolved.
type Item struct {
	Transaction  *transaction.Transaction
	CategoryName string
}

type TransactionLister interface {
	ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type CategoryLister interface {
	ListCategories(ctx context.Context, familyID string) ([]*category.Category, error)
}

// Service exports a family's transactions as CSV.
type Service struct {
	transactions TransactionLister
	categories   CategoryLister
	clock        clock.Clock
	location     *time.Location
}

func NewService(transactions TransactionLister, categories CategoryLister, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.System{}
	}

	if loc == nil {
		loc = time.Local
	}

	return &Service{
		transactions: transactions,
		categories:   categories,
		clock:        clk,
		location:     loc,
	}
}

// Items returns the transactions of period as of now, oldest first.
func (s *Service) Items(ctx context.Context, familyID string, period report.Period) ([]Item, error) {
	start, end, err := report.ResolvePeriodRange(period, s.clock.Now().In(s.location))
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

	cats, err := s.categories.ListCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	lookup := category.Lookup(cats)

	items := make([]Item, 0, len(txs))

	for _, t := range txs {
		item := Item{Transaction: t, CategoryName: report.OtherLabel}
		if c, ok := lookup[t.CategoryID]; ok {
			item.CategoryName = c.Name
		}

		items = append(items, item)
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return a.Transaction.Date.Compare(b.Transaction.Date)
	})

	return items, nil
}

// WriteCSV writes items with Header as the first row.
func (s *Service) WriteCSV(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, item := range items {
		t := item.Transaction

		record := []string{
			t.Date.In(s.location).Format(time.DateOnly),
			string(t.Type),
			item.CategoryName,
			currency.FormatNumber(t.Amount),
			t.Description,
			t.AddedBy,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Export writes the CSV of period to w and returns the exported items.
func (s *Service) Export(ctx context.Context, familyID string, period report.Period, w io.Writer) ([]Item, error) {
	items, err := s.Items(ctx, familyID, period)
	if err != nil {
		return nil, err
	}

	if err := s.WriteCSV(w, items); err != nil {
		return nil, err
	}

	return items, nil
}

// Summary renders one line per item followed by the period totals,
// ready to paste into a chat message.
func (s *Service) Summary(items []Item) string {
	var sb strings.Builder

	var income, expense int64

	for _, item := range items {
		t := item.Transaction

		switch t.Type {
		case transaction.TypeIncome:
			income += t.Amount
		case transaction.TypeExpense:
			expense += t.Amount
		}

		desc := t.Description
		if desc == "" {
			desc = item.CategoryName
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s | %s\n",
			t.Date.In(s.location).Format(time.DateOnly),
			desc,
			currency.FormatIDR(t.Signed()),
			item.CategoryName,
			member.DisplayName(t.AddedBy),
		))
	}

	sb.WriteString(fmt.Sprintf("Pemasukan: %s\n", currency.FormatIDR(income)))
	sb.WriteString(fmt.Sprintf("Pengeluaran: %s\n", currency.FormatIDR(expense)))
	sb.WriteString(fmt.Sprintf("Saldo: %s\n", currency.FormatIDR(income-expense)))

	return sb.String()
}
