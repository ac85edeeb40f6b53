package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fynance/internal/currency"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats whole rupiah: 1250000 -> "Rp 1.250.000".
func FormatAmount(amount int64) string {
	return currency.FormatIDR(amount)
}

// FormatSigned prefixes expenses with a minus and colours the amount by type.
func FormatSigned(tx *transaction.Transaction) string {
	color := lipgloss.Color("46")
	if tx.Type == transaction.TypeExpense {
		color = lipgloss.Color("196")
	}

	return lipgloss.NewStyle().Foreground(color).Render(currency.FormatIDR(tx.Signed()))
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}
