package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/currency"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrMalformed     = errors.New("malformed transaction")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense entry of a family.
type Transaction struct {
	ID       uuid.UUID
	FamilyID string
	// CategoryID is a weak reference; the category may no longer exist.
	CategoryID  uuid.UUID
	Amount      int64 // whole rupiah, always positive
	Type        Type
	Description string
	Date        time.Time
	AddedBy     string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// Validate checks the fields a write must carry.
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %w %q", ErrMalformed, ErrInvalidType, t.Type)
	}

	if t.Amount <= 0 || t.Amount > currency.MaxAmount {
		return fmt.Errorf("%w: %w %d", ErrMalformed, ErrInvalidAmount, t.Amount)
	}

	return nil
}

// IsExpense reports whether t is a well formed expense.
func (t *Transaction) IsExpense() bool {
	return t != nil && t.Type == TypeExpense && t.Amount > 0
}

// IsIncome reports whether t is a well formed income.
func (t *Transaction) IsIncome() bool {
	return t != nil && t.Type == TypeIncome && t.Amount > 0
}

// Signed returns the amount with the sign of its effect on the balance.
func (t *Transaction) Signed() int64 {
	if t.Type == TypeExpense {
		return -t.Amount
	}

	return t.Amount
}
