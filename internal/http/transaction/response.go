package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	Amount      int64            `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	AddedBy     string           `json:"added_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
}

type entryResponse struct {
	transactionResponse
	CategoryName string `json:"category_name"`
	CategoryIcon string `json:"category_icon"`
	Color        string `json:"color,omitempty"`
}

type dayResponse struct {
	Date         string          `json:"date"`
	Transactions []entryResponse `json:"transactions"`
}

type historyResponse struct {
	Count        int           `json:"count"`
	TotalIncome  int64         `json:"total_income"`
	TotalExpense int64         `json:"total_expense"`
	Days         []dayResponse `json:"days"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Description: tx.Description,
		Date:        tx.Date,
		AddedBy:     tx.AddedBy,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}

	if tx.CategoryID != uuid.Nil {
		resp.CategoryID = new(tx.CategoryID)
	}

	return resp
}

func toHistoryResponse(h *report.History) historyResponse {
	resp := historyResponse{
		Count:        h.Count,
		TotalIncome:  h.TotalIncome,
		TotalExpense: h.TotalExpense,
		Days:         make([]dayResponse, 0, len(h.Days)),
	}

	for _, d := range h.Days {
		day := dayResponse{
			Date:         d.Date.Format(time.DateOnly),
			Transactions: make([]entryResponse, 0, len(d.Entries)),
		}

		for _, e := range d.Entries {
			day.Transactions = append(day.Transactions, entryResponse{
				transactionResponse: toResponse(e.Transaction),
				CategoryName:        e.CategoryName,
				CategoryIcon:        e.CategoryIcon,
				Color:               e.Color,
			})
		}

		resp.Days = append(resp.Days, day)
	}

	return resp
}
