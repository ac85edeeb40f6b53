package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type bucketResponse struct {
	Label       string    `json:"label"`
	Amount      int64     `json:"amount"`
	PeriodStart time.Time `json:"period_start"`
}

type categorySummaryResponse struct {
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Percentage   int       `json:"percentage"`
	Amount       int64     `json:"amount"`
	Color        string    `json:"color,omitempty"`
	Icon         string    `json:"icon,omitempty"`
}

type reportResponse struct {
	Period       report.Period             `json:"period"`
	Start        time.Time                 `json:"start"`
	End          time.Time                 `json:"end"`
	Buckets      []bucketResponse          `json:"buckets"`
	Categories   []categorySummaryResponse `json:"categories"`
	TotalIncome  int64                     `json:"total_income"`
	TotalExpense int64                     `json:"total_expense"`
	NoData       bool                      `json:"no_data"`
}

// noDataResponse is what the reports screen renders as its empty state.
type noDataResponse struct {
	NoData bool `json:"no_data"`
}

type entryResponse struct {
	ID           uuid.UUID        `json:"id"`
	Amount       int64            `json:"amount"`
	Type         transaction.Type `json:"type"`
	Description  string           `json:"description"`
	Date         time.Time        `json:"date"`
	AddedBy      string           `json:"added_by"`
	CategoryName string           `json:"category_name"`
	CategoryIcon string           `json:"category_icon"`
	Color        string           `json:"color,omitempty"`
}

type dashboardResponse struct {
	Balance          int64           `json:"balance"`
	MonthIncome      int64           `json:"month_income"`
	MonthExpense     int64           `json:"month_expense"`
	Budget           int64           `json:"budget"`
	BudgetUsed       int64           `json:"budget_used"`
	BudgetPercentage int             `json:"budget_percentage"`
	Recent           []entryResponse `json:"recent"`
}

func toReportResponse(r *report.Report) reportResponse {
	resp := reportResponse{
		Period:       r.Period,
		Start:        r.Start,
		End:          r.End,
		Buckets:      make([]bucketResponse, 0, len(r.Buckets)),
		Categories:   make([]categorySummaryResponse, 0, len(r.Categories)),
		TotalIncome:  r.TotalIncome,
		TotalExpense: r.TotalExpense,
		NoData:       r.NoData,
	}

	for _, b := range r.Buckets {
		resp.Buckets = append(resp.Buckets, bucketResponse(b))
	}

	for _, c := range r.Categories {
		resp.Categories = append(resp.Categories, categorySummaryResponse(c))
	}

	return resp
}

func toDashboardResponse(d *report.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Balance:          d.Balance,
		MonthIncome:      d.MonthIncome,
		MonthExpense:     d.MonthExpense,
		Budget:           d.Budget,
		BudgetUsed:       d.BudgetUsed,
		BudgetPercentage: d.BudgetPercentage,
		Recent:           make([]entryResponse, 0, len(d.Recent)),
	}

	for _, e := range d.Recent {
		resp.Recent = append(resp.Recent, entryResponse{
			ID:           e.Transaction.ID,
			Amount:       e.Transaction.Amount,
			Type:         e.Transaction.Type,
			Description:  e.Transaction.Description,
			Date:         e.Transaction.Date,
			AddedBy:      e.Transaction.AddedBy,
			CategoryName: e.CategoryName,
			CategoryIcon: e.CategoryIcon,
			Color:        e.Color,
		})
	}

	return resp
}
