package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/export"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/summary", h.summary)
}

type itemResponse struct {
	ID           uuid.UUID        `json:"id"`
	Amount       int64            `json:"amount"`
	Type         transaction.Type `json:"type"`
	Description  string           `json:"description"`
	Date         time.Time        `json:"date"`
	CategoryName string           `json:"category_name"`
}

type summaryResponse struct {
	Transactions []itemResponse `json:"transactions"`
	Summary      string         `json:"summary"`
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) (report.Period, []export.Item, bool) {
	period := report.PeriodMonth

	if s := r.URL.Query().Get("period"); s != "" {
		p, err := report.ParsePeriod(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return "", nil, false
		}

		period = p
	}

	items, err := h.svc.Items(r.Context(), auth.FamilyID(r.Context()), period)
	if err != nil {
		if errors.Is(err, report.ErrInvalidPeriod) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return "", nil, false
		}

		slog.Error("failed to load export", "error", err)
		http.Error(w, "export unavailable", http.StatusServiceUnavailable)

		return "", nil, false
	}

	return period, items, true
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	period, items, ok := h.items(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.svc.WriteCSV(&buf, items); err != nil {
		slog.Error("failed to write export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	filename := fmt.Sprintf("fynance-%s-%s.csv", period, time.Now().Format(time.DateOnly))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to stream export", "error", err)
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	_, items, ok := h.items(w, r)
	if !ok {
		return
	}

	resp := summaryResponse{
		Transactions: make([]itemResponse, 0, len(items)),
		Summary:      h.svc.Summary(items),
	}

	for _, item := range items {
		resp.Transactions = append(resp.Transactions, itemResponse{
			ID:           item.Transaction.ID,
			Amount:       item.Transaction.Amount,
			Type:         item.Transaction.Type,
			Description:  item.Transaction.Description,
			Date:         item.Transaction.Date,
			CategoryName: item.CategoryName,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
