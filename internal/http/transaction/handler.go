package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type Handler struct {
	svc      *transaction.Service
	reports  *report.Service
	location *time.Location
}

// NewHandler reads date-only query parameters in loc.
func NewHandler(svc *transaction.Service, reports *report.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}

	return &Handler{svc: svc, reports: reports, location: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
	CategoryID  uuid.UUID        `json:"category_id"`
	Amount      int64            `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		FamilyID:    auth.FamilyID(r.Context()),
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date,
		AddedBy:     auth.AddedBy(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

// list serves the history screen: q searches category, description and member.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := report.HistoryFilter{Search: q.Get("q")}

	if s := q.Get("type"); s != "" {
		t := transaction.Type(s)
		if !t.Valid() {
			http.Error(w, "invalid type", http.StatusBadRequest)
			return
		}

		filter.Type = &t
	}

	if s := q.Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid category_id", http.StatusBadRequest)
			return
		}

		filter.CategoryID = &id
	}

	for param, dst := range map[string]**time.Time{"start_date": &filter.Start, "end_date": &filter.End} {
		s := q.Get(param)
		if s == "" {
			continue
		}

		t, err := time.ParseInLocation(time.DateOnly, s, h.location)
		if err != nil {
			http.Error(w, "invalid "+param, http.StatusBadRequest)
			return
		}

		*dst = &t
	}

	history, err := h.reports.History(r.Context(), auth.FamilyID(r.Context()), filter)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		http.Error(w, "transactions unavailable", http.StatusServiceUnavailable)

		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(history))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), auth.FamilyID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), auth.FamilyID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	Description *string           `json:"description,omitempty"`
	Amount      *int64            `json:"amount,omitempty"`
	Type        *transaction.Type `json:"type,omitempty"`
	Date        *time.Time        `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Update(r.Context(), auth.FamilyID(r.Context()), id, transaction.UpdateParams{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrMalformed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("transaction request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
