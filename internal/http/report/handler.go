package report

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/report"
)

type Handler struct {
	svc    *report.Service
	budget int64
}

// NewHandler uses budget when a dashboard request does not name one.
func NewHandler(svc *report.Service, budget int64) *Handler {
	return &Handler{svc: svc, budget: budget}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.generate)
}

func (h *Handler) DashboardRoutes(r chi.Router) {
	r.Get("/", h.dashboard)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	period := report.PeriodMonth

	if s := r.URL.Query().Get("period"); s != "" {
		p, err := report.ParsePeriod(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		period = p
	}

	rep, err := h.svc.Generate(r.Context(), auth.FamilyID(r.Context()), period)
	if err != nil {
		if errors.Is(err, report.ErrInvalidPeriod) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.Error("failed to generate report", "period", period, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, noDataResponse{NoData: true})

		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(rep))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	budget := h.budget

	if s := r.URL.Query().Get("budget"); s != "" {
		b, err := strconv.ParseInt(s, 10, 64)
		if err != nil || b < 0 {
			http.Error(w, "invalid budget", http.StatusBadRequest)
			return
		}

		budget = b
	}

	d, err := h.svc.Dashboard(r.Context(), auth.FamilyID(r.Context()), budget)
	if err != nil {
		slog.Error("failed to build dashboard", "error", err)
		http.Error(w, "dashboard unavailable", http.StatusServiceUnavailable)

		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
