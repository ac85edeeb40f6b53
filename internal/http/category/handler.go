package category

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/category"
)

type Handler struct {
	svc        *category.Service
	reconciler *category.Reconciler
}

func NewHandler(svc *category.Service, reconciler *category.Reconciler) *Handler {
	return &Handler{svc: svc, reconciler: reconciler}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/reconcile", h.reconcile)
	r.Get("/summary", h.summary)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// list never fails the caller: the client keeps working with an empty set.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	cats, err := h.svc.List(r.Context(), familyID)
	if err != nil {
		slog.Warn("failed to list categories", "family_id", familyID, "error", err)

		cats = nil
	}

	writeJSON(w, http.StatusOK, toResponseList(cats))
}

type createCategoryRequest struct {
	Name  string        `json:"name"`
	Type  category.Type `json:"type"`
	Color string        `json:"color"`
	Icon  string        `json:"icon"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		FamilyID: auth.FamilyID(r.Context()),
		Name:     req.Name,
		Type:     req.Type,
		Color:    req.Color,
		Icon:     req.Icon,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(c))
}

type updateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), auth.FamilyID(r.Context()), id, category.UpdateParams{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
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

// reconcile answers with whatever was achieved; write failures only mark the
// response partial. Nothing to report at all means the store is unreachable.
func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	report, err := h.reconciler.Reconcile(r.Context(), familyID)
	if err != nil {
		slog.Warn("category reconcile incomplete", "family_id", familyID, "error", err)

		if report.Counts.Total == 0 && report.Created == 0 {
			http.Error(w, "categories unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	writeJSON(w, http.StatusOK, toReconcileResponse(report, err != nil))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.List(r.Context(), auth.FamilyID(r.Context()))
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		http.Error(w, "categories unavailable", http.StatusServiceUnavailable)

		return
	}

	writeJSON(w, http.StatusOK, category.Count(cats))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrNotFound):
		http.Error(w, "category not found", http.StatusNotFound)
	case errors.Is(err, category.ErrMalformed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("category request failed", "error", err)
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
