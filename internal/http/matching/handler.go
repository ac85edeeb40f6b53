package matching

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		http.Error(w, "description query parameter is required", http.StatusBadRequest)
		return
	}

	id, err := h.svc.Suggest(r.Context(), auth.FamilyID(r.Context()), desc)
	if err != nil {
		slog.Error("failed to suggest category", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := suggestResponse{Description: desc}
	if id != uuid.Nil {
		resp.CategoryID = &id
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type learnRequest struct {
	Pattern    string    `json:"pattern"`
	CategoryID uuid.UUID `json:"category_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.CategoryID == uuid.Nil {
		http.Error(w, "pattern and category_id are required", http.StatusBadRequest)
		return
	}

	err := h.svc.Learn(r.Context(), auth.FamilyID(r.Context()), req.Pattern, req.CategoryID)
	if err != nil {
		if errors.Is(err, matching.ErrEmptyPattern) {
			http.Error(w, "pattern and category_id are required", http.StatusBadRequest)
			return
		}

		slog.Error("failed to learn rule", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
}
