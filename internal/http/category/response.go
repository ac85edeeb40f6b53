package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fynance/internal/category"
)

type categoryResponse struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Type      category.Type `json:"type"`
	Color     string        `json:"color,omitempty"`
	Icon      string        `json:"icon,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type reconcileResponse struct {
	Created           int             `json:"created"`
	GroupsAffected    int             `json:"groups_affected"`
	DuplicatesRemoved int             `json:"duplicates_removed"`
	Failed            []uuid.UUID     `json:"failed"`
	Counts            category.Counts `json:"counts"`
	Partial           bool            `json:"partial"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt,
	}
}

func toResponseList(cats []*category.Category) []categoryResponse {
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, toResponse(c))
	}

	return resp
}

func toReconcileResponse(r category.ReconcileReport, partial bool) reconcileResponse {
	failed := r.Dedup.Failed
	if failed == nil {
		failed = []uuid.UUID{}
	}

	return reconcileResponse{
		Created:           r.Created,
		GroupsAffected:    r.Dedup.GroupsAffected,
		DuplicatesRemoved: r.Dedup.DuplicatesRemoved,
		Failed:            failed,
		Counts:            r.Counts,
		Partial:           partial,
	}
}
