// Package notify carries invalidation events: after a family's categories or
// transactions change, clients re-fetch and re-run their aggregation.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

type Scope string

const (
	ScopeCategories   Scope = "categories"
	ScopeTransactions Scope = "transactions"
)

type Invalidation struct {
	FamilyID  string    `json:"family_id"`
	Scope     Scope     `json:"scope"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInvalidation(familyID string, scope Scope) Invalidation {
	return Invalidation{
		FamilyID:  familyID,
		Scope:     scope,
		Timestamp: time.Now(),
	}
}

func (i Invalidation) ToJSON() ([]byte, error) {
	return json.Marshal(i)
}

func InvalidationFromJSON(data []byte) (Invalidation, error) {
	var inv Invalidation
	err := json.Unmarshal(data, &inv)

	return inv, err
}

type Publisher interface {
	Publish(ctx context.Context, inv Invalidation) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Invalidation) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Invalidation
}

func (r *Recorder) Publish(_ context.Context, inv Invalidation) error {
	r.Events = append(r.Events, inv)
	return nil
}
