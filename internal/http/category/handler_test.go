package category_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	categoryHandler "github.com/MrJamesThe3rd/fynance/internal/http/category"
	"github.com/MrJamesThe3rd/fynance/internal/memory"
	"github.com/MrJamesThe3rd/fynance/internal/notify"
)

const familyID = "fam-1"

var created = time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)

func newRouter(repo category.Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := categoryHandler.NewHandler(
		category.NewService(repo, notify.Nop{}),
		category.NewReconciler(repo, notify.Nop{}, logger, 2),
	)

	r := chi.NewRouter()
	r.Use(auth.Fixed(auth.Identity{FamilyID: familyID, Member: "budi@example.com"}))
	r.Route("/categories", h.Routes)

	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func put(store *memory.Store, name string, typ category.Type, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	store.PutCategory(category.Category{ID: id, FamilyID: familyID, Name: name, Type: typ, CreatedAt: createdAt})

	return id
}

func TestHandler_List(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: created})
	put(store, "Transportasi", category.TypeExpense, created)
	put(store, "Gaji", category.TypeIncome, created)

	rec := do(t, newRouter(store), http.MethodGet, "/categories/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Gaji", got[0]["name"])
	assert.Equal(t, "income", got[0]["type"])
}

func TestHandler_List_StoreFailureReturnsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().ListCategories(gomock.Any(), familyID).Return(nil, errors.New("connection refused"))

	rec := do(t, newRouter(repo), http.MethodGet, "/categories/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "Valid", body: `{"name":"Kopi","type":"expense","icon":"☕"}`, wantStatus: http.StatusCreated},
		{name: "BlankName", body: `{"name":"  ","type":"expense"}`, wantStatus: http.StatusBadRequest},
		{name: "BadType", body: `{"name":"Kopi","type":"transfer"}`, wantStatus: http.StatusBadRequest},
		{name: "BadJSON", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New(&clock.Mock{FixedNow: created})

			rec := do(t, newRouter(store), http.MethodPost, "/categories/", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Update(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: created})
	id := put(store, "Kopi", category.TypeExpense, created)
	router := newRouter(store)

	rec := do(t, router, http.MethodPatch, "/categories/"+id.String(), `{"name":"Kopi Susu"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Kopi Susu"`)

	rec = do(t, router, http.MethodPatch, "/categories/"+uuid.NewString(), `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPatch, "/categories/not-a-uuid", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Delete_Idempotent(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: created})
	id := put(store, "Kopi", category.TypeExpense, created)
	router := newRouter(store)

	for range 2 {
		rec := do(t, router, http.MethodDelete, "/categories/"+id.String(), "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestHandler_Delete_OtherFamily(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: created})
	id := uuid.New()
	store.PutCategory(category.Category{ID: id, FamilyID: "fam-2", Name: "Kopi", Type: category.TypeExpense, CreatedAt: created})

	rec := do(t, newRouter(store), http.MethodDelete, "/categories/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	got, err := store.ListCategories(t.Context(), "fam-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
}

func TestHandler_Reconcile(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: created})
	put(store, "Transportasi", category.TypeExpense, created)
	put(store, " transportasi ", category.TypeExpense, created.Add(time.Hour))
	put(store, "Gaji", category.TypeIncome, created)

	router := newRouter(store)

	rec := do(t, router, http.MethodPost, "/categories/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"created": 0,
		"groups_affected": 1,
		"duplicates_removed": 1,
		"failed": [],
		"counts": {"total": 2, "income": 1, "expense": 1, "duplicates": 0},
		"partial": false
	}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/categories/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total": 2, "income": 1, "expense": 1, "duplicates": 0}`, rec.Body.String())
}

func TestHandler_Reconcile_SeedsEmptyFamily(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: created})

	rec := do(t, newRouter(store), http.MethodPost, "/categories/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Created int             `json:"created"`
		Counts  category.Counts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, len(category.Defaults), got.Created)
	assert.Equal(t, len(category.Defaults), got.Counts.Total)
}

func TestHandler_Reconcile_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().ListCategories(gomock.Any(), familyID).Return(nil, errors.New("connection refused"))

	rec := do(t, newRouter(repo), http.MethodPost, "/categories/reconcile", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_Reconcile_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	keep := &category.Category{ID: uuid.New(), FamilyID: familyID, Name: "Kopi", Type: category.TypeExpense, CreatedAt: created}
	dup := &category.Category{ID: uuid.New(), FamilyID: familyID, Name: "kopi", Type: category.TypeExpense, CreatedAt: created.Add(time.Hour)}

	repo.EXPECT().ListCategories(gomock.Any(), familyID).Return([]*category.Category{keep, dup}, nil)
	repo.EXPECT().DeleteCategory(gomock.Any(), familyID, dup.ID).Return(errors.New("timeout"))

	rec := do(t, newRouter(repo), http.MethodPost, "/categories/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Failed  []uuid.UUID     `json:"failed"`
		Counts  category.Counts `json:"counts"`
		Partial bool            `json:"partial"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.True(t, got.Partial)
	assert.Equal(t, []uuid.UUID{dup.ID}, got.Failed)
	assert.Equal(t, 1, got.Counts.Duplicates)
}
