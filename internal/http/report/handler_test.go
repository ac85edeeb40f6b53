package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	reportHandler "github.com/MrJamesThe3rd/fynance/internal/http/report"
	"github.com/MrJamesThe3rd/fynance/internal/memory"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

const familyID = "fam-1"

var (
	wib = time.FixedZone("WIB", 7*60*60)
	now = time.Date(2024, 10, 16, 15, 0, 0, 0, wib)
)

type unavailable struct{}

func (unavailable) ListTransactions(context.Context, transaction.ListFilter) ([]*transaction.Transaction, error) {
	return nil, errors.New("connection refused")
}

func (unavailable) ListCategories(context.Context, string) ([]*category.Category, error) {
	return nil, errors.New("connection refused")
}

func newRouter(categories report.CategoryLister, transactions report.TransactionLister) http.Handler {
	svc := report.NewService(categories, transactions,
		report.WithClock(&clock.Mock{FixedNow: now}),
		report.WithLocation(wib),
	)
	h := reportHandler.NewHandler(svc, 2_000_000)

	r := chi.NewRouter()
	r.Use(auth.Fixed(auth.Identity{FamilyID: familyID}))
	r.Route("/reports", h.Routes)
	r.Route("/dashboard", h.DashboardRoutes)

	return r
}

func seeded(t *testing.T) http.Handler {
	t.Helper()

	ctx := context.Background()
	store := memory.New(&clock.Mock{FixedNow: now})

	food := &category.Category{FamilyID: familyID, Name: "Makanan", Type: category.TypeExpense, Color: "#FF6B6B"}
	transport := &category.Category{FamilyID: familyID, Name: "Transportasi", Type: category.TypeExpense}
	require.NoError(t, store.CreateCategory(ctx, food))
	require.NoError(t, store.CreateCategory(ctx, transport))

	for _, tx := range []*transaction.Transaction{
		{CategoryID: food.ID, Amount: 80_000, Type: transaction.TypeExpense, Date: time.Date(2024, 10, 14, 12, 0, 0, 0, wib)},
		{CategoryID: transport.ID, Amount: 20_000, Type: transaction.TypeExpense, Date: time.Date(2024, 10, 15, 8, 0, 0, 0, wib)},
		{Amount: 1_000_000, Type: transaction.TypeIncome, Date: time.Date(2024, 10, 1, 9, 0, 0, 0, wib)},
		{CategoryID: food.ID, Amount: 300_000, Type: transaction.TypeExpense, Date: time.Date(2024, 10, 2, 19, 0, 0, 0, wib)},
	} {
		tx.FamilyID = familyID
		require.NoError(t, store.CreateTransaction(ctx, tx))
	}

	return newRouter(store, store)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

type reportBody struct {
	Buckets []struct {
		Label  string `json:"label"`
		Amount int64  `json:"amount"`
	} `json:"buckets"`
	Categories []struct {
		CategoryName string `json:"category_name"`
		Percentage   int    `json:"percentage"`
		Amount       int64  `json:"amount"`
	} `json:"categories"`
	TotalIncome  int64 `json:"total_income"`
	TotalExpense int64 `json:"total_expense"`
	NoData       bool  `json:"no_data"`
}

func TestHandler_Generate_Week(t *testing.T) {
	rec := get(t, seeded(t), "/reports?period=week")
	require.Equal(t, http.StatusOK, rec.Code)

	var got reportBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	require.Len(t, got.Buckets, 7)
	assert.Equal(t, "Mon", got.Buckets[0].Label)
	assert.Equal(t, int64(80_000), got.Buckets[0].Amount)
	assert.Equal(t, int64(20_000), got.Buckets[1].Amount)

	require.Len(t, got.Categories, 2)
	assert.Equal(t, "Makanan", got.Categories[0].CategoryName)
	assert.Equal(t, 80, got.Categories[0].Percentage)
	assert.Equal(t, 20, got.Categories[1].Percentage)
	assert.False(t, got.NoData)
}

func TestHandler_Generate_DefaultsToMonth(t *testing.T) {
	rec := get(t, seeded(t), "/reports")
	require.Equal(t, http.StatusOK, rec.Code)

	var got reportBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Len(t, got.Buckets, 4)
	assert.Equal(t, int64(1_000_000), got.TotalIncome)
	assert.Equal(t, int64(400_000), got.TotalExpense)
	require.Len(t, got.Categories, 2)
	assert.Equal(t, 95, got.Categories[0].Percentage)
	assert.Equal(t, 5, got.Categories[1].Percentage)
}

func TestHandler_Generate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		router     http.Handler
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "InvalidPeriod",
			router:     newRouter(unavailable{}, unavailable{}),
			path:       "/reports?period=decade",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "StoreUnavailable",
			router:     newRouter(unavailable{}, unavailable{}),
			path:       "/reports?period=week",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"no_data":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, tt.router, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_Generate_EmptyFamily(t *testing.T) {
	store := memory.New(&clock.Mock{FixedNow: now})

	rec := get(t, newRouter(store, store), "/reports?period=year")
	require.Equal(t, http.StatusOK, rec.Code)

	var got reportBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.True(t, got.NoData)
	assert.Len(t, got.Buckets, 12)
	assert.Empty(t, got.Categories)
}

func TestHandler_Dashboard(t *testing.T) {
	router := seeded(t)

	tests := []struct {
		name           string
		path           string
		wantBudget     int64
		wantPercentage int
	}{
		{name: "DefaultBudget", path: "/dashboard", wantBudget: 2_000_000, wantPercentage: 20},
		{name: "QueryBudget", path: "/dashboard?budget=500000", wantBudget: 500_000, wantPercentage: 80},
		{name: "OverBudget", path: "/dashboard?budget=200000", wantBudget: 200_000, wantPercentage: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			var got struct {
				Balance          int64 `json:"balance"`
				Budget           int64 `json:"budget"`
				BudgetPercentage int   `json:"budget_percentage"`
				Recent           []struct {
					CategoryName string `json:"category_name"`
				} `json:"recent"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

			assert.Equal(t, int64(600_000), got.Balance)
			assert.Equal(t, tt.wantBudget, got.Budget)
			assert.Equal(t, tt.wantPercentage, got.BudgetPercentage)
			require.Len(t, got.Recent, 4)
			assert.Equal(t, "Transportasi", got.Recent[0].CategoryName)
		})
	}
}

func TestHandler_Dashboard_BadBudget(t *testing.T) {
	rec := get(t, seeded(t), "/dashboard?budget=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
