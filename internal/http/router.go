package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/fynance/internal/http/category"
	"github.com/MrJamesThe3rd/fynance/internal/http/export"
	"github.com/MrJamesThe3rd/fynance/internal/http/importcsv"
	"github.com/MrJamesThe3rd/fynance/internal/http/matching"
	"github.com/MrJamesThe3rd/fynance/internal/http/report"
	"github.com/MrJamesThe3rd/fynance/internal/http/transaction"
)

type Options struct {
	// Auth authenticates every /api/v1 request and stores the identity in its context.
	Auth           func(http.Handler) http.Handler
	AllowedOrigins []string
}

func New(
	opts Options,
	categoriesV1 *category.Handler,
	transactionsV1 *transaction.Handler,
	reportsV1 *report.Handler,
	importV1 *importcsv.Handler,
	matchingV1 *matching.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(opts.Auth)

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			categoriesV1.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/reports", reportsV1.Routes)
		r.Route("/dashboard", reportsV1.DashboardRoutes)

		r.Route("/import", importV1.Routes)

		r.Route("/matching", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			matchingV1.Routes(r)
		})

		r.Route("/export", exportV1.Routes)
	})

	return router
}
