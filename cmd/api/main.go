package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fynance/internal/auth"
	"github.com/MrJamesThe3rd/fynance/internal/backend"
	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/config"
	"github.com/MrJamesThe3rd/fynance/internal/export"
	fynanceHttp "github.com/MrJamesThe3rd/fynance/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/fynance/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/fynance/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/fynance/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/fynance/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/fynance/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/fynance/internal/http/transaction"
	"github.com/MrJamesThe3rd/fynance/internal/importer"
	"github.com/MrJamesThe3rd/fynance/internal/importer/household"
	"github.com/MrJamesThe3rd/fynance/internal/matching"
	"github.com/MrJamesThe3rd/fynance/internal/report"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.ReportLocation()
	if err != nil {
		slog.Error("failed to load report location", "error", err)
		os.Exit(1)
	}

	stores, err := backend.Open(cfg)
	if err != nil {
		slog.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	logger := slog.Default()

	var (
		categoryService    = category.NewService(stores.Categories, stores.Publisher)
		reconciler         = category.NewReconciler(stores.Categories, stores.Publisher, logger, cfg.Reconcile.Concurrency)
		transactionService = transaction.NewService(stores.Transactions, stores.Publisher)
		matchingService    = matching.NewService(stores.Rules)
		reportService      = report.NewService(stores.Categories, stores.Transactions,
			report.WithLocation(loc),
			report.WithTopN(cfg.Report.TopN),
			report.WithLogger(logger),
		)
		importService = importer.NewService(
			map[importer.Format]importer.Parser{importer.FormatHousehold: household.NewParser(loc)},
			stores.Categories,
			matchingService,
		)
		exportService = export.NewService(stores.Transactions, stores.Categories, nil, loc)
	)

	var (
		categoryH    = categoryHandler.NewHandler(categoryService, reconciler)
		transactionH = txHandler.NewHandler(transactionService, reportService, loc)
		reportH      = reportHandler.NewHandler(reportService, cfg.Report.MonthlyBudget)
		importH      = importHandler.NewHandler(importService, transactionService)
		matchingH    = matchingHandler.NewHandler(matchingService)
		exportH      = exportHandler.NewHandler(exportService)
	)

	router := fynanceHttp.New(
		fynanceHttp.Options{Auth: authMiddleware(cfg), AllowedOrigins: cfg.CORS.AllowedOrigins},
		categoryH, transactionH, reportH, importH, matchingH, exportH,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "backend", cfg.Store.Backend, "location", loc.String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// authMiddleware verifies bearer tokens when a secret is configured. Without
// one every request acts as the TUI family, which only suits local demos.
func authMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.Auth.JWTSecret != "" {
		return auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer).Middleware
	}

	slog.Warn("AUTH_JWT_SECRET not set, all requests use the demo family", "family_id", cfg.TUI.FamilyID)

	return auth.Fixed(auth.Identity{FamilyID: cfg.TUI.FamilyID, Member: cfg.TUI.Member})
}
