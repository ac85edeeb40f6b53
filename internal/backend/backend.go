// Package backend opens the stores and publisher selected by configuration.
package backend

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/fynance/internal/amqp"
	"github.com/MrJamesThe3rd/fynance/internal/category"
	categoryStore "github.com/MrJamesThe3rd/fynance/internal/category/store"
	"github.com/MrJamesThe3rd/fynance/internal/clock"
	"github.com/MrJamesThe3rd/fynance/internal/config"
	"github.com/MrJamesThe3rd/fynance/internal/database"
	"github.com/MrJamesThe3rd/fynance/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/fynance/internal/matching/store"
	"github.com/MrJamesThe3rd/fynance/internal/memory"
	"github.com/MrJamesThe3rd/fynance/internal/notify"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
	txStore "github.com/MrJamesThe3rd/fynance/internal/transaction/store"
)

type Stores struct {
	Categories   category.Repository
	Transactions transaction.Repository
	Rules        matching.Repository
	Publisher    notify.Publisher

	closers []func() error
}

// Open connects to the configured store backend and, when AMQP_URL is set,
// the invalidation exchange. Postgres migrations run before Open returns.
func Open(cfg *config.Config) (*Stores, error) {
	s := &Stores{Publisher: notify.Nop{}}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}

		s.usePostgres(db)
	case config.BackendMemory:
		slog.Warn("using in-memory store, data is lost on exit")

		mem := memory.New(clock.System{})
		s.Categories, s.Transactions, s.Rules = mem, mem, mem
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.AMQP.URL != "" {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connecting to AMQP: %w", err), s.Close())
		}

		s.Publisher = client
		s.closers = append(s.closers, client.Close)
	}

	return s, nil
}

func (s *Stores) usePostgres(db *sql.DB) {
	s.Categories = categoryStore.New(db)
	s.Transactions = txStore.New(db)
	s.Rules = matchingStore.New(db)
	s.closers = append(s.closers, db.Close)
}

// Close releases connections in reverse order of opening.
func (s *Stores) Close() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}

	s.closers = nil

	return errors.Join(errs...)
}
