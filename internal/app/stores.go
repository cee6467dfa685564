// Package app wires configuration to a concrete record backend. Both the
// server and the CLI open their stores through here.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harborlog/server/internal/config"
	"github.com/harborlog/server/internal/db"
	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/store/memory"
	"github.com/harborlog/server/internal/harborlog/store/postgres"
	"github.com/harborlog/server/internal/harborlog/store/sqlite"
)

// Records is what every backend provides for the sign-in logs.
type Records interface {
	store.RecordStore
	store.RecordPruner
}

// Stores is an opened backend. Close releases it.
type Stores struct {
	Kind    string
	Records Records
	Staff   store.StaffStore

	closers []func()
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenStores opens the backend selected by cfg.Store and loads the configured
// staff directory into it.
func OpenStores(ctx context.Context, cfg config.Config, logger *log.Logger) (*Stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Info("using in-memory store")
		return &Stores{
			Kind:    config.StoreMemory,
			Records: memory.NewRecordStore(),
			Staff:   memory.NewStaffStore(cfg.Staff),
		}, nil

	case config.StorePostgres:
		conn, err := postgres.Open(ctx, cfg.PGURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		staff := postgres.NewStaffStore(conn)
		for email, name := range cfg.Staff {
			if err := staff.Upsert(ctx, email, name); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		logger.Info("using postgres store", "staff", len(cfg.Staff))
		return &Stores{
			Kind:    config.StorePostgres,
			Records: postgres.NewRecordStore(conn),
			Staff:   staff,
			closers: []func(){closeDB(conn, logger)},
		}, nil

	default:
		conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if cfg.Env == "dev" {
			if err := db.SeedDev(ctx, conn, db.SeedDevOptions{Staff: cfg.Staff}); err != nil {
				_ = conn.Close()
				return nil, fmt.Errorf("seed dev: %w", err)
			}
		}
		writer := db.NewWorker(conn)
		logger.Info("using sqlite store", "path", cfg.DBPath)
		return &Stores{
			Kind:    config.StoreSQLite,
			Records: sqlite.NewRecordStore(conn, writer),
			Staff:   sqlite.NewStaffStore(conn, writer),
			closers: []func(){closeDB(conn, logger), writer.Close},
		}, nil
	}
}

func closeDB(conn *sql.DB, logger *log.Logger) func() {
	return func() {
		if err := conn.Close(); err != nil {
			logger.Warn("close database", "err", err)
		}
	}
}
