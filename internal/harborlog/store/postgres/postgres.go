// Package postgres stores the sign-in logs in a hosted PostgreSQL database
// through the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var ErrMissingURL = errors.New("postgres url is required")

// Open connects to url and ensures the schema exists.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrMissingURL
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS relocations (
  seq               BIGSERIAL,
  id                TEXT PRIMARY KEY,
  created_at        TIMESTAMPTZ NOT NULL,
  participant_name  TEXT NOT NULL DEFAULT '',
  year_group        INTEGER,
  period            INTEGER,
  responsible_staff TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS relocations_created_at_idx ON relocations (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS harbor_visits (
  seq              BIGSERIAL,
  id               TEXT PRIMARY KEY,
  created_at       TIMESTAMPTZ NOT NULL,
  participant_name TEXT NOT NULL DEFAULT '',
  year_group       INTEGER,
  period           INTEGER,
  reason           TEXT NOT NULL DEFAULT '',
  logging_staff    TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS harbor_visits_created_at_idx ON harbor_visits (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS staff (
  email        TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

// EnsureSchema creates the tables and indexes when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
