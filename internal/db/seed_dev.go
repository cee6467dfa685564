package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type SeedDevOptions struct {
	// Staff maps email → display name for the staff directory.
	Staff map[string]string
}

// SeedDev upserts the configured staff directory. Sample sign-in records are
// written through the record store instead, so they work for every backend.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	for email, name := range opt.Staff {
		email = strings.ToLower(strings.TrimSpace(email))
		name = strings.TrimSpace(name)
		if email == "" || name == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, `
INSERT INTO staff(email, display_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET
  display_name  = excluded.display_name,
  updated_at_ms = excluded.updated_at_ms;
`, email, name, now, now); err != nil {
			return fmt.Errorf("seed staff %s: %w", email, err)
		}
	}

	return nil
}
