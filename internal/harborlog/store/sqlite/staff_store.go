package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/harborlog/server/internal/db"
)

type StaffStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewStaffStore(db *sql.DB, writer *dbpkg.Worker) *StaffStore {
	return &StaffStore{db: db, writer: writer}
}

func (s *StaffStore) LookupName(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", nil
	}

	var name string
	err := s.db.QueryRowContext(ctx, `
SELECT display_name FROM staff WHERE email = ?;
`, email).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("LookupName query: %w", err)
	}
	return name, nil
}

// Upsert inserts or renames a staff member.
func (s *StaffStore) Upsert(ctx context.Context, email, name string) error {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil
	}
	ms := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO staff(email, display_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET
  display_name  = excluded.display_name,
  updated_at_ms = excluded.updated_at_ms;
`, email, name, ms, ms); err != nil {
			return fmt.Errorf("Upsert staff %s: %w", email, err)
		}
		return nil
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
