package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type StaffStore struct {
	db *sql.DB
}

func NewStaffStore(db *sql.DB) *StaffStore {
	return &StaffStore{db: db}
}

func (s *StaffStore) LookupName(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", nil
	}

	var name string
	err := s.db.QueryRowContext(ctx, `SELECT display_name FROM staff WHERE email = $1`, email).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("LookupName query: %w", err)
	}
	return name, nil
}

func (s *StaffStore) Upsert(ctx context.Context, email, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO staff (email, display_name, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (email) DO UPDATE SET
  display_name = EXCLUDED.display_name,
  updated_at   = now()`, email, name); err != nil {
		return fmt.Errorf("Upsert staff %s: %w", email, err)
	}
	return nil
}
