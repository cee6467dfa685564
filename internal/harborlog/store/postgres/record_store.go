package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/types"
)

type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

const (
	selectRelocations = `
SELECT id, created_at, participant_name, year_group, period, responsible_staff
FROM relocations
WHERE created_at >= $1 AND created_at <= $2
ORDER BY created_at DESC, seq DESC`

	selectVisits = `
SELECT id, created_at, participant_name, year_group, period, reason, logging_staff
FROM harbor_visits
WHERE created_at >= $1 AND created_at <= $2
ORDER BY created_at DESC, seq DESC`

	insertRelocation = `
INSERT INTO relocations (id, created_at, participant_name, year_group, period, responsible_staff)
VALUES ($1, $2, $3, $4, $5, $6)`

	insertVisit = `
INSERT INTO harbor_visits (id, created_at, participant_name, year_group, period, reason, logging_staff)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

func (s *RecordStore) Query(ctx context.Context, variant types.Variant, w store.Window) ([]types.Record, error) {
	q := selectRelocations
	if variant == types.VariantHarbor {
		q = selectVisits
	}

	rows, err := s.db.QueryContext(ctx, q, w.From.UTC(), w.To.UTC())
	if err != nil {
		return nil, fmt.Errorf("Query %s: %w", variant.Table(), err)
	}
	defer rows.Close()

	out := make([]types.Record, 0)
	for rows.Next() {
		var (
			b              types.Base
			year, period   sql.NullInt64
			extra1, extra2 string
		)
		dest := []any{&b.ID, &b.Timestamp, &b.ParticipantName, &year, &period, &extra1}
		if variant == types.VariantHarbor {
			dest = append(dest, &extra2)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("Query %s scan: %w", variant.Table(), err)
		}
		b.Timestamp = b.Timestamp.UTC()
		b.YearGroup = int(year.Int64)
		b.PeriodSlot = int(period.Int64)

		if variant == types.VariantHarbor {
			out = append(out, types.VisitRecord{Base: b, ReasonCode: extra1, LoggingStaffName: extra2})
		} else {
			out = append(out, types.RelocationRecord{Base: b, ResponsibleStaffName: extra1})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Query %s rows: %w", variant.Table(), err)
	}
	return out, nil
}

func (s *RecordStore) Append(ctx context.Context, rec types.Record) (types.Record, error) {
	// postgres keeps microseconds; exports only show milliseconds
	stored, err := store.Stamp(rec, uuid.NewString, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}

	switch r := stored.(type) {
	case types.VisitRecord:
		_, err = s.db.ExecContext(ctx, insertVisit,
			r.ID, r.Timestamp, r.ParticipantName,
			nullInt(r.YearGroup), nullInt(r.PeriodSlot), r.ReasonCode, r.LoggingStaffName,
		)
	case types.RelocationRecord:
		_, err = s.db.ExecContext(ctx, insertRelocation,
			r.ID, r.Timestamp, r.ParticipantName,
			nullInt(r.YearGroup), nullInt(r.PeriodSlot), r.ResponsibleStaffName,
		)
	default:
		err = store.ErrUnsupportedRecord
	}
	if err != nil {
		return nil, fmt.Errorf("Append %s: %w", types.VariantOf(stored).Table(), err)
	}
	return stored, nil
}

func (s *RecordStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("PruneOlderThan begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for _, v := range types.Variants {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+v.Table()+" WHERE created_at < $1", cutoff.UTC())
		if err != nil {
			return 0, fmt.Errorf("PruneOlderThan %s: %w", v.Table(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("PruneOlderThan %s rows affected: %w", v.Table(), err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("PruneOlderThan commit: %w", err)
	}
	return total, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
