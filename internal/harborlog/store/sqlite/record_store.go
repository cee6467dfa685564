package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/harborlog/server/internal/db"
	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/types"
)

type RecordStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewRecordStore(db *sql.DB, writer *dbpkg.Worker) *RecordStore {
	return &RecordStore{db: db, writer: writer}
}

const selectRelocations = `
SELECT id, created_at_ms, participant_name, year_group, period, responsible_staff
FROM relocations
WHERE created_at_ms >= ? AND created_at_ms <= ?
ORDER BY created_at_ms DESC, rowid DESC;
`

const selectVisits = `
SELECT id, created_at_ms, participant_name, year_group, period, reason, logging_staff
FROM harbor_visits
WHERE created_at_ms >= ? AND created_at_ms <= ?
ORDER BY created_at_ms DESC, rowid DESC;
`

func (s *RecordStore) Query(ctx context.Context, variant types.Variant, w store.Window) ([]types.Record, error) {
	q := selectRelocations
	if variant == types.VariantHarbor {
		q = selectVisits
	}

	rows, err := s.db.QueryContext(ctx, q, w.From.UTC().UnixMilli(), w.To.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("Query %s: %w", variant.Table(), err)
	}
	defer rows.Close()

	out := make([]types.Record, 0)
	for rows.Next() {
		var (
			b              types.Base
			createdMs      int64
			year, period   sql.NullInt64
			extra1, extra2 string
		)
		dest := []any{&b.ID, &createdMs, &b.ParticipantName, &year, &period, &extra1}
		if variant == types.VariantHarbor {
			dest = append(dest, &extra2)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("Query %s scan: %w", variant.Table(), err)
		}
		b.Timestamp = time.UnixMilli(createdMs).UTC()
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
	stored, err := store.Stamp(rec, uuid.NewString, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}

	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		switch r := stored.(type) {
		case types.VisitRecord:
			_, err := tx.ExecContext(ctx, `
INSERT INTO harbor_visits(
  id, created_at_ms, participant_name, year_group, period, reason, logging_staff
) VALUES (?, ?, ?, ?, ?, ?, ?);
`,
				r.ID, r.Timestamp.UTC().UnixMilli(), r.ParticipantName,
				nullInt(r.YearGroup), nullInt(r.PeriodSlot), r.ReasonCode, r.LoggingStaffName,
			)
			return err
		case types.RelocationRecord:
			_, err := tx.ExecContext(ctx, `
INSERT INTO relocations(
  id, created_at_ms, participant_name, year_group, period, responsible_staff
) VALUES (?, ?, ?, ?, ?, ?);
`,
				r.ID, r.Timestamp.UTC().UnixMilli(), r.ParticipantName,
				nullInt(r.YearGroup), nullInt(r.PeriodSlot), r.ResponsibleStaffName,
			)
			return err
		}
		return store.ErrUnsupportedRecord
	})
	if err != nil {
		return nil, fmt.Errorf("Append %s: %w", types.VariantOf(stored).Table(), err)
	}
	return stored, nil
}

// PruneOlderThan deletes rows from both logs with created_at before cutoff.
func (s *RecordStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var total int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, v := range types.Variants {
			res, err := tx.ExecContext(ctx,
				"DELETE FROM "+v.Table()+" WHERE created_at_ms < ?;", cutoffMs)
			if err != nil {
				return fmt.Errorf("PruneOlderThan %s: %w", v.Table(), err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("PruneOlderThan %s rows affected: %w", v.Table(), err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
