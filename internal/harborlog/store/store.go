package store

import (
	"context"
	"errors"
	"time"

	"github.com/harborlog/server/internal/harborlog/types"
)

var ErrUnsupportedRecord = errors.New("unsupported record type")

// Window is an inclusive pair of instants bounding a query.
type Window struct {
	From time.Time
	To   time.Time
}

// RecordStore is the sign-in log. Both variants share the query contract:
// rows with From <= timestamp <= To, newest first.
type RecordStore interface {
	Query(ctx context.Context, variant types.Variant, w Window) ([]types.Record, error)

	// Append stores rec, assigning id and timestamp when they are empty, and
	// returns the stored record.
	Append(ctx context.Context, rec types.Record) (types.Record, error)
}

// RecordPruner deletes records older than cutoff from both logs.
type RecordPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// StaffStore resolves a staff email to the official display name.
// Unknown emails return "" and no error.
type StaffStore interface {
	LookupName(ctx context.Context, email string) (string, error)
}

// Stamp fills a record's id and timestamp when missing.
func Stamp(rec types.Record, newID func() string, now time.Time) (types.Record, error) {
	switch r := rec.(type) {
	case types.RelocationRecord:
		r.Base = stampBase(r.Base, newID, now)
		return r, nil
	case *types.RelocationRecord:
		c := *r
		c.Base = stampBase(c.Base, newID, now)
		return c, nil
	case types.VisitRecord:
		r.Base = stampBase(r.Base, newID, now)
		return r, nil
	case *types.VisitRecord:
		c := *r
		c.Base = stampBase(c.Base, newID, now)
		return c, nil
	}
	return nil, ErrUnsupportedRecord
}

func stampBase(b types.Base, newID func() string, now time.Time) types.Base {
	if b.ID == "" {
		b.ID = newID()
	}
	if b.Timestamp.IsZero() {
		b.Timestamp = now
	}
	return b
}
