package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/types"
)

// RecordStore is an in-memory sign-in log for tests and dev environments.
type RecordStore struct {
	mu      sync.RWMutex
	records map[types.Variant][]types.Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[types.Variant][]types.Record)}
}

func (s *RecordStore) Append(_ context.Context, rec types.Record) (types.Record, error) {
	stored, err := store.Stamp(rec, uuid.NewString, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v := types.VariantOf(stored)
	s.records[v] = append(s.records[v], stored)
	return stored, nil
}

func (s *RecordStore) Query(_ context.Context, variant types.Variant, w store.Window) ([]types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Record, 0)
	for _, r := range s.records[variant] {
		ts := r.CreatedAt()
		if ts.Before(w.From) || ts.After(w.To) {
			continue
		}
		out = append(out, r)
	}
	// newest first; equal timestamps keep the most recently appended first
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b types.Record) int {
		return b.CreatedAt().Compare(a.CreatedAt())
	})
	return out, nil
}

func (s *RecordStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for v, recs := range s.records {
		kept := recs[:0]
		for _, r := range recs {
			if r.CreatedAt().Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		s.records[v] = kept
	}
	return deleted, nil
}

// Records returns a copy of everything stored for variant, in append order.
// Test-only helper.
func (s *RecordStore) Records(variant types.Variant) []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records[variant])
}
