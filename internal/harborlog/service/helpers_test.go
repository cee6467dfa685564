package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/types"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard)
}

func day(key string) time.Time {
	d, err := time.ParseInLocation(report.DayLayout, key, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func mustRange(start, end string) report.DateRange {
	r, err := report.ParseRange(start, end, time.Now(), time.UTC, 14)
	if err != nil {
		panic(err)
	}
	return r
}

func visit(key string, hour int, name string, year, period int, reason, staff string) types.VisitRecord {
	return types.VisitRecord{
		Base: types.Base{
			Timestamp:       day(key).Add(time.Duration(hour) * time.Hour),
			ParticipantName: name,
			YearGroup:       year,
			PeriodSlot:      period,
		},
		ReasonCode:       reason,
		LoggingStaffName: staff,
	}
}

// countingStore wraps a RecordStore and counts queries; a non-nil err makes
// every query fail with it.
type countingStore struct {
	store.RecordStore

	mu      sync.Mutex
	queries int
	err     error
}

func (s *countingStore) Query(ctx context.Context, v types.Variant, w store.Window) ([]types.Record, error) {
	s.mu.Lock()
	s.queries++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.RecordStore.Query(ctx, v, w)
}

func (s *countingStore) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

type fetchResult struct {
	records []types.Record
	err     error
}

// gatedFetcher blocks each Snapshot until the test releases the result for
// that range's start day.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan fetchResult
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: make(map[string]chan fetchResult)}
}

func (f *gatedFetcher) gate(key string) chan fetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[key]
	if !ok {
		ch = make(chan fetchResult)
		f.gates[key] = ch
	}
	return ch
}

func (f *gatedFetcher) release(key string, res fetchResult) {
	f.gate(key) <- res
}

func (f *gatedFetcher) Snapshot(ctx context.Context, _ types.Variant, r report.DateRange) ([]types.Record, error) {
	select {
	case res := <-f.gate(r.StartKey()):
		return res.records, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var errBoom = errors.New("relation \"harbor_visits\" does not exist")
