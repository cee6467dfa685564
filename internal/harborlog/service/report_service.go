package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
)

var ErrInvalidRange = errors.New("invalid date range")

// QueryError wraps a record store failure. Its message is the store's
// message, unchanged, so it can be shown to the viewer as is.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string  { return e.Err.Error() }
func (e *QueryError) Unwrap() error { return e.Err }

// ReportOptions configure a ReportService.
type ReportOptions struct {
	Location   *time.Location
	RangeDays  int
	MaxBars    int
	Vocabulary vocab.Vocabulary

	// Now defaults to time.Now.
	Now func() time.Time
}

// ReportService fetches committed record sets and turns them into dashboards.
type ReportService struct {
	records store.RecordStore
	opt     ReportOptions
	now     func() time.Time
}

func NewReportService(records store.RecordStore, opt ReportOptions) *ReportService {
	if opt.Location == nil {
		opt.Location = time.Local
	}
	if opt.RangeDays <= 0 {
		opt.RangeDays = report.DefaultRangeDays
	}
	if opt.MaxBars <= 0 {
		opt.MaxBars = report.DefaultMaxBars
	}
	if opt.Vocabulary.YearGroups == nil && opt.Vocabulary.Periods == nil {
		opt.Vocabulary = vocab.Default()
	}
	now := opt.Now
	if now == nil {
		now = time.Now
	}
	return &ReportService{records: records, opt: opt, now: now}
}

func (s *ReportService) Location() *time.Location { return s.opt.Location }

// ParseRange resolves start/end day keys in the configured location; either
// may be empty to take the default window edge.
func (s *ReportService) ParseRange(start, end string) (report.DateRange, error) {
	r, err := report.ParseRange(start, end, s.now(), s.opt.Location, s.opt.RangeDays)
	if err != nil {
		return report.DateRange{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return r, nil
}

// Snapshot fetches the records in r, newest first. A range whose start is
// after its end yields an empty set without touching the store.
func (s *ReportService) Snapshot(ctx context.Context, variant types.Variant, r report.DateRange) ([]types.Record, error) {
	if r.Empty() {
		return []types.Record{}, nil
	}
	from, to := r.Window()
	recs, err := s.records.Query(ctx, variant, store.Window{From: from, To: to})
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	if recs == nil {
		recs = []types.Record{}
	}
	return recs, nil
}

// Report derives the dashboard for an already committed record set.
func (s *ReportService) Report(variant types.Variant, r report.DateRange, records []types.Record, maxBars int) types.Report {
	if maxBars <= 0 {
		maxBars = s.opt.MaxBars
	}
	return report.Build(variant, r, records, report.Options{
		Vocabulary: s.opt.Vocabulary,
		MaxBars:    maxBars,
		PreviewMax: report.RosterPreviewLimit,
	})
}

// Build fetches r and derives its dashboard.
func (s *ReportService) Build(ctx context.Context, variant types.Variant, r report.DateRange, maxBars int) (types.Report, error) {
	recs, err := s.Snapshot(ctx, variant, r)
	if err != nil {
		return types.Report{}, err
	}
	return s.Report(variant, r, recs, maxBars), nil
}

// Today returns the records logged on now's calendar day, newest first.
func (s *ReportService) Today(ctx context.Context, variant types.Variant, now time.Time) ([]types.Record, error) {
	return s.Snapshot(ctx, variant, report.DefaultRange(now, s.opt.Location, 1))
}

// Earlier returns the days before today, newest day first, each with its
// records newest first. Days without records are omitted.
func (s *ReportService) Earlier(ctx context.Context, variant types.Variant, now time.Time, days int) ([]types.DayGroup, error) {
	if days <= 0 {
		days = 7
	}
	yesterday := report.StartOfDay(now, s.opt.Location).AddDate(0, 0, -1)
	r := report.DefaultRange(yesterday, s.opt.Location, days)

	recs, err := s.Snapshot(ctx, variant, r)
	if err != nil {
		return nil, err
	}

	groups := make([]types.DayGroup, 0)
	for _, rec := range recs {
		day := report.DayKey(rec.CreatedAt(), s.opt.Location)
		if n := len(groups); n > 0 && groups[n-1].Day == day {
			groups[n-1].Records = append(groups[n-1].Records, rec)
			continue
		}
		groups = append(groups, types.DayGroup{Day: day, Records: []types.Record{rec}})
	}
	return groups, nil
}
