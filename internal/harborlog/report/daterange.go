package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harborlog/server/internal/harborlog/types"
)

// DayLayout is the internal day key: zero-padded so that lexicographic order
// is chronological order.
const DayLayout = "2006-01-02"

// DisplayLayout is the human form of a day, e.g. "05 Jan 2025".
const DisplayLayout = "02 Jan 2006"

// DefaultRangeDays is the width of the default window, today included.
const DefaultRangeDays = 14

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// DateRange is an inclusive pair of calendar days in a location. Start after
// End is allowed and selects nothing.
type DateRange struct {
	Start time.Time
	End   time.Time
	Loc   *time.Location
}

// DefaultRange returns the days-wide window ending on now's calendar day.
func DefaultRange(now time.Time, loc *time.Location, days int) DateRange {
	if loc == nil {
		loc = time.Local
	}
	if days <= 0 {
		days = DefaultRangeDays
	}
	end := truncateDay(now.In(loc))
	return DateRange{Start: end.AddDate(0, 0, -(days - 1)), End: end, Loc: loc}
}

// ParseRange builds a range from two day keys. An empty value falls back to
// the matching side of DefaultRange(now, loc, days).
func ParseRange(start, end string, now time.Time, loc *time.Location, days int) (DateRange, error) {
	r := DefaultRange(now, loc, days)
	if s := strings.TrimSpace(start); s != "" {
		d, err := ParseDay(s, r.Loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("start: %w", err)
		}
		r.Start = d
	}
	if e := strings.TrimSpace(end); e != "" {
		d, err := ParseDay(e, r.Loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("end: %w", err)
		}
		r.End = d
	}
	return r, nil
}

// ParseDay parses a day key as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// StartOfDay is 00:00:00.000 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return truncateDay(t.In(loc))
}

// EndOfDay is 23:59:59.999 of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// DayKey is the local calendar day of t.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// DisplayDay renders a day key as "02 Jan 2006"; invalid keys pass through.
func DisplayDay(key string) string {
	d, err := time.Parse(DayLayout, key)
	if err != nil {
		return key
	}
	return d.Format(DisplayLayout)
}

// Window returns the inclusive query bounds.
func (r DateRange) Window() (from, to time.Time) {
	return StartOfDay(r.Start, r.Loc), EndOfDay(r.End, r.Loc)
}

// Empty reports whether the range selects no day at all.
func (r DateRange) Empty() bool {
	from, to := r.Window()
	return from.After(to)
}

func (r DateRange) StartKey() string { return DayKey(r.Start, r.Loc) }
func (r DateRange) EndKey() string   { return DayKey(r.End, r.Loc) }

func (r DateRange) String() string {
	return r.StartKey() + "_to_" + r.EndKey()
}

// ExportFileName is "<variant>_<start>_to_<end>.<ext>".
func ExportFileName(v types.Variant, r DateRange, ext string) string {
	if ext == "" {
		ext = "csv"
	}
	return fmt.Sprintf("%s_%s.%s", v, r, strings.TrimPrefix(ext, "."))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
