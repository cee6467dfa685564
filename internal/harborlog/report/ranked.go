package report

import (
	"cmp"
	"slices"

	"github.com/harborlog/server/internal/harborlog/types"
)

// DefaultMaxBars is how many entries a ranked chart shows.
const DefaultMaxBars = 8

// Point is one label/value pair of a series.
type Point struct {
	Label string
	Value int
}

// TopN returns the maxBars largest entries, value descending. The sort is
// stable, so equal values keep their input order; no secondary key applies.
func TopN(series []Point, maxBars int) []Point {
	if maxBars <= 0 {
		maxBars = DefaultMaxBars
	}
	out := slices.Clone(series)
	slices.SortStableFunc(out, func(a, b Point) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if len(out) > maxBars {
		out = out[:maxBars]
	}
	return out
}

// Bars ranks series and scales each entry against the largest value shown.
// The scale floor is 1 so an all-zero series renders as empty bars.
func Bars(series []Point, maxBars int) []types.Bar {
	top := TopN(series, maxBars)

	peak := 1
	for _, p := range top {
		peak = max(peak, p.Value)
	}

	out := make([]types.Bar, 0, len(top))
	for _, p := range top {
		out = append(out, types.Bar{
			Label:   p.Label,
			Value:   p.Value,
			Percent: 100 * float64(p.Value) / float64(peak),
		})
	}
	return out
}
