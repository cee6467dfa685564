package report

import (
	"github.com/harborlog/server/internal/harborlog/types"
)

// UnknownLabel stands in for an empty categorical value.
const UnknownLabel = "Unknown"

// Axis is a breakdown over a fixed ordinal vocabulary. Records whose value
// is not in Values are left out of the breakdown but still counted in Total.
type Axis struct {
	Name   string
	Values []int
	Label  func(int) string
	Of     func(types.Record) int
}

// Category is an open-ended breakdown over whatever values are observed.
type Category struct {
	Name string
	Of   func(types.Record) string
}

// AxisCounts maps legal axis values to their count. Values never seen are
// absent; Series fills them in with zero.
type AxisCounts struct {
	Axis   Axis
	Counts map[int]int
}

// Series lists every legal value in vocabulary order, zero counts included.
func (a AxisCounts) Series() []Point {
	out := make([]Point, 0, len(a.Axis.Values))
	for _, v := range a.Axis.Values {
		label := ""
		if a.Axis.Label != nil {
			label = a.Axis.Label(v)
		}
		out = append(out, Point{Label: label, Value: a.Counts[v]})
	}
	return out
}

// Sum is the number of records with a legal value on this axis.
func (a AxisCounts) Sum() int {
	n := 0
	for _, c := range a.Counts {
		n += c
	}
	return n
}

// Tally counts observed category values, remembering first-seen order.
type Tally struct {
	Name   string
	Labels []string
	Counts map[string]int
}

func (t *Tally) add(label string) {
	if label == "" {
		label = UnknownLabel
	}
	if _, ok := t.Counts[label]; !ok {
		t.Labels = append(t.Labels, label)
	}
	t.Counts[label]++
}

// Series lists the observed values in first-seen order.
func (t Tally) Series() []Point {
	out := make([]Point, 0, len(t.Labels))
	for _, l := range t.Labels {
		out = append(out, Point{Label: l, Value: t.Counts[l]})
	}
	return out
}

// Summary is everything the Aggregator derives from one record set.
type Summary struct {
	Total              int
	UniqueParticipants int
	Axes               []AxisCounts
	Categories         []Tally
}

// Axis returns the breakdown with the given name.
func (s Summary) Axis(name string) (AxisCounts, bool) {
	for _, a := range s.Axes {
		if a.Axis.Name == name {
			return a, true
		}
	}
	return AxisCounts{}, false
}

// Category returns the tally with the given name.
func (s Summary) Category(name string) (Tally, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Tally{}, false
}

// Aggregate computes totals and breakdowns in a single pass over records.
// Participant names are compared exactly, with no normalisation.
func Aggregate(records []types.Record, axes []Axis, categories []Category) Summary {
	s := Summary{
		Total:      len(records),
		Axes:       make([]AxisCounts, len(axes)),
		Categories: make([]Tally, len(categories)),
	}

	legal := make([]map[int]struct{}, len(axes))
	for i, a := range axes {
		s.Axes[i] = AxisCounts{Axis: a, Counts: make(map[int]int)}
		legal[i] = make(map[int]struct{}, len(a.Values))
		for _, v := range a.Values {
			legal[i][v] = struct{}{}
		}
	}
	for i, c := range categories {
		s.Categories[i] = Tally{Name: c.Name, Counts: make(map[string]int)}
	}

	participants := make(map[string]struct{})
	for _, r := range records {
		participants[r.Participant()] = struct{}{}

		for i, a := range axes {
			v := a.Of(r)
			if _, ok := legal[i][v]; ok {
				s.Axes[i].Counts[v]++
			}
		}
		for i, c := range categories {
			s.Categories[i].add(c.Of(r))
		}
	}
	s.UniqueParticipants = len(participants)

	return s
}
