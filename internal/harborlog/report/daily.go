package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/harborlog/server/internal/harborlog/types"
)

// RosterPreviewLimit caps how many names a roster preview spells out.
const RosterPreviewLimit = 12

// DailyGroups buckets a record set by local calendar day.
type DailyGroups struct {
	counts map[string]int
	names  map[string]map[string]struct{}
}

// GroupByDay buckets records by the day of their timestamp in loc. Input
// order does not matter: every listing is sorted by day key.
func GroupByDay(records []types.Record, loc *time.Location) DailyGroups {
	g := DailyGroups{
		counts: make(map[string]int),
		names:  make(map[string]map[string]struct{}),
	}
	for _, r := range records {
		day := DayKey(r.CreatedAt(), loc)
		g.counts[day]++
		set, ok := g.names[day]
		if !ok {
			set = make(map[string]struct{})
			g.names[day] = set
		}
		set[r.Participant()] = struct{}{}
	}
	return g
}

// Counts returns a copy of the day → record count map.
func (g DailyGroups) Counts() map[string]int {
	out := make(map[string]int, len(g.counts))
	for k, v := range g.counts {
		out[k] = v
	}
	return out
}

// Participants returns the distinct names seen on day, sorted.
func (g DailyGroups) Participants(day string) []string {
	set := g.names[day]
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func (g DailyGroups) days() []string {
	out := make([]string, 0, len(g.counts))
	for d := range g.counts {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Ascending is the trend line order: oldest day first.
func (g DailyGroups) Ascending() []types.DayCount {
	days := g.days()
	out := make([]types.DayCount, 0, len(days))
	for _, d := range days {
		out = append(out, types.DayCount{Day: d, Count: g.counts[d]})
	}
	return out
}

// Descending is the "most recent first" order.
func (g DailyGroups) Descending() []types.DayCount {
	out := g.Ascending()
	slices.Reverse(out)
	return out
}

// Roster lists each day's distinct participants, most recent day first.
// Unique is always the true set size, whatever the preview shows.
func (g DailyGroups) Roster(limit int) []types.RosterDay {
	days := g.days()
	slices.Reverse(days)

	out := make([]types.RosterDay, 0, len(days))
	for _, d := range days {
		names := g.Participants(d)
		out = append(out, types.RosterDay{
			Day:     d,
			Names:   names,
			Unique:  len(names),
			Preview: Preview(names, limit),
		})
	}
	return out
}

// Preview joins up to limit names and appends " +N more" for the rest.
func Preview(names []string, limit int) string {
	if limit <= 0 {
		limit = RosterPreviewLimit
	}
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s +%d more", strings.Join(names[:limit], ", "), len(names)-limit)
}
