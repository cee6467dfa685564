package render_test

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/harborlog/server/internal/harborlog/render"
	"github.com/harborlog/server/internal/harborlog/types"
)

func TestReport_GroupsNumbersAndFormatsDays(t *testing.T) {
	rep := types.Report{
		Variant:            types.VariantHarbor,
		Start:              "2025-01-01",
		End:                "2025-01-14",
		Total:              1234,
		UniqueParticipants: 56,
		ByYear: []types.Bar{
			{Label: "Year 7", Value: 1000, Percent: 100},
			{Label: "Year 8", Value: 234, Percent: 23.4},
		},
		Categories: []types.Breakdown{{Name: "reason", Bars: []types.Bar{{Label: "Food", Value: 3, Percent: 100}}}},
		Trend:      []types.DayCount{{Day: "2025-01-05", Count: 3}},
		Roster:     []types.RosterDay{{Day: "2025-01-05", Unique: 2, Preview: "Ada, Bo"}},
	}

	var b strings.Builder
	if err := render.Default().Report(&b, rep); err != nil {
		t.Fatalf("Report: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"Harbor: 01 Jan 2025 to 14 Jan 2025",
		"1,234",
		"1,000",
		"By reason",
		"05 Jan 2025 (2)  Ada, Bo",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	// period bars are absent, so that section has no data
	if !strings.Contains(out, "By period\n  No data") {
		t.Errorf("expected empty period section:\n%s", out)
	}
}

func TestReport_EmptyRoster(t *testing.T) {
	var b strings.Builder
	_ = render.Default().Report(&b, types.Report{Variant: types.VariantRelocation, Start: "2025-01-01", End: "2025-01-01"})
	if !strings.Contains(b.String(), "No rows in range") {
		t.Errorf("expected empty roster notice:\n%s", b.String())
	}
}

func TestBar_Width(t *testing.T) {
	p := render.New(language.BritishEnglish, 10)

	cases := []struct {
		pct   float64
		value int
		cells int
	}{
		{pct: 100, value: 5, cells: 10},
		{pct: 50, value: 2, cells: 5},
		{pct: 1, value: 1, cells: 1},
		{pct: 0, value: 0, cells: 0},
		{pct: 250, value: 9, cells: 10},
	}
	for _, tc := range cases {
		bar := p.Bar(tc.pct, tc.value)
		if got := strings.Count(bar, "█"); got != tc.cells {
			t.Errorf("Bar(%v): expected %d cells, got %d", tc.pct, tc.cells, got)
		}
		if len([]rune(bar)) != 10 {
			t.Errorf("Bar(%v): expected fixed width 10, got %d", tc.pct, len([]rune(bar)))
		}
	}
}
