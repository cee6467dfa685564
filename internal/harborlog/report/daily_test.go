package report_test

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
)

func TestGroupByDay_Scenario(t *testing.T) {
	records := []types.Record{
		relocation("1", "2025-01-01", "A", 7, 1, "X"),
		relocation("2", "2025-01-01", "B", 7, 1, "X"),
		relocation("3", "2025-01-02", "A", 7, 1, "X"),
	}

	g := report.GroupByDay(records, time.UTC)

	counts := g.Counts()
	if len(counts) != 2 || counts["2025-01-01"] != 2 || counts["2025-01-02"] != 1 {
		t.Errorf("unexpected daily counts: %v", counts)
	}
	if got := g.Participants("2025-01-01"); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("unexpected roster for 2025-01-01: %v", got)
	}

	s := report.Aggregate(records, nil, nil)
	if s.UniqueParticipants != 2 {
		t.Errorf("expected 2 unique participants overall, got %d", s.UniqueParticipants)
	}
}

func TestGroupByDay_OrderIndependentOfInput(t *testing.T) {
	newestFirst := []types.Record{
		relocation("3", "2025-01-03", "C", 7, 1, "X"),
		relocation("1", "2025-01-01", "A", 7, 1, "X"),
		relocation("2", "2025-01-02", "B", 7, 1, "X"),
	}
	oldestFirst := []types.Record{newestFirst[1], newestFirst[2], newestFirst[0]}

	a := report.GroupByDay(newestFirst, time.UTC).Ascending()
	b := report.GroupByDay(oldestFirst, time.UTC).Ascending()
	if !slices.Equal(a, b) {
		t.Fatalf("ascending order depends on input order: %v vs %v", a, b)
	}

	wantAsc := []string{"2025-01-01", "2025-01-02", "2025-01-03"}
	for i, d := range a {
		if d.Day != wantAsc[i] {
			t.Errorf("ascending[%d]: expected %s, got %s", i, wantAsc[i], d.Day)
		}
	}

	desc := report.GroupByDay(oldestFirst, time.UTC).Descending()
	if desc[0].Day != "2025-01-03" || desc[2].Day != "2025-01-01" {
		t.Errorf("unexpected descending order: %v", desc)
	}
}

func TestGroupByDay_CountsSumToTotal(t *testing.T) {
	var records []types.Record
	for i := 0; i < 40; i++ {
		day := fmt.Sprintf("2025-02-%02d", 1+i%9)
		records = append(records, relocation(fmt.Sprint(i), day, fmt.Sprintf("P%d", i%7), 7, 1, "X"))
	}

	sum := 0
	for _, c := range report.GroupByDay(records, time.UTC).Counts() {
		sum += c
	}
	if sum != len(records) {
		t.Errorf("expected daily counts to sum to %d, got %d", len(records), sum)
	}
}

func TestGroupByDay_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 23:30 UTC on the 1st is 01:30 on the 2nd at UTC+2.
	rec := types.RelocationRecord{Base: types.Base{
		ID:              "1",
		Timestamp:       time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC),
		ParticipantName: "A",
	}}

	counts := report.GroupByDay([]types.Record{rec}, loc).Counts()
	if counts["2025-01-02"] != 1 {
		t.Errorf("expected bucket 2025-01-02, got %v", counts)
	}
}

// ── Roster ──────────────────────────────────────────────────────────────────

func TestRoster_PreviewCapsAtTwelve(t *testing.T) {
	var records []types.Record
	for i := 0; i < 15; i++ {
		records = append(records, relocation(fmt.Sprint(i), "2025-03-04", fmt.Sprintf("N%02d", i), 7, 1, "X"))
	}
	// duplicate name on the same day does not grow the set
	records = append(records, relocation("dup", "2025-03-04", "N00", 7, 1, "X"))

	roster := report.GroupByDay(records, time.UTC).Roster(report.RosterPreviewLimit)
	if len(roster) != 1 {
		t.Fatalf("expected 1 roster day, got %d", len(roster))
	}
	day := roster[0]
	if day.Unique != 15 {
		t.Errorf("expected true unique count 15, got %d", day.Unique)
	}
	want := "N00, N01, N02, N03, N04, N05, N06, N07, N08, N09, N10, N11 +3 more"
	if day.Preview != want {
		t.Errorf("unexpected preview:\n got  %q\n want %q", day.Preview, want)
	}
}

func TestRoster_MostRecentFirstAndSorted(t *testing.T) {
	records := []types.Record{
		relocation("1", "2025-01-01", "Zed", 7, 1, "X"),
		relocation("2", "2025-01-01", "Amy", 7, 1, "X"),
		relocation("3", "2025-01-05", "Bo", 7, 1, "X"),
	}
	roster := report.GroupByDay(records, time.UTC).Roster(0)

	if roster[0].Day != "2025-01-05" || roster[1].Day != "2025-01-01" {
		t.Errorf("expected most recent day first, got %v", roster)
	}
	if roster[1].Preview != "Amy, Zed" {
		t.Errorf("expected alphabetical preview, got %q", roster[1].Preview)
	}
}

func TestPreview_Boundary(t *testing.T) {
	names := []string{"a", "b", "c"}
	if got := report.Preview(names, 3); got != "a, b, c" {
		t.Errorf("expected no suffix at the limit, got %q", got)
	}
	if got := report.Preview(names, 2); got != "a, b +1 more" {
		t.Errorf("unexpected preview: %q", got)
	}
	if got := report.Preview(nil, 2); got != "" {
		t.Errorf("expected empty preview, got %q", got)
	}
}

// ── Build ───────────────────────────────────────────────────────────────────

func TestBuild_EmptySet(t *testing.T) {
	r := report.DateRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
		Loc:   time.UTC,
	}
	rep := report.Build(types.VariantHarbor, r, nil, report.Options{Vocabulary: vocab.Default()})

	if rep.Total != 0 || rep.UniqueParticipants != 0 {
		t.Errorf("expected zero totals, got %d/%d", rep.Total, rep.UniqueParticipants)
	}
	if len(rep.Trend) != 0 || len(rep.Roster) != 0 {
		t.Errorf("expected empty trend and roster")
	}
	if len(rep.Categories) != 2 {
		t.Fatalf("expected reason+staff categories, got %d", len(rep.Categories))
	}
	for _, c := range rep.Categories {
		if len(c.Bars) != 0 {
			t.Errorf("category %s: expected no bars", c.Name)
		}
	}
	if rep.ExportFile != "harbor_2025-01-01_to_2025-01-14.csv" {
		t.Errorf("unexpected export file: %q", rep.ExportFile)
	}
}

func TestBuild_HarborDashboard(t *testing.T) {
	records := []types.Record{
		visit("3", "2025-01-02", "A", 9, 2, "Medical", "Ms Grey"),
		visit("2", "2025-01-01", "B", 9, 2, "Food", "Ms Grey"),
		visit("1", "2025-01-01", "A", 7, 5, "Medical", "Mr Fox"),
	}
	r := report.DateRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Loc:   time.UTC,
	}
	rep := report.Build(types.VariantHarbor, r, records, report.Options{})

	if rep.Total != 3 || rep.UniqueParticipants != 2 {
		t.Errorf("unexpected totals: %d/%d", rep.Total, rep.UniqueParticipants)
	}
	if len(rep.ByYear) != 5 || rep.ByYear[0].Label != "Year 9" || rep.ByYear[0].Value != 2 {
		t.Errorf("unexpected by_year: %+v", rep.ByYear)
	}
	if len(rep.ByPeriod) != 6 || rep.ByPeriod[0].Label != "P2" {
		t.Errorf("unexpected by_period: %+v", rep.ByPeriod)
	}
	if rep.Categories[0].Name != report.CategoryReason || rep.Categories[0].Bars[0].Label != "Medical" {
		t.Errorf("unexpected reason breakdown: %+v", rep.Categories[0])
	}
	if rep.Trend[0].Day != "2025-01-01" || rep.Trend[0].Count != 2 {
		t.Errorf("unexpected trend: %+v", rep.Trend)
	}
	if rep.Roster[0].Day != "2025-01-02" {
		t.Errorf("unexpected roster: %+v", rep.Roster)
	}
}
