package vocab_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/harborlog/server/internal/harborlog/vocab"
)

func TestDefault_Ranges(t *testing.T) {
	v := vocab.Default()

	if !slices.Equal(v.YearGroups, []int{7, 8, 9, 10, 11}) {
		t.Errorf("unexpected year groups: %v", v.YearGroups)
	}
	if !slices.Equal(v.Periods, []int{1, 2, 3, 4, 5, 6}) {
		t.Errorf("unexpected periods: %v", v.Periods)
	}
	if len(v.Reasons) != 12 {
		t.Errorf("expected 12 reasons, got %d", len(v.Reasons))
	}
	if !v.HasReason(vocab.ReasonSearch) || v.HasReason("Nap") {
		t.Error("reason membership is wrong")
	}
	if v.HasYear(12) || !v.HasYear(7) || v.HasPeriod(0) {
		t.Error("ordinal membership is wrong")
	}
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	v, err := vocab.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(v.Periods, vocab.Default().Periods) {
		t.Errorf("expected default periods, got %v", v.Periods)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	data := []byte("periods: [1, 2, 3, 4, 5, 6, 7]\nreasons:\n  - Medical\n  - Other\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, err := vocab.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !v.HasPeriod(7) {
		t.Error("expected period 7 from file")
	}
	if !slices.Equal(v.Reasons, []string{"Medical", "Other"}) {
		t.Errorf("unexpected reasons: %v", v.Reasons)
	}
	// year_groups absent from the file: defaults kept
	if !slices.Equal(v.YearGroups, []int{7, 8, 9, 10, 11}) {
		t.Errorf("expected default year groups, got %v", v.YearGroups)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte("periods: [1, 2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := vocab.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
