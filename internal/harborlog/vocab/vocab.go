// Package vocab owns the fixed vocabularies shared by entry validation and
// the report breakdowns: year groups, period slots and visit reasons.
package vocab

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Year groups and period slots are small ordinal ranges.
const (
	MinYearGroup = 7
	MaxYearGroup = 11

	MinPeriod = 1
	MaxPeriod = 6
)

// Reason is a harbor visit reason code.
type Reason = string

const (
	ReasonHarborPass     Reason = "Harbor Pass"
	ReasonTimetableCheck Reason = "Timetable Check"
	ReasonUniform        Reason = "Uniform"
	ReasonMedical        Reason = "Medical"
	ReasonRefusal        Reason = "Refusal to Attend Lesson"
	ReasonStruggling     Reason = "Struggling to manage"
	ReasonSeekingStaff   Reason = "Seeking a member of staff"
	ReasonStatement      Reason = "Writing a statement"
	ReasonWaterBottle    Reason = "Water bottle"
	ReasonFood           Reason = "Food"
	ReasonOther          Reason = "Other"
	ReasonSearch         Reason = "Search"
)

// Vocabulary is the set of legal values for the categorical record fields.
type Vocabulary struct {
	YearGroups []int    `yaml:"year_groups"`
	Periods    []int    `yaml:"periods"`
	Reasons    []string `yaml:"reasons"`
}

// Default returns the built-in vocabulary.
func Default() Vocabulary {
	v := Vocabulary{
		Reasons: []string{
			ReasonHarborPass,
			ReasonTimetableCheck,
			ReasonUniform,
			ReasonMedical,
			ReasonRefusal,
			ReasonStruggling,
			ReasonSeekingStaff,
			ReasonStatement,
			ReasonWaterBottle,
			ReasonFood,
			ReasonOther,
			ReasonSearch,
		},
	}
	for y := MinYearGroup; y <= MaxYearGroup; y++ {
		v.YearGroups = append(v.YearGroups, y)
	}
	for p := MinPeriod; p <= MaxPeriod; p++ {
		v.Periods = append(v.Periods, p)
	}
	return v
}

// Load reads a YAML vocabulary file. Keys absent from the file keep their
// default values. An empty path returns Default().
func Load(path string) (Vocabulary, error) {
	v := Default()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}

	var file Vocabulary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}

	if len(file.YearGroups) > 0 {
		v.YearGroups = file.YearGroups
	}
	if len(file.Periods) > 0 {
		v.Periods = file.Periods
	}
	if len(file.Reasons) > 0 {
		v.Reasons = file.Reasons
	}
	return v, nil
}

func (v Vocabulary) HasYear(y int) bool      { return slices.Contains(v.YearGroups, y) }
func (v Vocabulary) HasPeriod(p int) bool    { return slices.Contains(v.Periods, p) }
func (v Vocabulary) HasReason(r string) bool { return slices.Contains(v.Reasons, r) }
