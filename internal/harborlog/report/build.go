package report

import (
	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
)

// Options tune a dashboard build.
type Options struct {
	Vocabulary vocab.Vocabulary
	MaxBars    int
	PreviewMax int
}

// Build derives the full dashboard for one log from a committed record set.
// It is a pure function of its inputs.
func Build(variant types.Variant, r DateRange, records []types.Record, opt Options) types.Report {
	if opt.Vocabulary.YearGroups == nil && opt.Vocabulary.Periods == nil {
		opt.Vocabulary = vocab.Default()
	}
	axes := []Axis{YearAxis(opt.Vocabulary), PeriodAxis(opt.Vocabulary)}
	summary := Aggregate(records, axes, Categories(variant))
	daily := GroupByDay(records, r.Loc)

	rep := types.Report{
		Variant:            variant,
		Start:              r.StartKey(),
		End:                r.EndKey(),
		Total:              summary.Total,
		UniqueParticipants: summary.UniqueParticipants,
		Trend:              daily.Ascending(),
		Roster:             daily.Roster(opt.PreviewMax),
		ExportFile:         ExportFileName(variant, r, "csv"),
	}

	if a, ok := summary.Axis(AxisYear); ok {
		rep.ByYear = Bars(a.Series(), opt.MaxBars)
	}
	if a, ok := summary.Axis(AxisPeriod); ok {
		rep.ByPeriod = Bars(a.Series(), opt.MaxBars)
	}
	for _, c := range summary.Categories {
		rep.Categories = append(rep.Categories, types.Breakdown{
			Name: c.Name,
			Bars: Bars(c.Series(), opt.MaxBars),
		})
	}
	return rep
}
