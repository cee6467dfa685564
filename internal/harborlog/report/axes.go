package report

import (
	"fmt"

	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
)

const (
	AxisYear   = "year_group"
	AxisPeriod = "period"

	CategoryReason = "reason"
	CategoryStaff  = "staff"
)

func YearAxis(v vocab.Vocabulary) Axis {
	return Axis{
		Name:   AxisYear,
		Values: v.YearGroups,
		Label:  func(y int) string { return fmt.Sprintf("Year %d", y) },
		Of:     types.Record.Year,
	}
}

func PeriodAxis(v vocab.Vocabulary) Axis {
	return Axis{
		Name:   AxisPeriod,
		Values: v.Periods,
		Label:  func(p int) string { return fmt.Sprintf("P%d", p) },
		Of:     types.Record.Period,
	}
}

// Categories returns the open-ended breakdowns shown for a log: the member
// of staff for relocations; reason and logging staff for harbor visits.
func Categories(variant types.Variant) []Category {
	if variant == types.VariantHarbor {
		return []Category{
			{Name: CategoryReason, Of: reasonOf},
			{Name: CategoryStaff, Of: staffOf},
		}
	}
	return []Category{{Name: CategoryStaff, Of: staffOf}}
}

func staffOf(r types.Record) string {
	switch rec := r.(type) {
	case types.RelocationRecord:
		return rec.ResponsibleStaffName
	case *types.RelocationRecord:
		return rec.ResponsibleStaffName
	case types.VisitRecord:
		return rec.LoggingStaffName
	case *types.VisitRecord:
		return rec.LoggingStaffName
	}
	return ""
}

func reasonOf(r types.Record) string {
	switch rec := r.(type) {
	case types.VisitRecord:
		return rec.ReasonCode
	case *types.VisitRecord:
		return rec.ReasonCode
	}
	return ""
}
