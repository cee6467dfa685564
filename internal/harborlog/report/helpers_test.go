package report_test

import (
	"time"

	"github.com/harborlog/server/internal/harborlog/types"
)

// at returns 10:00 UTC on the given day key, plus offset.
func at(day string, offset time.Duration) time.Time {
	t, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		panic(err)
	}
	return t.Add(10*time.Hour + offset)
}

func visit(id, day, name string, year, period int, reason, staff string) types.Record {
	return types.VisitRecord{
		Base: types.Base{
			ID:              id,
			Timestamp:       at(day, 0),
			ParticipantName: name,
			YearGroup:       year,
			PeriodSlot:      period,
		},
		ReasonCode:       reason,
		LoggingStaffName: staff,
	}
}

func relocation(id, day, name string, year, period int, staff string) types.Record {
	return types.RelocationRecord{
		Base: types.Base{
			ID:              id,
			Timestamp:       at(day, 0),
			ParticipantName: name,
			YearGroup:       year,
			PeriodSlot:      period,
		},
		ResponsibleStaffName: staff,
	}
}
