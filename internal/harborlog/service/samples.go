package service

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/store"
	"github.com/harborlog/server/internal/harborlog/types"
	"github.com/harborlog/server/internal/harborlog/vocab"
)

var (
	sampleParticipants = []string{
		"Ada Lovelace", "Alan Turing", "Grace Hopper", "Katherine Johnson",
		"Tim Berners-Lee", "Margaret Hamilton", "Edsger Dijkstra", "Barbara Liskov",
	}
	sampleStaff = []string{"Ms Grey", "Mr Fox", "Dr Patel", "Mrs O'Brien"}
)

// Samples returns a deterministic spread of dev records over the days ending
// on now's calendar day: a few visits and relocations per school period.
func Samples(now time.Time, loc *time.Location, days int, v vocab.Vocabulary) []types.Record {
	if v.YearGroups == nil && v.Periods == nil {
		v = vocab.Default()
	}
	r := report.DefaultRange(now, loc, days)

	var out []types.Record
	n := 0
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for i := 0; i < 3+day.Day()%4; i++ {
			n++
			base := types.Base{
				Timestamp:       day.Add(time.Duration(8*60+n*17%420) * time.Minute),
				ParticipantName: sampleParticipants[n%len(sampleParticipants)],
				YearGroup:       v.YearGroups[n%len(v.YearGroups)],
				PeriodSlot:      v.Periods[(n/2)%len(v.Periods)],
			}
			if n%3 == 0 {
				out = append(out, types.RelocationRecord{
					Base:                 base,
					ResponsibleStaffName: sampleStaff[n%len(sampleStaff)],
				})
				continue
			}
			out = append(out, types.VisitRecord{
				Base:             base,
				ReasonCode:       v.Reasons[n%len(v.Reasons)],
				LoggingStaffName: sampleStaff[(n+1)%len(sampleStaff)],
			})
		}
	}
	return out
}

// Seed appends recs to st and returns how many were written.
func Seed(ctx context.Context, st store.RecordStore, recs []types.Record) (int, error) {
	for i, rec := range recs {
		if _, err := st.Append(ctx, rec); err != nil {
			return i, fmt.Errorf("seed record %d: %w", i, err)
		}
	}
	return len(recs), nil
}
