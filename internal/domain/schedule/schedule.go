// Package schedule holds the time-indexed clinical schedules and resolves the
// value in effect at a given wall-clock instant.
package schedule

import (
	"time"

	"github.com/okian/looplink/internal/domain/model"
)

// Set is one full generation of ingested schedules. It is rebuilt wholesale
// on every profile ingestion and never mutated incrementally.
type Set struct {
	Sensitivity []model.TimeValue[model.Quantity]
	Basal       []model.TimeValue[float64]
	CarbRatio   []model.TimeValue[float64]
	TargetLow   []model.TimeValue[model.Quantity]
	TargetHigh  []model.TimeValue[model.Quantity]

	Overrides []model.RemoteOverride

	Location *time.Location
	Unit     model.Unit
}

// CurrentValue resolves the schedule value in effect at the given instant:
// the value of the last breakpoint whose TimeAsSeconds does not exceed the
// seconds-since-local-midnight of at in loc. Before the first breakpoint the
// result is absent rather than wrapping to the previous day's last entry; a
// day's first entry is expected to start at or near zero.
func CurrentValue[T any](values []model.TimeValue[T], at time.Time, loc *time.Location) (T, bool) {
	var out T
	if len(values) == 0 || loc == nil {
		return out, false
	}

	local := at.In(loc)
	secs := local.Hour()*3600 + local.Minute()*60 + local.Second()

	found := false
	for _, tv := range values {
		if tv.TimeAsSeconds > secs {
			break // breakpoints are sorted ascending
		}
		out = tv.Value
		found = true
	}
	return out, found
}
