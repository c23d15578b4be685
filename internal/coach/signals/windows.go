// Package signals gathers the read-only aggregate evidence the rule engine
// evaluates: funnel counts, payment gaps, expense totals, and exam-risk
// scheduling gaps, always bounded to the caller's resolved scope.
package signals

import (
	"fmt"
	"sync"
	"time"
)

// DateKeyLayout is the canonical day key format used throughout the engine.
const DateKeyLayout = "2006-01-02"

var (
	businessLocOnce sync.Once
	businessLoc     *time.Location
)

// BusinessLocation returns the school's fixed local timezone. All day and
// month boundaries are computed here, never in UTC. Asia/Ho_Chi_Minh has no
// DST, so the fixed-offset fallback is equivalent when zone data is missing.
func BusinessLocation() *time.Location {
	businessLocOnce.Do(func() {
		loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
		if err != nil {
			loc = time.FixedZone("ICT", 7*60*60)
		}
		businessLoc = loc
	})
	return businessLoc
}

// Window holds the time boundaries for one generation day. All end bounds
// are exclusive.
type Window struct {
	DateKey        string
	DayStart       time.Time
	DayEnd         time.Time
	MonthStart     time.Time
	MonthEnd       time.Time
	LookbackStart  time.Time // 14 days before DayStart
	Lookahead7End  time.Time
	Lookahead14End time.Time
}

// ComputeWindow derives the query boundaries for a date key in the business
// timezone.
func ComputeWindow(dateKey string) (Window, error) {
	loc := BusinessLocation()

	day, err := time.ParseInLocation(DateKeyLayout, dateKey, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid date key %q: %w", dateKey, err)
	}

	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)

	return Window{
		DateKey:        dateKey,
		DayStart:       day,
		DayEnd:         day.AddDate(0, 0, 1),
		MonthStart:     monthStart,
		MonthEnd:       monthStart.AddDate(0, 1, 0),
		LookbackStart:  day.AddDate(0, 0, -14),
		Lookahead7End:  day.AddDate(0, 0, 7),
		Lookahead14End: day.AddDate(0, 0, 14),
	}, nil
}

// Today returns the current date key in the business timezone.
func Today() string {
	return time.Now().In(BusinessLocation()).Format(DateKeyLayout)
}
