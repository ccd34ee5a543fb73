package core

import (
	"time"
)

// DateOnly truncates a time to midnight in its location. Demand series and
// business numbers are keyed by calendar day, not instant.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole number of calendar days from a to b
// (negative when b is before a). Dates are compared in UTC so spans over
// DST transitions, where a local day is 23 or 25 hours, still count as
// whole days.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
