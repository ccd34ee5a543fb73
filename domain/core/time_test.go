package core

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", day, day, 0},
		{"ten days ahead", day, day.AddDate(0, 0, 10), 10},
		{"negative when b precedes a", day, day.AddDate(0, 0, -3), -3},
		{"time of day is ignored", day.Add(23 * time.Hour), day.AddDate(0, 0, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDaysBetween_DSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// US spring-forward on 2026-03-08: the local day is 23 hours long, so
	// wall-clock arithmetic would undercount the span.
	before := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)

	if got := DaysBetween(before, time.Date(2026, 3, 8, 12, 0, 0, 0, loc)); got != 1 {
		t.Errorf("across spring-forward = %d, want 1", got)
	}
	if got := DaysBetween(before, time.Date(2026, 3, 9, 12, 0, 0, 0, loc)); got != 2 {
		t.Errorf("spanning spring-forward = %d, want 2", got)
	}

	// Fall-back on 2026-11-01: the 25-hour day must not overcount either.
	october := time.Date(2026, 10, 31, 12, 0, 0, 0, loc)
	if got := DaysBetween(october, time.Date(2026, 11, 1, 12, 0, 0, 0, loc)); got != 1 {
		t.Errorf("across fall-back = %d, want 1", got)
	}
}
