package core

import (
	"fmt"
	"time"
)

// Business-number prefixes. Numbers are date-scoped:
// <PREFIX><YYYYMMDD><4-digit-seq>, where seq restarts at 1 each day.
const (
	ForecastNumberPrefix = "FC"
	AlertNumberPrefix    = "SA"
	PlanNumberPrefix     = "SP"
)

// FormatBusinessNumber renders a date-scoped business number.
// seq is 1-based and zero-padded to four digits.
func FormatBusinessNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s%s%04d", prefix, day.Format("20060102"), seq)
}
