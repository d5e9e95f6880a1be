package utils

import "time"

// DayKey truncates a timestamp to its UTC calendar day, used for
// per-day event bucketing.
func DayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
