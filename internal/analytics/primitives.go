package analytics

import (
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/utils"
)

// AvailabilityPercent converts runtime/downtime counters into a percentage.
// Assets with no recorded time report 100 so that zero-activity assets are
// treated as neutral rather than failing.
func AvailabilityPercent(runtimeSeconds, downtimeSeconds float64) float64 {
	total := runtimeSeconds + downtimeSeconds
	if total <= 0 {
		return 100
	}
	return clamp(runtimeSeconds/total*100, 0, 100)
}

// StopEvents filters the events that represent stops with downtime.
func StopEvents(events []models.Event) []models.Event {
	stops := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.IsStop() {
			stops = append(stops, e)
		}
	}
	return stops
}

// AvgStopDuration returns the mean stop duration, zero when no stops occurred.
func AvgStopDuration(stops []models.Event) time.Duration {
	if len(stops) == 0 {
		return 0
	}
	var total time.Duration
	for _, e := range stops {
		total += e.Duration
	}
	return total / time.Duration(len(stops))
}

// TotalStopDuration sums downtime across stop events.
func TotalStopDuration(stops []models.Event) time.Duration {
	var total time.Duration
	for _, e := range stops {
		total += e.Duration
	}
	return total
}

// MTBFHours derives mean time between failures from cumulative runtime and the
// stop count observed in the window. Returns nil when no stops occurred so
// callers report "no failures" instead of a divide-by-zero artefact.
func MTBFHours(runtimeSeconds float64, stopCount int) *float64 {
	if stopCount == 0 {
		return nil
	}
	v := runtimeSeconds / float64(stopCount) / 3600
	return &v
}

// MTTRMinutes derives mean time to repair from stop events. Nil when there is
// nothing to repair.
func MTTRMinutes(stops []models.Event) *float64 {
	if len(stops) == 0 {
		return nil
	}
	v := AvgStopDuration(stops).Minutes()
	return &v
}

// SplitPeriods slices the window into n equal chronological periods and
// assigns each event to its period. Most recent period is last.
func SplitPeriods(events []models.Event, start, end time.Time, n int) [][]models.Event {
	if n <= 0 || !end.After(start) {
		return nil
	}
	periods := make([][]models.Event, n)
	span := end.Sub(start)
	for _, e := range events {
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		idx := int(float64(e.Timestamp.Sub(start)) / float64(span) * float64(n))
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		periods[idx] = append(periods[idx], e)
	}
	return periods
}

// LeastSquaresSlope fits a simple regression over index positions 0..n-1 and
// returns the slope. Fewer than two points yield zero.
func LeastSquaresSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// DailyStopCounts buckets stop events per UTC calendar day.
func DailyStopCounts(stops []models.Event) map[time.Time]int {
	counts := make(map[time.Time]int)
	for _, e := range stops {
		counts[utils.DayKey(e.Timestamp)]++
	}
	return counts
}

// WeeklyStopCounts buckets stop events into 7-day blocks counted from the
// window start, ordered chronologically.
func WeeklyStopCounts(stops []models.Event, start, end time.Time) []float64 {
	if !end.After(start) {
		return nil
	}
	weeks := int(end.Sub(start).Hours()/(24*7)) + 1
	counts := make([]float64, weeks)
	for _, e := range stops {
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		idx := int(e.Timestamp.Sub(start).Hours() / (24 * 7))
		if idx >= weeks {
			idx = weeks - 1
		}
		counts[idx]++
	}
	return counts
}

// windowAvailability derives availability for a bounded slice of the timeline
// from the downtime its stop events carry.
func windowAvailability(stops []models.Event, window time.Duration) float64 {
	if window <= 0 {
		return 100
	}
	downtime := TotalStopDuration(stops)
	if downtime >= window {
		return 0
	}
	runtime := window - downtime
	return clamp(float64(runtime)/float64(window)*100, 0, 100)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
