package analytics

import (
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// ComputeHealthScore blends availability, stop frequency, stop duration and
// recent availability into a 0-100 composite.
//
// The blend is a sequential cascade: each factor re-weights the already
// blended running score, so the multiplication order is load-bearing and must
// not be refactored into a flat weighted average.
func ComputeHealthScore(asset models.Asset, events []models.Event, now time.Time) float64 {
	score := 100.0

	availability := AvailabilityPercent(asset.RuntimeSeconds, asset.DowntimeSeconds)
	score = score*0.6 + availability*0.4

	stops := StopEvents(events)
	stopFrequencyScore := clamp(100-float64(len(stops))*5, 0, 100)
	score = score*0.7 + stopFrequencyScore*0.3

	stopDurationScore := clamp(100-AvgStopDuration(stops).Seconds()/60, 0, 100)
	score = score*0.8 + stopDurationScore*0.2

	recentScore := recentAvailability(stops, now)
	score = score*0.9 + recentScore*0.1

	return clamp(score, 0, 100)
}

// recentAvailability looks at only the trailing seven days of stop downtime.
func recentAvailability(stops []models.Event, now time.Time) float64 {
	const recentWindow = 7 * 24 * time.Hour
	cutoff := now.Add(-recentWindow)
	recent := make([]models.Event, 0, len(stops))
	for _, e := range stops {
		if !e.Timestamp.Before(cutoff) {
			recent = append(recent, e)
		}
	}
	if len(recent) == 0 {
		return 100
	}
	return windowAvailability(recent, recentWindow)
}
