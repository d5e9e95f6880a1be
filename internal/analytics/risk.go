package analytics

import (
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// FailureThresholds tune the probability boosts applied on top of the score
// base. Defaults mirror the fleet dashboard heuristics.
type FailureThresholds struct {
	HighFrequencyPerDay float64
	MaxStopDuration     time.Duration
}

// DefaultFailureThresholds returns the standard boost triggers.
func DefaultFailureThresholds() FailureThresholds {
	return FailureThresholds{
		HighFrequencyPerDay: 10,
		MaxStopDuration:     1800 * time.Second,
	}
}

// RiskFromScore maps a health score onto its risk tier. Boundaries are
// exclusive on the lower bound: a score of exactly 60 is HIGH, not CRITICAL.
func RiskFromScore(score float64) models.RiskLevel {
	switch {
	case score < 60:
		return models.RiskCritical
	case score < 75:
		return models.RiskHigh
	case score < 85:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// FailureProbability estimates the chance of failure from the health score,
// boosted when stop frequency or stop duration exceed their thresholds.
func FailureProbability(score float64, stops []models.Event, windowDays int, t FailureThresholds) float64 {
	p := (100 - clamp(score, 0, 100)) / 100

	days := float64(windowDays)
	if days < 1 {
		days = 1
	}
	if float64(len(stops))/days > t.HighFrequencyPerDay {
		p += 0.2
	}
	if len(stops) > 0 && AvgStopDuration(stops) > t.MaxStopDuration {
		p += 0.15
	}

	return clamp(p, 0, 1)
}

// PredictMaintenanceDate projects the next maintenance slot from the failure
// probability. Higher probability pulls the date closer to now.
func PredictMaintenanceDate(probability float64, now time.Time) time.Time {
	switch {
	case probability > 0.8:
		return now.AddDate(0, 0, 1)
	case probability > 0.6:
		return now.AddDate(0, 0, 7)
	case probability > 0.4:
		return now.AddDate(0, 0, 30)
	default:
		days := 90 - 90*probability
		if days < 30 {
			days = 30
		}
		return now.AddDate(0, 0, int(days))
	}
}
