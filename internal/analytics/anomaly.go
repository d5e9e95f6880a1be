package analytics

import (
	"fmt"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// Anomaly and degradation indicator types.
const (
	AnomalyUnusualStopDuration = "UNUSUAL_STOP_DURATION"
	AnomalyHighStopFrequency   = "HIGH_STOP_FREQUENCY"

	DegradationIncreasingStops       = "INCREASING_STOP_FREQUENCY"
	DegradationDecliningAvailability = "DECLINING_AVAILABILITY"
)

// DegradationThresholds hold the health bands that flag declining
// availability. They track the warning/critical availability thresholds of
// the alerting configuration.
type DegradationThresholds struct {
	WarningHealth  float64
	CriticalHealth float64
}

// DefaultDegradationThresholds returns the standard health bands.
func DefaultDegradationThresholds() DegradationThresholds {
	return DegradationThresholds{WarningHealth: 85, CriticalHealth: 75}
}

// DetectAnomalies flags stop events and days that deviate sharply from the
// window norm.
func DetectAnomalies(assetID string, events []models.Event) []models.Anomaly {
	stops := StopEvents(events)
	if len(stops) == 0 {
		return nil
	}

	anomalies := make([]models.Anomaly, 0)

	avg := AvgStopDuration(stops)
	if avg > 0 {
		for _, e := range stops {
			if e.Duration > 3*avg {
				anomalies = append(anomalies, models.Anomaly{
					Type:      AnomalyUnusualStopDuration,
					Severity:  models.SeverityHigh,
					AssetID:   assetID,
					Timestamp: e.Timestamp,
					Value:     e.Duration.Seconds(),
					Baseline:  avg.Seconds(),
					Message:   fmt.Sprintf("stop lasted %.0fs, over 3x the window average of %.0fs", e.Duration.Seconds(), avg.Seconds()),
				})
			}
		}
	}

	daily := DailyStopCounts(stops)
	if len(daily) > 0 {
		total := 0
		for _, count := range daily {
			total += count
		}
		mean := float64(total) / float64(len(daily))
		for day, count := range daily {
			if float64(count) > 2*mean {
				anomalies = append(anomalies, models.Anomaly{
					Type:      AnomalyHighStopFrequency,
					Severity:  models.SeverityMedium,
					AssetID:   assetID,
					Timestamp: day,
					Value:     float64(count),
					Baseline:  mean,
					Message:   fmt.Sprintf("%d stops on %s, over 2x the daily mean of %.1f", count, day.Format("2006-01-02"), mean),
				})
			}
		}
	}

	return anomalies
}

// DetectDegradation looks for sustained negative movement rather than single
// outliers: a rising weekly stop-count slope or a health score below the
// availability warning band.
func DetectDegradation(assetID string, healthScore float64, events []models.Event, start, end time.Time, t DegradationThresholds) []models.DegradationIndicator {
	indicators := make([]models.DegradationIndicator, 0)

	stops := StopEvents(events)
	weekly := WeeklyStopCounts(stops, start, end)
	if slope := LeastSquaresSlope(weekly); slope > 0.5 {
		indicators = append(indicators, models.DegradationIndicator{
			Type:     DegradationIncreasingStops,
			Severity: models.SeverityMedium,
			AssetID:  assetID,
			Value:    slope,
			Message:  fmt.Sprintf("weekly stop count rising at %.2f stops/week", slope),
		})
	}

	if healthScore < t.WarningHealth {
		severity := models.SeverityMedium
		if healthScore < t.CriticalHealth {
			severity = models.SeverityHigh
		}
		indicators = append(indicators, models.DegradationIndicator{
			Type:     DegradationDecliningAvailability,
			Severity: severity,
			AssetID:  assetID,
			Value:    healthScore,
			Message:  fmt.Sprintf("health score %.1f below the %.0f warning band", healthScore, t.WarningHealth),
		})
	}

	return indicators
}
