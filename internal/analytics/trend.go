package analytics

import (
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// trendPeriods is the number of equal slices the analysis window is cut into.
const trendPeriods = 4

// slopeThreshold is the minimum absolute slope considered a real movement.
const slopeThreshold = 0.1

// AnalyzeTrends splits the window into equal chronological periods, fits a
// least-squares slope per dimension and classifies each as improving,
// declining or stable.
func AnalyzeTrends(assetID string, events []models.Event, start, end time.Time) models.TrendReport {
	report := models.TrendReport{
		AssetID:    assetID,
		Overall:    models.TrendStable,
		Confidence: clamp(float64(len(events))/100, 0, 1),
	}
	if !end.After(start) {
		return report
	}

	periods := SplitPeriods(events, start, end, trendPeriods)
	periodSpan := end.Sub(start) / trendPeriods

	availability := make([]float64, trendPeriods)
	stopCounts := make([]float64, trendPeriods)
	stopDurations := make([]float64, trendPeriods)
	for i, periodEvents := range periods {
		stops := StopEvents(periodEvents)
		availability[i] = windowAvailability(stops, periodSpan)
		stopCounts[i] = float64(len(stops))
		stopDurations[i] = AvgStopDuration(stops).Seconds()
	}

	report.Trends = []models.Trend{
		classify("availability", availability, true),
		classify("stop_count", stopCounts, false),
		classify("stop_duration", stopDurations, false),
	}
	report.Overall = majorityVote(report.Trends)
	return report
}

// classify turns a period series into a direction. For lower-is-better series
// a rising slope means the asset is getting worse.
func classify(metric string, series []float64, higherIsBetter bool) models.Trend {
	slope := LeastSquaresSlope(series)
	direction := models.TrendStable
	switch {
	case slope > slopeThreshold:
		direction = models.TrendImproving
		if !higherIsBetter {
			direction = models.TrendDeclining
		}
	case slope < -slopeThreshold:
		direction = models.TrendDeclining
		if !higherIsBetter {
			direction = models.TrendImproving
		}
	}
	return models.Trend{
		Metric:    metric,
		Slope:     slope,
		Direction: direction,
		Periods:   series,
	}
}

func majorityVote(trends []models.Trend) models.TrendDirection {
	votes := make(map[models.TrendDirection]int, 3)
	for _, t := range trends {
		votes[t.Direction]++
	}
	best := models.TrendStable
	bestCount := 0
	tied := false
	for _, dir := range []models.TrendDirection{models.TrendImproving, models.TrendDeclining, models.TrendStable} {
		count := votes[dir]
		if count > bestCount {
			best = dir
			bestCount = count
			tied = false
		} else if count == bestCount && count > 0 && dir != best {
			tied = true
		}
	}
	if tied {
		return models.TrendStable
	}
	return best
}
