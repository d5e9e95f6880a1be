package analytics

import (
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// forecastHorizons are the projection spans in days.
var forecastHorizons = []int{7, 30, 90}

// maintenanceSpanDays bounds the suggested maintenance windows: one per
// seven-day block across the next thirty days.
const maintenanceSpanDays = 30

// BuildForecast extrapolates availability and stop counts per horizon from
// the window's period series and suggests upcoming maintenance windows.
func BuildForecast(assetID string, events []models.Event, start, end, now time.Time) models.Forecast {
	forecast := models.Forecast{AssetID: assetID, GeneratedAt: now}
	if !end.After(start) {
		return forecast
	}

	periods := SplitPeriods(events, start, end, trendPeriods)
	periodSpan := end.Sub(start) / trendPeriods
	periodDays := periodSpan.Hours() / 24
	if periodDays <= 0 {
		periodDays = 1
	}

	availability := make([]float64, trendPeriods)
	for i, periodEvents := range periods {
		availability[i] = windowAvailability(StopEvents(periodEvents), periodSpan)
	}
	slope := LeastSquaresSlope(availability)
	current := availability[trendPeriods-1]

	stops := StopEvents(events)
	windowDays := end.Sub(start).Hours() / 24
	if windowDays < 1 {
		windowDays = 1
	}
	stopsPerDay := float64(len(stops)) / windowDays

	for _, horizon := range forecastHorizons {
		periodsAhead := float64(horizon) / periodDays
		predicted := clamp(current+slope*periodsAhead, 0, 100)

		// Wider bands for further horizons; the heuristic has no variance
		// estimate to draw on.
		margin := 5 + float64(horizon)/90*10
		low := clamp(predicted-margin, 0, 100)
		high := clamp(predicted+margin, 0, 100)

		direction := models.TrendStable
		if slope > slopeThreshold {
			direction = models.TrendImproving
		} else if slope < -slopeThreshold {
			direction = models.TrendDeclining
		}

		forecast.Horizons = append(forecast.Horizons, models.ForecastPoint{
			HorizonDays:        horizon,
			PredictedValue:     predicted,
			ConfidenceInterval: [2]float64{low, high},
			TrendDirection:     direction,
			ExpectedStops:      stopsPerDay * float64(horizon),
		})
	}

	forecast.MaintenanceWindows = suggestMaintenanceWindows(now)
	return forecast
}

func suggestMaintenanceWindows(now time.Time) []models.MaintenanceWindow {
	windows := make([]models.MaintenanceWindow, 0, maintenanceSpanDays/7)
	for day := 7; day <= maintenanceSpanDays; day += 7 {
		priority := models.PriorityMedium
		impact := "planned downtime, minimal production impact"
		if day == 7 {
			priority = models.PriorityHigh
			impact = "short notice, coordinate with operators"
		}
		windows = append(windows, models.MaintenanceWindow{
			Date:           now.AddDate(0, 0, day),
			Priority:       priority,
			ExpectedImpact: impact,
		})
	}
	return windows
}
