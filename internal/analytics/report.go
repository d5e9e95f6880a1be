package analytics

import (
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// Options bound an analysis run. Zero values fall back to defaults.
type Options struct {
	WindowDays  int
	Now         time.Time
	Failure     FailureThresholds
	Degradation DegradationThresholds
}

func (o Options) normalised() Options {
	if o.WindowDays <= 0 {
		o.WindowDays = 30
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	if o.Failure == (FailureThresholds{}) {
		o.Failure = DefaultFailureThresholds()
	}
	if o.Degradation == (DegradationThresholds{}) {
		o.Degradation = DefaultDegradationThresholds()
	}
	return o
}

// AnalyzeAsset computes the full health insight for one asset from its event
// window. Pure: identical inputs always produce identical output.
func AnalyzeAsset(asset models.Asset, events []models.Event, opts Options) models.HealthInsight {
	opts = opts.normalised()
	now := opts.Now
	start := now.AddDate(0, 0, -opts.WindowDays)

	score := ComputeHealthScore(asset, events, now)
	stops := StopEvents(events)
	probability := FailureProbability(score, stops, opts.WindowDays, opts.Failure)

	return models.HealthInsight{
		AssetID:                  asset.ID,
		AssetName:                asset.Name,
		HealthScore:              score,
		RiskLevel:                RiskFromScore(score),
		FailureProbability:       probability,
		PredictedMaintenanceDate: PredictMaintenanceDate(probability, now),
		Trends:                   AnalyzeTrends(asset.ID, events, start, now),
		Anomalies:                DetectAnomalies(asset.ID, events),
		Degradation:              DetectDegradation(asset.ID, score, events, start, now, opts.Degradation),
		ComputedAt:               now,
	}
}

// BuildPredictiveReport assembles the fleet report: insights, forecasts and
// recommendations for every asset with its event window.
func BuildPredictiveReport(assets []models.Asset, eventsByAsset map[string][]models.Event, opts Options) models.PredictiveReport {
	opts = opts.normalised()
	start := opts.Now.AddDate(0, 0, -opts.WindowDays)

	report := models.PredictiveReport{
		GeneratedAt: opts.Now,
		WindowDays:  opts.WindowDays,
	}
	for _, asset := range assets {
		events := eventsByAsset[asset.ID]
		report.Insights = append(report.Insights, AnalyzeAsset(asset, events, opts))
		report.Forecasts = append(report.Forecasts, BuildForecast(asset.ID, events, start, opts.Now, opts.Now))
	}
	report.Recommendations = GenerateRecommendations(report.Insights)
	return report
}
