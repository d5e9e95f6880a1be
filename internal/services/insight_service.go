package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/alerting"
	"github.com/fleetworks/asset-sentinel/internal/analytics"
	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/repo"
	"github.com/fleetworks/asset-sentinel/internal/utils"
)

// ErrAssetNotFound signals that the store does not know the requested asset.
var ErrAssetNotFound = errors.New("asset not found")

// eventFetchLimit caps one analysis window's event pull per asset.
const eventFetchLimit = 5000

// AssetStore extends the sweep store surface with single-asset lookup.
type AssetStore interface {
	alerting.AssetEventStore
	GetAssetByID(ctx context.Context, id string) (*models.Asset, error)
}

// Timing sample kinds recorded by the service.
const (
	timingAssetInsight = "asset_insight"
	timingFleetReport  = "fleet_report"
)

// InsightService turns store data into analytics reports for the HTTP layer.
// All report computation is pure; the service only handles fetching, default
// windows and latency accounting.
type InsightService struct {
	logger     *slog.Logger
	store      AssetStore
	windowDays int
	clock      utils.Clock
	timings    *utils.ReportTimings
}

// NewInsightService constructs the reporting facade.
func NewInsightService(logger *slog.Logger, store AssetStore, windowDays int, clock utils.Clock) *InsightService {
	if logger == nil {
		logger = slog.Default()
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &InsightService{
		logger:     logger,
		store:      store,
		windowDays: windowDays,
		clock:      clock,
		timings:    utils.NewReportTimings(1024),
	}
}

func (s *InsightService) options(windowDays int) analytics.Options {
	if windowDays <= 0 {
		windowDays = s.windowDays
	}
	return analytics.Options{WindowDays: windowDays, Now: s.clock.Now()}
}

func (s *InsightService) fetchEvents(ctx context.Context, assetID string, windowDays int) ([]models.Event, error) {
	return s.store.GetArchivedEvents(ctx, repo.EventQuery{
		AssetID:       assetID,
		TimeframeDays: windowDays,
		Limit:         eventFetchLimit,
	})
}

// AssetInsight computes the full health insight for one asset.
func (s *InsightService) AssetInsight(ctx context.Context, assetID string, windowDays int) (models.HealthInsight, error) {
	opts := s.options(windowDays)

	asset, err := s.store.GetAssetByID(ctx, assetID)
	if err != nil {
		return models.HealthInsight{}, fmt.Errorf("fetch asset: %w", err)
	}
	if asset == nil {
		return models.HealthInsight{}, ErrAssetNotFound
	}
	events, err := s.fetchEvents(ctx, assetID, opts.WindowDays)
	if err != nil {
		return models.HealthInsight{}, fmt.Errorf("fetch events: %w", err)
	}

	start := time.Now()
	insight := analytics.AnalyzeAsset(*asset, events, opts)
	s.observe(timingAssetInsight, start)
	return insight, nil
}

// PredictiveReport assembles the fleet-wide report.
func (s *InsightService) PredictiveReport(ctx context.Context, windowDays int) (models.PredictiveReport, error) {
	opts := s.options(windowDays)

	assets, eventsByAsset, err := s.fetchFleet(ctx, opts.WindowDays)
	if err != nil {
		return models.PredictiveReport{}, err
	}

	start := time.Now()
	report := analytics.BuildPredictiveReport(assets, eventsByAsset, opts)
	s.observe(timingFleetReport, start)

	if count := s.timings.Count(timingFleetReport); count >= 20 && count%20 == 0 {
		s.logger.Info("report latency",
			slog.Duration("p95", s.timings.Percentile(timingFleetReport, 95)),
			slog.Int("samples", count))
	}
	return report, nil
}

// TrendAnalysis computes trend classification for one asset.
func (s *InsightService) TrendAnalysis(ctx context.Context, assetID string, windowDays int) (models.TrendReport, error) {
	opts := s.options(windowDays)

	asset, err := s.store.GetAssetByID(ctx, assetID)
	if err != nil {
		return models.TrendReport{}, fmt.Errorf("fetch asset: %w", err)
	}
	if asset == nil {
		return models.TrendReport{}, ErrAssetNotFound
	}
	events, err := s.fetchEvents(ctx, assetID, opts.WindowDays)
	if err != nil {
		return models.TrendReport{}, fmt.Errorf("fetch events: %w", err)
	}

	windowStart := opts.Now.AddDate(0, 0, -opts.WindowDays)
	return analytics.AnalyzeTrends(assetID, events, windowStart, opts.Now), nil
}

// Forecasts projects availability and stop counts for every asset.
func (s *InsightService) Forecasts(ctx context.Context, windowDays int) ([]models.Forecast, error) {
	opts := s.options(windowDays)

	assets, eventsByAsset, err := s.fetchFleet(ctx, opts.WindowDays)
	if err != nil {
		return nil, err
	}

	windowStart := opts.Now.AddDate(0, 0, -opts.WindowDays)
	forecasts := make([]models.Forecast, 0, len(assets))
	for _, asset := range assets {
		forecasts = append(forecasts, analytics.BuildForecast(asset.ID, eventsByAsset[asset.ID], windowStart, opts.Now, opts.Now))
	}
	return forecasts, nil
}

// Recommendations derives maintenance actions from the current fleet state.
func (s *InsightService) Recommendations(ctx context.Context, windowDays int) ([]models.Recommendation, error) {
	opts := s.options(windowDays)

	assets, eventsByAsset, err := s.fetchFleet(ctx, opts.WindowDays)
	if err != nil {
		return nil, err
	}

	insights := make([]models.HealthInsight, 0, len(assets))
	for _, asset := range assets {
		insights = append(insights, analytics.AnalyzeAsset(asset, eventsByAsset[asset.ID], opts))
	}
	return analytics.GenerateRecommendations(insights), nil
}

// AnomalyReport lists anomalies and degradation indicators for one asset.
func (s *InsightService) AnomalyReport(ctx context.Context, assetID string, windowDays int) ([]models.Anomaly, []models.DegradationIndicator, error) {
	insight, err := s.AssetInsight(ctx, assetID, windowDays)
	if err != nil {
		return nil, nil, err
	}
	return insight.Anomalies, insight.Degradation, nil
}

// ReportLatencyP95 exposes the p95 fleet-report computation latency.
func (s *InsightService) ReportLatencyP95() time.Duration {
	return s.timings.Percentile(timingFleetReport, 95)
}

func (s *InsightService) fetchFleet(ctx context.Context, windowDays int) ([]models.Asset, map[string][]models.Event, error) {
	assets, err := s.store.GetAllAssets(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch assets: %w", err)
	}

	eventsByAsset := make(map[string][]models.Event, len(assets))
	for _, asset := range assets {
		events, err := s.fetchEvents(ctx, asset.ID, windowDays)
		if err != nil {
			// Analytics tolerate an empty window; a single asset's fetch
			// failure should not sink a fleet report.
			s.logger.Warn("could not fetch events for asset",
				slog.String("asset", asset.ID), slog.Any("error", err))
			continue
		}
		eventsByAsset[asset.ID] = events
	}
	return assets, eventsByAsset, nil
}

func (s *InsightService) observe(kind string, start time.Time) {
	s.timings.Observe(kind, time.Since(start))
}
