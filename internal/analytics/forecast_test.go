package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

func TestBuildForecastIdleAsset(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -28)

	forecast := BuildForecast("asset-1", nil, start, now, now)
	if len(forecast.Horizons) != 3 {
		t.Fatalf("expected 3 horizons, got %d", len(forecast.Horizons))
	}
	for _, point := range forecast.Horizons {
		if point.PredictedValue != 100 {
			t.Fatalf("expected 100%% availability forecast, got %f", point.PredictedValue)
		}
		if point.TrendDirection != models.TrendStable {
			t.Fatalf("expected stable direction, got %s", point.TrendDirection)
		}
		if point.ExpectedStops != 0 {
			t.Fatalf("expected zero stops, got %f", point.ExpectedStops)
		}
		if point.ConfidenceInterval[1] != 100 {
			t.Fatalf("expected upper bound clamped to 100, got %f", point.ConfidenceInterval[1])
		}
	}
}

func TestBuildForecastDecliningAsset(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -28)

	// Ten percent more downtime each period: availability 100, 90, 80, 70.
	downtime := time.Duration(60480) * time.Second
	events := make([]models.Event, 0, 6)
	for period := 1; period < 4; period++ {
		base := start.AddDate(0, 0, period*7).Add(time.Hour)
		for i := 0; i < period; i++ {
			events = append(events, stopEvent(base.Add(time.Duration(i)*time.Hour), downtime))
		}
	}

	forecast := BuildForecast("asset-1", events, start, now, now)
	week := forecast.Horizons[0]
	if week.HorizonDays != 7 {
		t.Fatalf("expected first horizon at 7 days, got %d", week.HorizonDays)
	}
	if math.Abs(week.PredictedValue-60) > 1e-6 {
		t.Fatalf("expected one period ahead to predict 60, got %f", week.PredictedValue)
	}
	if week.TrendDirection != models.TrendDeclining {
		t.Fatalf("expected declining direction, got %s", week.TrendDirection)
	}
	if math.Abs(week.ExpectedStops-1.5) > 1e-9 {
		t.Fatalf("expected 1.5 stops over the week, got %f", week.ExpectedStops)
	}
}

func TestBuildForecastMaintenanceWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	forecast := BuildForecast("asset-1", nil, now.AddDate(0, 0, -28), now, now)

	windows := forecast.MaintenanceWindows
	if len(windows) != 4 {
		t.Fatalf("expected 4 weekly windows, got %d", len(windows))
	}
	if windows[0].Priority != models.PriorityHigh {
		t.Fatalf("expected first window high priority, got %s", windows[0].Priority)
	}
	for i, window := range windows[1:] {
		if window.Priority != models.PriorityMedium {
			t.Fatalf("window %d: expected medium priority, got %s", i+1, window.Priority)
		}
	}
	if !windows[0].Date.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("expected first window a week out, got %s", windows[0].Date)
	}
}
