package analytics

import (
	"testing"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

func TestAnalyzeTrendsImproving(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -28)

	// Stop count falls period over period: 6, 4, 2, 0.
	events := make([]models.Event, 0, 12)
	counts := []int{6, 4, 2, 0}
	for period, count := range counts {
		base := start.AddDate(0, 0, period*7).Add(time.Hour)
		for i := 0; i < count; i++ {
			events = append(events, stopEvent(base.Add(time.Duration(i)*time.Hour), time.Hour))
		}
	}

	report := AnalyzeTrends("asset-1", events, start, end)
	if report.Overall != models.TrendImproving {
		t.Fatalf("expected improving overall trend, got %s", report.Overall)
	}
	for _, trend := range report.Trends {
		if trend.Metric == "stop_count" && trend.Direction != models.TrendImproving {
			t.Fatalf("expected falling stop count to read improving, got %s", trend.Direction)
		}
	}
}

func TestAnalyzeTrendsStableWithoutEvents(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	report := AnalyzeTrends("asset-1", nil, end.AddDate(0, 0, -28), end)
	if report.Overall != models.TrendStable {
		t.Fatalf("expected stable trend for idle asset, got %s", report.Overall)
	}
	if report.Confidence != 0 {
		t.Fatalf("expected zero confidence without events, got %f", report.Confidence)
	}
}

func TestAnalyzeTrendsTieReadsStable(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -28)

	// Rising stop counts with falling per-stop durations keep total downtime
	// constant: stop_count declines, stop_duration improves, availability
	// stays flat. One vote each resolves to stable.
	counts := []int{1, 2, 3, 4}
	durations := []time.Duration{4 * time.Hour, 2 * time.Hour, 80 * time.Minute, time.Hour}
	events := make([]models.Event, 0, 10)
	for period, count := range counts {
		base := start.AddDate(0, 0, period*7).Add(time.Hour)
		for i := 0; i < count; i++ {
			events = append(events, stopEvent(base.Add(time.Duration(i)*time.Hour), durations[period]))
		}
	}

	report := AnalyzeTrends("asset-1", events, start, end)
	if report.Overall != models.TrendStable {
		t.Fatalf("expected tie to resolve stable, got %s", report.Overall)
	}
}

func TestAnalyzeTrendsConfidenceScalesWithEvents(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -28)

	events := make([]models.Event, 0, 50)
	for i := 0; i < 50; i++ {
		events = append(events, stopEvent(start.Add(time.Duration(i)*time.Hour), time.Minute))
	}
	report := AnalyzeTrends("asset-1", events, start, end)
	if report.Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5 at 50 events, got %f", report.Confidence)
	}
}
