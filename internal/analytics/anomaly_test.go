package analytics

import (
	"testing"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

func TestDetectAnomaliesUnusualStopDuration(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []models.Event{
		stopEvent(now, time.Minute),
		stopEvent(now.Add(time.Hour), time.Minute),
		stopEvent(now.Add(2*time.Hour), time.Minute),
		stopEvent(now.Add(3*time.Hour), 10*time.Minute),
	}

	anomalies := DetectAnomalies("asset-1", events)
	if len(anomalies) != 1 {
		t.Fatalf("expected one anomaly, got %d", len(anomalies))
	}
	a := anomalies[0]
	if a.Type != AnomalyUnusualStopDuration {
		t.Fatalf("unexpected anomaly type %s", a.Type)
	}
	if a.Severity != models.SeverityHigh {
		t.Fatalf("expected high severity, got %s", a.Severity)
	}
	if a.Value != 600 {
		t.Fatalf("expected outlier value 600s, got %f", a.Value)
	}
}

func TestDetectAnomaliesHighStopFrequency(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	events := []models.Event{
		stopEvent(base, time.Minute),
		stopEvent(base.AddDate(0, 0, 1), time.Minute),
	}
	// Six stops on the third day against a daily mean well under three.
	for i := 0; i < 6; i++ {
		events = append(events, stopEvent(base.AddDate(0, 0, 2).Add(time.Duration(i)*time.Hour), time.Minute))
	}

	anomalies := DetectAnomalies("asset-1", events)
	if len(anomalies) != 1 {
		t.Fatalf("expected one anomaly, got %d", len(anomalies))
	}
	a := anomalies[0]
	if a.Type != AnomalyHighStopFrequency {
		t.Fatalf("unexpected anomaly type %s", a.Type)
	}
	if a.Severity != models.SeverityMedium {
		t.Fatalf("expected medium severity, got %s", a.Severity)
	}
	if a.Value != 6 {
		t.Fatalf("expected 6 stops, got %f", a.Value)
	}
}

func TestDetectAnomaliesEmptyWithoutStops(t *testing.T) {
	if anomalies := DetectAnomalies("asset-1", nil); anomalies != nil {
		t.Fatalf("expected no anomalies, got %d", len(anomalies))
	}
}

func TestDetectDegradationIncreasingStops(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -28)

	events := make([]models.Event, 0, 18)
	counts := []int{0, 3, 6, 9}
	for week, count := range counts {
		base := start.AddDate(0, 0, week*7).Add(time.Hour)
		for i := 0; i < count; i++ {
			events = append(events, stopEvent(base.Add(time.Duration(i)*time.Hour), time.Minute))
		}
	}

	indicators := DetectDegradation("asset-1", 95, events, start, end, DefaultDegradationThresholds())
	if len(indicators) != 1 {
		t.Fatalf("expected one indicator, got %d", len(indicators))
	}
	if indicators[0].Type != DegradationIncreasingStops {
		t.Fatalf("unexpected indicator type %s", indicators[0].Type)
	}
	if indicators[0].Severity != models.SeverityMedium {
		t.Fatalf("expected medium severity, got %s", indicators[0].Severity)
	}
}

func TestDetectDegradationDecliningAvailability(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -28)

	indicators := DetectDegradation("asset-1", 80, nil, start, end, DefaultDegradationThresholds())
	if len(indicators) != 1 || indicators[0].Type != DegradationDecliningAvailability {
		t.Fatalf("expected declining availability indicator, got %+v", indicators)
	}
	if indicators[0].Severity != models.SeverityMedium {
		t.Fatalf("expected medium severity at 80, got %s", indicators[0].Severity)
	}

	indicators = DetectDegradation("asset-1", 70, nil, start, end, DefaultDegradationThresholds())
	if len(indicators) != 1 || indicators[0].Severity != models.SeverityHigh {
		t.Fatalf("expected high severity at 70, got %+v", indicators)
	}
}

func TestDetectDegradationHealthy(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	indicators := DetectDegradation("asset-1", 95, nil, end.AddDate(0, 0, -28), end, DefaultDegradationThresholds())
	if len(indicators) != 0 {
		t.Fatalf("expected no indicators for a healthy asset, got %d", len(indicators))
	}
}
