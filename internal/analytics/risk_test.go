package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

func TestRiskFromScoreBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.RiskLevel
	}{
		{59.999, models.RiskCritical},
		{60, models.RiskHigh},
		{74.999, models.RiskHigh},
		{75, models.RiskMedium},
		{84.999, models.RiskMedium},
		{85, models.RiskLow},
		{100, models.RiskLow},
	}
	for _, tc := range cases {
		if got := RiskFromScore(tc.score); got != tc.want {
			t.Fatalf("score %f: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestFailureProbabilityBase(t *testing.T) {
	if got := FailureProbability(100, nil, 30, DefaultFailureThresholds()); got != 0 {
		t.Fatalf("expected zero probability for perfect score, got %f", got)
	}
	if got := FailureProbability(40, nil, 30, DefaultFailureThresholds()); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("expected 0.6, got %f", got)
	}
}

func TestFailureProbabilityBoosts(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// 11 short stops in a 1-day window exceeds the frequency trigger.
	frequent := make([]models.Event, 0, 11)
	for i := 0; i < 11; i++ {
		frequent = append(frequent, stopEvent(now.Add(time.Duration(i)*time.Hour), time.Minute))
	}
	got := FailureProbability(80, frequent, 1, DefaultFailureThresholds())
	if math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("expected frequency boost to 0.4, got %f", got)
	}

	// One long stop exceeds the duration trigger but not the frequency one.
	long := []models.Event{stopEvent(now, 2000*time.Second)}
	got = FailureProbability(80, long, 30, DefaultFailureThresholds())
	if math.Abs(got-0.35) > 1e-9 {
		t.Fatalf("expected duration boost to 0.35, got %f", got)
	}
}

func TestFailureProbabilityClamped(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	stops := make([]models.Event, 0, 20)
	for i := 0; i < 20; i++ {
		stops = append(stops, stopEvent(now.Add(time.Duration(i)*time.Hour), time.Hour))
	}
	if got := FailureProbability(0, stops, 1, DefaultFailureThresholds()); got != 1 {
		t.Fatalf("expected probability clamped to 1, got %f", got)
	}
}

func TestPredictMaintenanceDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		probability float64
		wantDays    int
	}{
		{0.9, 1},
		{0.7, 7},
		{0.5, 30},
		{0.4, 54},
		{0, 90},
	}
	for _, tc := range cases {
		got := PredictMaintenanceDate(tc.probability, now)
		if want := now.AddDate(0, 0, tc.wantDays); !got.Equal(want) {
			t.Fatalf("probability %.2f: expected %s, got %s", tc.probability, want, got)
		}
	}
}
