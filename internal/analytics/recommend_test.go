package analytics

import (
	"testing"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

func insightAt(id string, risk models.RiskLevel) models.HealthInsight {
	return models.HealthInsight{AssetID: id, AssetName: "Asset " + id, RiskLevel: risk}
}

func TestGenerateRecommendationsPriorityOrder(t *testing.T) {
	insights := []models.HealthInsight{
		insightAt("a", models.RiskHigh),
		insightAt("b", models.RiskCritical),
		insightAt("c", models.RiskLow),
		insightAt("d", models.RiskLow),
		insightAt("e", models.RiskLow),
		insightAt("f", models.RiskLow),
		insightAt("g", models.RiskLow),
	}

	recs := GenerateRecommendations(insights)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Priority != models.PriorityUrgent || recs[0].AssetID != "b" {
		t.Fatalf("expected urgent recommendation first, got %+v", recs[0])
	}
	if recs[1].Priority != models.PriorityHigh || recs[1].AssetID != "a" {
		t.Fatalf("expected high recommendation second, got %+v", recs[1])
	}
}

func TestGenerateRecommendationsCosts(t *testing.T) {
	recs := GenerateRecommendations([]models.HealthInsight{
		insightAt("a", models.RiskCritical),
		insightAt("b", models.RiskHigh),
		insightAt("c", models.RiskLow),
		insightAt("d", models.RiskLow),
		insightAt("e", models.RiskLow),
		insightAt("f", models.RiskLow),
		insightAt("g", models.RiskLow),
	})
	if recs[0].EstimatedCost != 7500 {
		t.Fatalf("expected urgent cost 7500, got %f", recs[0].EstimatedCost)
	}
	if recs[1].EstimatedCost != 3000 {
		t.Fatalf("expected high cost 3000, got %f", recs[1].EstimatedCost)
	}
}

func TestGenerateRecommendationsFleetWide(t *testing.T) {
	recs := GenerateRecommendations([]models.HealthInsight{
		insightAt("a", models.RiskCritical),
		insightAt("b", models.RiskHigh),
		insightAt("c", models.RiskLow),
	})

	var fleet *models.Recommendation
	for i := range recs {
		if recs[i].FleetWide {
			fleet = &recs[i]
		}
	}
	if fleet == nil {
		t.Fatalf("expected a fleet-wide recommendation at 66%% risk")
	}
	if fleet.Priority != models.PriorityMedium {
		t.Fatalf("expected medium priority, got %s", fleet.Priority)
	}
	if fleet.EstimatedCost != 1500 {
		t.Fatalf("expected cost 1500, got %f", fleet.EstimatedCost)
	}
}

func TestGenerateRecommendationsNoFleetWideBelowCutoff(t *testing.T) {
	recs := GenerateRecommendations([]models.HealthInsight{
		insightAt("a", models.RiskHigh),
		insightAt("b", models.RiskLow),
		insightAt("c", models.RiskLow),
		insightAt("d", models.RiskLow),
	})
	for _, rec := range recs {
		if rec.FleetWide {
			t.Fatalf("expected no fleet-wide recommendation at 25%% risk")
		}
	}
}
