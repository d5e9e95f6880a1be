package analytics

import (
	"sort"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

var priorityRank = map[models.Priority]int{
	models.PriorityUrgent: 0,
	models.PriorityHigh:   1,
	models.PriorityMedium: 2,
	models.PriorityLow:    3,
}

var baseCost = map[models.Priority]float64{
	models.PriorityUrgent: 5000,
	models.PriorityHigh:   3000,
	models.PriorityMedium: 1500,
	models.PriorityLow:    500,
}

var impactMultiplier = map[models.CostImpact]float64{
	models.CostHigh:   1.5,
	models.CostMedium: 1.0,
	models.CostLow:    0.7,
}

// GenerateRecommendations converts per-asset insights into prioritised
// maintenance actions, adding a fleet-wide recommendation when more than 30%
// of the analyzed assets sit in the HIGH or CRITICAL tier. Output is sorted
// by priority rank, stable otherwise.
func GenerateRecommendations(insights []models.HealthInsight) []models.Recommendation {
	recommendations := make([]models.Recommendation, 0, len(insights))

	atRisk := 0
	for _, insight := range insights {
		switch insight.RiskLevel {
		case models.RiskCritical:
			atRisk++
			recommendations = append(recommendations, costed(models.Recommendation{
				AssetID:    insight.AssetID,
				AssetName:  insight.AssetName,
				Priority:   models.PriorityUrgent,
				Action:     "Schedule immediate maintenance inspection",
				Deadline:   "immediately",
				CostImpact: models.CostHigh,
			}))
		case models.RiskHigh:
			atRisk++
			recommendations = append(recommendations, costed(models.Recommendation{
				AssetID:    insight.AssetID,
				AssetName:  insight.AssetName,
				Priority:   models.PriorityHigh,
				Action:     "Plan preventive maintenance",
				Deadline:   "within 7 days",
				CostImpact: models.CostMedium,
			}))
		}
	}

	if len(insights) > 0 && float64(atRisk)/float64(len(insights)) > 0.3 {
		recommendations = append(recommendations, costed(models.Recommendation{
			Priority:   models.PriorityMedium,
			Action:     "Review fleet-wide maintenance schedule; over 30% of assets are at elevated risk",
			Deadline:   "within 30 days",
			CostImpact: models.CostMedium,
			FleetWide:  true,
		}))
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return priorityRank[recommendations[i].Priority] < priorityRank[recommendations[j].Priority]
	})
	return recommendations
}

func costed(r models.Recommendation) models.Recommendation {
	r.EstimatedCost = baseCost[r.Priority] * impactMultiplier[r.CostImpact]
	return r
}
