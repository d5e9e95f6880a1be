package models

import "time"

// ForecastPoint is one horizon's availability projection.
type ForecastPoint struct {
	HorizonDays        int            `json:"horizon_days"`
	PredictedValue     float64        `json:"predicted_value"`
	ConfidenceInterval [2]float64     `json:"confidence_interval"`
	TrendDirection     TrendDirection `json:"trend_direction"`
	ExpectedStops      float64        `json:"expected_stops"`
}

// MaintenanceWindow is a suggested service slot inside a forecast horizon.
type MaintenanceWindow struct {
	Date           time.Time `json:"date"`
	Priority       Priority  `json:"priority"`
	ExpectedImpact string    `json:"expected_impact"`
}

// Forecast groups horizon projections and maintenance windows for one asset.
type Forecast struct {
	AssetID            string              `json:"asset_id"`
	Horizons           []ForecastPoint     `json:"horizons"`
	MaintenanceWindows []MaintenanceWindow `json:"maintenance_windows"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// Priority ranks recommendations and maintenance windows.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// CostImpact labels the expected cost weight of acting on a recommendation.
type CostImpact string

const (
	CostHigh   CostImpact = "HIGH"
	CostMedium CostImpact = "MEDIUM"
	CostLow    CostImpact = "LOW"
)

// Recommendation is a maintenance action derived from risk classification.
type Recommendation struct {
	AssetID       string     `json:"asset_id,omitempty"`
	AssetName     string     `json:"asset_name,omitempty"`
	Priority      Priority   `json:"priority"`
	Action        string     `json:"action"`
	Deadline      string     `json:"deadline"`
	CostImpact    CostImpact `json:"cost_impact"`
	EstimatedCost float64    `json:"estimated_cost"`
	FleetWide     bool       `json:"fleet_wide,omitempty"`
}

// PredictiveReport is the full fleet report returned to the HTTP layer.
type PredictiveReport struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	WindowDays      int              `json:"window_days"`
	Insights        []HealthInsight  `json:"insights"`
	Forecasts       []Forecast       `json:"forecasts"`
	Recommendations []Recommendation `json:"recommendations"`
}
