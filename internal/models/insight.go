package models

import "time"

// RiskLevel captures the ordinal risk classification derived from a health score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Severity captures impact levels for anomalies and degradation indicators.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// TrendDirection classifies a fitted slope.
type TrendDirection string

const (
	TrendImproving TrendDirection = "IMPROVING"
	TrendDeclining TrendDirection = "DECLINING"
	TrendStable    TrendDirection = "STABLE"
)

// Trend describes the movement of one performance dimension across the
// analysis window.
type Trend struct {
	Metric    string         `json:"metric"`
	Slope     float64        `json:"slope"`
	Direction TrendDirection `json:"direction"`
	Periods   []float64      `json:"periods"`
}

// TrendReport aggregates per-dimension trends with an overall majority vote.
type TrendReport struct {
	AssetID    string         `json:"asset_id"`
	Trends     []Trend        `json:"trends"`
	Overall    TrendDirection `json:"overall"`
	Confidence float64        `json:"confidence"`
}

// Anomaly flags an event or day that deviates sharply from the window norm.
type Anomaly struct {
	Type      string    `json:"type"`
	Severity  Severity  `json:"severity"`
	AssetID   string    `json:"asset_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Baseline  float64   `json:"baseline"`
	Message   string    `json:"message"`
}

// DegradationIndicator marks a sustained negative movement rather than a
// single outlier.
type DegradationIndicator struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	AssetID  string   `json:"asset_id"`
	Value    float64  `json:"value"`
	Message  string   `json:"message"`
}

// HealthInsight bundles every derived signal for one asset. It is recomputed
// from the current event window on each request and never persisted.
type HealthInsight struct {
	AssetID                  string                 `json:"asset_id"`
	AssetName                string                 `json:"asset_name"`
	HealthScore              float64                `json:"health_score"`
	RiskLevel                RiskLevel              `json:"risk_level"`
	FailureProbability       float64                `json:"failure_probability"`
	PredictedMaintenanceDate time.Time              `json:"predicted_maintenance_date"`
	Trends                   TrendReport            `json:"performance_trends"`
	Anomalies                []Anomaly              `json:"anomalies_detected"`
	Degradation              []DegradationIndicator `json:"degradation_indicators"`
	ComputedAt               time.Time              `json:"computed_at"`
}
