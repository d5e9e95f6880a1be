package models

import "time"

// AlertSeverity is the severity attached to a triggered alert. Only metrics
// crossing into warning or critical territory produce alerts; "good" clears.
type AlertSeverity string

const (
	AlertCritical AlertSeverity = "critical"
	AlertWarning  AlertSeverity = "warning"
)

// Alert is a live or historical threshold violation for one metric on one
// asset. Key is the composite metric:assetID identity; at most one alert per
// key is active at a time.
type Alert struct {
	Key            string            `json:"key"`
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Severity       AlertSeverity     `json:"severity"`
	AssetID        string            `json:"asset_id"`
	AssetName      string            `json:"asset_name"`
	Message        string            `json:"message"`
	Value          float64           `json:"value"`
	Threshold      float64           `json:"threshold"`
	Timestamp      time.Time         `json:"timestamp"`
	LastSent       time.Time         `json:"last_sent"`
	Acknowledged   bool              `json:"acknowledged"`
	AcknowledgedBy string            `json:"acknowledged_by,omitempty"`
	AcknowledgedAt time.Time         `json:"acknowledged_at,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// AlertKey builds the composite active-map key for a metric/asset pair.
func AlertKey(metric, assetID string) string {
	return metric + ":" + assetID
}

// AlertPattern is a recurring alert signature mined from history: one asset
// repeatedly tripping the same metric thresholds.
type AlertPattern struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"asset_id"`
	AssetName   string    `json:"asset_name"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Metrics     []string  `json:"metrics"`
	Occurrences int       `json:"occurrences"`
	Prevalence  float64   `json:"prevalence"`
	CriticalPct float64   `json:"critical_pct"`
	LastSeen    time.Time `json:"last_seen"`
}
