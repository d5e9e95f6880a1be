package models

import "time"

// AssetState enumerates the operating states reported by the event-ingestion
// subsystem.
type AssetState string

const (
	StateRunning AssetState = "RUNNING"
	StateStopped AssetState = "STOPPED"
)

// Asset describes a monitored industrial asset. Assets are owned and mutated
// by the external event-ingestion subsystem; this service only reads them.
type Asset struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	State           AssetState `json:"state"`
	RuntimeSeconds  float64    `json:"runtime_seconds"`
	DowntimeSeconds float64    `json:"downtime_seconds"`
	TotalStops      int        `json:"total_stops"`
}

// EventType enumerates archived event categories.
type EventType string

const (
	EventStateChange EventType = "STATE_CHANGE"
	EventStop        EventType = "STOP"
)

// Event is a discrete state-change record from the archive store.
//
// Duration is canonically a time.Duration inside this service; the store wire
// format carries milliseconds and internal/repo converts at the boundary.
type Event struct {
	Timestamp     time.Time     `json:"timestamp"`
	AssetID       string        `json:"asset_id"`
	Type          EventType     `json:"type"`
	PreviousState AssetState    `json:"previous_state,omitempty"`
	NewState      AssetState    `json:"new_state,omitempty"`
	Duration      time.Duration `json:"duration"`
	StopReason    string        `json:"stop_reason,omitempty"`
}

// IsStop reports whether the event represents a stop with measurable downtime.
func (e Event) IsStop() bool {
	if e.Type == EventStop {
		return true
	}
	return e.Type == EventStateChange && e.NewState == StateStopped
}
