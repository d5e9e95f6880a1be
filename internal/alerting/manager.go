package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetworks/asset-sentinel/internal/metrics"
	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/settings"
	"github.com/fleetworks/asset-sentinel/internal/utils"
)

// Publisher pushes alert lifecycle messages to realtime subscribers.
type Publisher interface {
	PublishAlert(alert models.Alert)
	PublishAlertCleared(key, message string)
}

// Dispatcher delivers alert notifications through the configured channels.
// Implementations must isolate per-channel failures.
type Dispatcher interface {
	DispatchAlert(ctx context.Context, alert models.Alert)
}

// SettingsStore persists notification settings including threshold overrides.
type SettingsStore interface {
	GetNotificationSettings(ctx context.Context) (settings.NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, s settings.NotificationSettings) error
}

// ManagerConfig tunes alert lifecycle behaviour.
type ManagerConfig struct {
	Cooldown         time.Duration
	HistoryRetention time.Duration
}

// DefaultManagerConfig returns the standard cooldown and retention.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Cooldown:         15 * time.Minute,
		HistoryRetention: 24 * time.Hour,
	}
}

// Manager owns the alert state machine: the active-alert map keyed by
// metric:assetID, the append-only history log, cooldown suppression and
// notification fan-out. All state mutations run under one mutex; dispatch and
// broadcast happen outside it so slow I/O never blocks evaluation.
type Manager struct {
	logger     *slog.Logger
	cfg        ManagerConfig
	clock      utils.Clock
	publisher  Publisher
	dispatcher Dispatcher
	store      SettingsStore

	mu         sync.Mutex
	active     map[string]*models.Alert
	history    []models.Alert
	thresholds ThresholdConfig
}

// NewManager constructs a Manager, loading threshold overrides from the
// settings store. A store failure falls back to built-in defaults with a
// warning; startup never fails because of it.
func NewManager(logger *slog.Logger, cfg ManagerConfig, clock utils.Clock, publisher Publisher, dispatcher Dispatcher, store SettingsStore) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Minute
	}
	if cfg.HistoryRetention <= 0 {
		cfg.HistoryRetention = 24 * time.Hour
	}

	m := &Manager{
		logger:     logger,
		cfg:        cfg,
		clock:      clock,
		publisher:  publisher,
		dispatcher: dispatcher,
		store:      store,
		active:     make(map[string]*models.Alert),
		thresholds: DefaultThresholds(),
	}
	m.loadThresholds()
	return m
}

func (m *Manager) loadThresholds() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := m.store.GetNotificationSettings(ctx)
	if err != nil {
		m.logger.Warn("settings store unavailable, using default thresholds", slog.Any("error", err))
		return
	}
	if len(s.AlertThresholds) == 0 {
		return
	}
	cfg, result := ValidateUpdate(s.AlertThresholds)
	if !result.Valid {
		m.logger.Warn("stored thresholds invalid, using defaults", slog.Any("errors", result.Errors))
		return
	}
	merged := DefaultThresholds()
	for metric, levels := range cfg {
		merged[metric] = levels
	}
	m.thresholds = merged
}

// Thresholds returns a copy of the current threshold configuration.
func (m *Manager) Thresholds() ThresholdConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(ThresholdConfig, len(m.thresholds))
	for metric, levels := range m.thresholds {
		out[metric] = levels
	}
	return out
}

// UpdateThresholds validates and applies a threshold update atomically. Any
// validation error rejects the whole update and leaves the prior config
// untouched.
func (m *Manager) UpdateThresholds(ctx context.Context, raw map[string]map[string]float64) ValidationResult {
	cfg, result := ValidateUpdate(raw)
	if !result.Valid {
		return result
	}

	m.mu.Lock()
	merged := make(ThresholdConfig, len(m.thresholds))
	for metric, levels := range m.thresholds {
		merged[metric] = levels
	}
	for metric, levels := range cfg {
		merged[metric] = levels
	}
	m.thresholds = merged
	m.mu.Unlock()

	if m.store != nil {
		s, err := m.store.GetNotificationSettings(ctx)
		if err != nil {
			m.logger.Warn("could not read settings before persisting thresholds", slog.Any("error", err))
			s = settings.Defaults()
		}
		if s.AlertThresholds == nil {
			s.AlertThresholds = make(map[string]map[string]float64)
		}
		for metric, levels := range raw {
			s.AlertThresholds[metric] = levels
		}
		if err := m.store.UpdateNotificationSettings(ctx, s); err != nil {
			m.logger.Warn("could not persist thresholds", slog.Any("error", err))
		}
	}
	return result
}

// EvaluateMetric runs one live metric value through the threshold evaluator.
// Warning/critical outcomes trigger an alert; good clears any active alert
// for the key.
func (m *Manager) EvaluateMetric(ctx context.Context, metric string, asset models.Asset, value float64) {
	m.mu.Lock()
	severity := Evaluate(metric, value, m.thresholds)
	levels := m.thresholds[metric]
	m.mu.Unlock()

	if severity == SeverityGood {
		m.ClearAlert(models.AlertKey(metric, asset.ID))
		return
	}

	threshold := levels.Warning
	alertSeverity := models.AlertWarning
	if severity == SeverityCritical {
		threshold = levels.Critical
		alertSeverity = models.AlertCritical
	}

	m.TriggerAlert(ctx, models.Alert{
		Key:       models.AlertKey(metric, asset.ID),
		Type:      metric,
		Severity:  alertSeverity,
		AssetID:   asset.ID,
		AssetName: asset.Name,
		Message:   fmt.Sprintf("%s for %s is %.2f (threshold %.2f)", metric, asset.Name, value, threshold),
		Value:     value,
		Threshold: threshold,
	})
}

// TriggerAlert creates or refreshes an alert unless a cooldown-blocked
// duplicate exists. Returns true when the alert was actually raised.
//
// Within the cooldown window a re-trigger for the same key is a full no-op:
// no map mutation, no history append, no broadcast, no dispatch.
func (m *Manager) TriggerAlert(ctx context.Context, alert models.Alert) bool {
	now := m.clock.Now()

	m.mu.Lock()
	if existing, ok := m.active[alert.Key]; ok {
		if now.Sub(existing.LastSent) < m.cfg.Cooldown {
			m.mu.Unlock()
			return false
		}
	}

	alert.ID = uuid.NewString()
	alert.Timestamp = now
	alert.LastSent = now
	stored := alert
	m.active[alert.Key] = &stored
	m.history = append(m.history, alert)
	m.mu.Unlock()

	metrics.ObserveAlertTriggered(string(alert.Severity))
	m.logger.Info("alert triggered",
		slog.String("key", alert.Key),
		slog.String("severity", string(alert.Severity)),
		slog.Float64("value", alert.Value))

	if m.publisher != nil {
		m.publisher.PublishAlert(alert)
	}
	if m.dispatcher != nil {
		// Notification transports are slow, unreliable I/O; never block the
		// evaluation loop on them. The caller's context may be an HTTP request
		// that ends as soon as the trigger returns, so dispatch must outlive it.
		go m.dispatcher.DispatchAlert(context.WithoutCancel(ctx), alert)
	}
	return true
}

// TestAlert injects a synthetic alert bypassing metric evaluation. It is
// still subject to cooldown and history rules.
func (m *Manager) TestAlert(ctx context.Context, alertType string, severity models.AlertSeverity, assetID, assetName string) bool {
	if severity != models.AlertCritical {
		severity = models.AlertWarning
	}
	return m.TriggerAlert(ctx, models.Alert{
		Key:       models.AlertKey(alertType, assetID),
		Type:      alertType,
		Severity:  severity,
		AssetID:   assetID,
		AssetName: assetName,
		Message:   fmt.Sprintf("test alert (%s) for %s", alertType, assetName),
		Metadata:  map[string]string{"test": "true"},
	})
}

// AcknowledgeAlert marks an active alert as acknowledged in place.
func (m *Manager) AcknowledgeAlert(id, by, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range m.active {
		if alert.ID == id {
			alert.Acknowledged = true
			alert.AcknowledgedBy = by
			alert.AcknowledgedAt = m.clock.Now()
			alert.Notes = notes
			return nil
		}
	}
	return fmt.Errorf("no active alert with id %s", id)
}

// ClearAlert removes an alert from the active map. History entries are never
// touched. Returns true when something was cleared.
func (m *Manager) ClearAlert(key string) bool {
	m.mu.Lock()
	alert, ok := m.active[key]
	if ok {
		delete(m.active, key)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	message := fmt.Sprintf("%s resolved for %s", alert.Type, alert.AssetName)
	m.logger.Info("alert cleared", slog.String("key", key))
	if m.publisher != nil {
		m.publisher.PublishAlertCleared(key, message)
	}
	return true
}

// ActiveAlerts returns the live alerts ordered by key for stable output.
func (m *Manager) ActiveAlerts() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Alert, 0, len(m.active))
	for _, alert := range m.active {
		out = append(out, *alert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// HistoryFilter narrows alert history queries.
type HistoryFilter struct {
	AssetID  string
	Severity models.AlertSeverity
	Type     string
}

// AlertHistory returns up to limit history entries, newest first.
func (m *Manager) AlertHistory(limit int, filter HistoryFilter) []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Alert, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		alert := m.history[i]
		if filter.AssetID != "" && alert.AssetID != filter.AssetID {
			continue
		}
		if filter.Severity != "" && alert.Severity != filter.Severity {
			continue
		}
		if filter.Type != "" && !strings.EqualFold(filter.Type, alert.Type) {
			continue
		}
		out = append(out, alert)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// CleanupHistory drops history entries older than the retention window. The
// active map has no automatic expiry; only explicit clears remove entries.
func (m *Manager) CleanupHistory() int {
	cutoff := m.clock.Now().Add(-m.cfg.HistoryRetention)

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.history[:0]
	removed := 0
	for _, alert := range m.history {
		if alert.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, alert)
	}
	m.history = kept
	if removed > 0 {
		m.logger.Debug("alert history purged", slog.Int("removed", removed))
	}
	return removed
}
