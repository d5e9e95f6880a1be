package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fleetworks/asset-sentinel/internal/cache"
)

// ChannelConfig describes one notification channel and its recipients.
type ChannelConfig struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"` // email, webhook, inapp
	Enabled    bool     `json:"enabled"`
	Recipients []string `json:"recipients,omitempty"`
	Endpoint   string   `json:"endpoint,omitempty"`
}

// NotificationSettings carries operator-configurable alerting preferences,
// including optional threshold overrides keyed by metric and level name.
type NotificationSettings struct {
	AlertThresholds    map[string]map[string]float64 `json:"alert_thresholds,omitempty"`
	Channels           []ChannelConfig               `json:"channels"`
	EventNotifications bool                          `json:"event_notifications"`
}

// Defaults returns the built-in settings used when the store is empty or
// unreachable.
func Defaults() NotificationSettings {
	return NotificationSettings{
		Channels:           []ChannelConfig{{Name: "inapp", Type: "inapp", Enabled: true}},
		EventNotifications: true,
	}
}

const settingsKey = "settings:notifications"

// Store persists notification settings behind the shared cache provider;
// with the Redis provider the settings survive restarts, with the noop
// provider reads fall back to defaults.
type Store struct {
	provider cache.Provider
}

// NewStore wraps a cache provider as a settings store.
func NewStore(provider cache.Provider) *Store {
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	return &Store{provider: provider}
}

// GetNotificationSettings loads the stored settings. An absent key returns
// defaults without error; a transport failure is surfaced so callers can log
// the fallback.
func (s *Store) GetNotificationSettings(ctx context.Context) (NotificationSettings, error) {
	payload, err := s.provider.Get(ctx, settingsKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("load notification settings: %w", err)
	}

	var loaded NotificationSettings
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return Defaults(), fmt.Errorf("decode notification settings: %w", err)
	}
	if len(loaded.Channels) == 0 {
		loaded.Channels = Defaults().Channels
	}
	return loaded, nil
}

// UpdateNotificationSettings stores the settings without expiry.
func (s *Store) UpdateNotificationSettings(ctx context.Context, settings NotificationSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode notification settings: %w", err)
	}
	if err := s.provider.Set(ctx, settingsKey, payload, 0); err != nil {
		return fmt.Errorf("store notification settings: %w", err)
	}
	return nil
}

// MemoryStore keeps settings in memory, used by tests and single-process
// deployments without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	settings NotificationSettings
	set      bool
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetNotificationSettings returns the stored settings or defaults.
func (s *MemoryStore) GetNotificationSettings(ctx context.Context) (NotificationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Defaults(), nil
	}
	return s.settings, nil
}

// UpdateNotificationSettings replaces the stored settings.
func (s *MemoryStore) UpdateNotificationSettings(ctx context.Context, settings NotificationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.set = true
	return nil
}
