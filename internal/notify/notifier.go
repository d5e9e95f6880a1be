package notify

import (
	"context"
	"log/slog"

	"github.com/fleetworks/asset-sentinel/internal/metrics"
	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/settings"
)

// Notifier delivers one alert through one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, alert models.Alert, channel settings.ChannelConfig) error
}

// SettingsReader provides the channel configuration per dispatch.
type SettingsReader interface {
	GetNotificationSettings(ctx context.Context) (settings.NotificationSettings, error)
}

// Dispatcher fans an alert out to every enabled channel. Failures are
// isolated per channel and recipient: one broken transport never prevents
// delivery through the others, and never rolls back alert state.
type Dispatcher struct {
	logger    *slog.Logger
	store     SettingsReader
	notifiers map[string]Notifier
}

// NewDispatcher wires the available notifiers keyed by channel type.
func NewDispatcher(logger *slog.Logger, store SettingsReader, notifiers ...Notifier) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	byType := make(map[string]Notifier, len(notifiers))
	for _, n := range notifiers {
		byType[n.Name()] = n
	}
	return &Dispatcher{logger: logger, store: store, notifiers: byType}
}

// DispatchAlert delivers an alert across all enabled channels.
func (d *Dispatcher) DispatchAlert(ctx context.Context, alert models.Alert) {
	cfg := settings.Defaults()
	if d.store != nil {
		loaded, err := d.store.GetNotificationSettings(ctx)
		if err != nil {
			d.logger.Warn("notification settings unavailable, using defaults", slog.Any("error", err))
		} else {
			cfg = loaded
		}
	}

	for _, channel := range cfg.Channels {
		if !channel.Enabled {
			continue
		}
		notifier, ok := d.notifiers[channel.Type]
		if !ok {
			d.logger.Debug("no notifier for channel type", slog.String("type", channel.Type))
			continue
		}
		if err := notifier.Send(ctx, alert, channel); err != nil {
			metrics.ObserveNotification(channel.Type, metrics.OutcomeError)
			d.logger.Warn("notification delivery failed",
				slog.String("channel", channel.Name),
				slog.String("alert", alert.Key),
				slog.Any("error", err))
			continue
		}
		metrics.ObserveNotification(channel.Type, metrics.OutcomeSuccess)
	}
}
