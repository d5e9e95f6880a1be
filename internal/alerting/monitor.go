package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/analytics"
	"github.com/fleetworks/asset-sentinel/internal/metrics"
	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/repo"
	"github.com/fleetworks/asset-sentinel/internal/scheduler"
)

// AssetEventStore is the read surface of the external event/asset store the
// sweeps consume.
type AssetEventStore interface {
	GetAllAssets(ctx context.Context) ([]models.Asset, error)
	GetArchivedEvents(ctx context.Context, q repo.EventQuery) ([]models.Event, error)
}

// MonitorConfig sets sweep cadence and the reliability analysis window.
type MonitorConfig struct {
	AvailabilityInterval time.Duration
	DowntimeInterval     time.Duration
	ReliabilityInterval  time.Duration
	CleanupInterval      time.Duration
	WindowDays           int
}

// DefaultMonitorConfig returns the standard cadence: availability every five
// minutes, downtime every minute, MTBF/MTTR/frequency every ten, history
// cleanup hourly.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		AvailabilityInterval: 5 * time.Minute,
		DowntimeInterval:     1 * time.Minute,
		ReliabilityInterval:  10 * time.Minute,
		CleanupInterval:      time.Hour,
		WindowDays:           30,
	}
}

// Monitor drives the periodic evaluation of live metric values against the
// configured thresholds. Sweeps are timer-driven, never request-driven.
type Monitor struct {
	logger  *slog.Logger
	store   AssetEventStore
	manager *Manager
	cfg     MonitorConfig
}

// NewMonitor constructs a Monitor over the given store and alert manager.
func NewMonitor(logger *slog.Logger, store AssetEventStore, manager *Manager, cfg MonitorConfig) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	return &Monitor{logger: logger, store: store, manager: manager, cfg: cfg}
}

// Register attaches every sweep to the scheduler. Each sweep is single-flight
// per timer: the scheduler never overlaps two passes of the same task.
func (m *Monitor) Register(s *scheduler.Scheduler) error {
	tasks := []struct {
		name     string
		interval time.Duration
		task     scheduler.Task
	}{
		{"availability_sweep", m.cfg.AvailabilityInterval, m.SweepAvailability},
		{"downtime_sweep", m.cfg.DowntimeInterval, m.SweepDowntime},
		{"reliability_sweep", m.cfg.ReliabilityInterval, m.SweepReliability},
		{"history_cleanup", m.cfg.CleanupInterval, m.cleanupHistory},
	}
	for _, t := range tasks {
		if err := s.Every(t.name, t.interval, t.task); err != nil {
			return fmt.Errorf("register %s: %w", t.name, err)
		}
	}
	return nil
}

// SweepAvailability evaluates cumulative availability for every asset.
func (m *Monitor) SweepAvailability(ctx context.Context) error {
	return m.sweep(ctx, "availability_sweep", func(ctx context.Context, asset models.Asset) error {
		value := analytics.AvailabilityPercent(asset.RuntimeSeconds, asset.DowntimeSeconds)
		m.manager.EvaluateMetric(ctx, MetricAvailability, asset, value)
		return nil
	})
}

// SweepDowntime evaluates downtime hours accumulated over the trailing day.
func (m *Monitor) SweepDowntime(ctx context.Context) error {
	return m.sweep(ctx, "downtime_sweep", func(ctx context.Context, asset models.Asset) error {
		events, err := m.store.GetArchivedEvents(ctx, repo.EventQuery{AssetID: asset.ID, TimeframeDays: 1})
		if err != nil {
			return fmt.Errorf("events for %s: %w", asset.ID, err)
		}
		stops := analytics.StopEvents(events)
		hours := analytics.TotalStopDuration(stops).Hours()
		m.manager.EvaluateMetric(ctx, MetricDowntime, asset, hours)
		return nil
	})
}

// SweepReliability evaluates MTBF, MTTR and stop frequency over the full
// analysis window. Assets with zero stops have nothing to evaluate for MTBF
// and MTTR; any lingering alerts for those keys are cleared instead.
func (m *Monitor) SweepReliability(ctx context.Context) error {
	return m.sweep(ctx, "reliability_sweep", func(ctx context.Context, asset models.Asset) error {
		events, err := m.store.GetArchivedEvents(ctx, repo.EventQuery{AssetID: asset.ID, TimeframeDays: m.cfg.WindowDays})
		if err != nil {
			return fmt.Errorf("events for %s: %w", asset.ID, err)
		}
		stops := analytics.StopEvents(events)

		if mtbf := analytics.MTBFHours(asset.RuntimeSeconds, len(stops)); mtbf != nil {
			m.manager.EvaluateMetric(ctx, MetricMTBF, asset, *mtbf)
		} else {
			m.manager.ClearAlert(models.AlertKey(MetricMTBF, asset.ID))
		}
		if mttr := analytics.MTTRMinutes(stops); mttr != nil {
			m.manager.EvaluateMetric(ctx, MetricMTTR, asset, *mttr)
		} else {
			m.manager.ClearAlert(models.AlertKey(MetricMTTR, asset.ID))
		}

		perDay := float64(len(stops)) / float64(m.cfg.WindowDays)
		m.manager.EvaluateMetric(ctx, MetricStopFrequency, asset, perDay)
		return nil
	})
}

func (m *Monitor) cleanupHistory(ctx context.Context) error {
	m.manager.CleanupHistory()
	return nil
}

// sweep iterates the asset list and applies fn per asset. A failing asset is
// logged and skipped; only a failed asset listing aborts the pass.
func (m *Monitor) sweep(ctx context.Context, name string, fn func(context.Context, models.Asset) error) error {
	start := time.Now()

	assets, err := m.store.GetAllAssets(ctx)
	if err != nil {
		metrics.ObserveSweep(name, time.Since(start), metrics.OutcomeError)
		return fmt.Errorf("list assets: %w", err)
	}

	for _, asset := range assets {
		select {
		case <-ctx.Done():
			metrics.ObserveSweep(name, time.Since(start), metrics.OutcomeError)
			return ctx.Err()
		default:
		}
		if err := fn(ctx, asset); err != nil {
			m.logger.Warn("sweep skipped asset",
				slog.String("sweep", name),
				slog.String("asset", asset.ID),
				slog.Any("error", err))
		}
	}

	metrics.ObserveSweep(name, time.Since(start), metrics.OutcomeSuccess)
	return nil
}
