package patterns

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// Store abstracts persistence for mined patterns.
type Store interface {
	StorePatterns(ctx context.Context, patterns []models.AlertPattern) error
}

// Miner mines frequency-based alert patterns from alert history: assets that
// keep tripping the same metric thresholds surface as recurring signatures.
type Miner struct {
	store  Store
	logger *slog.Logger
}

// NewMiner constructs a Miner; store may be nil for dry runs.
func NewMiner(logger *slog.Logger, store Store) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{store: store, logger: logger}
}

// Mine aggregates alert history by asset and returns patterns ordered by
// prevalence. Assets with fewer than two alerts never form a pattern.
func (m *Miner) Mine(ctx context.Context, history []models.Alert) ([]models.AlertPattern, error) {
	if len(history) == 0 {
		return nil, nil
	}

	assetStats := make(map[string]*assetAggregate)
	for _, alert := range history {
		agg := ensureAggregate(assetStats, alert.AssetID)
		agg.name = alert.AssetName
		agg.count++
		agg.metricCounts[alert.Type]++
		if alert.Severity == models.AlertCritical {
			agg.criticals++
		}
		if alert.Timestamp.After(agg.lastSeen) {
			agg.lastSeen = alert.Timestamp
		}
	}

	patterns := make([]models.AlertPattern, 0, len(assetStats))
	for assetID, agg := range assetStats {
		if agg.count < 2 {
			continue
		}
		patterns = append(patterns, models.AlertPattern{
			ID:          "pattern-" + assetID,
			AssetID:     assetID,
			AssetName:   agg.name,
			Name:        agg.name + " recurring alerts",
			Description: "Auto-mined pattern based on alert history",
			Metrics:     agg.topMetrics(3),
			Occurrences: agg.count,
			Prevalence:  float64(agg.count) / float64(len(history)),
			CriticalPct: float64(agg.criticals) / float64(agg.count),
			LastSeen:    agg.lastSeen,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].Prevalence > patterns[j].Prevalence
	})

	if m.store != nil && len(patterns) > 0 {
		if err := m.store.StorePatterns(ctx, patterns); err != nil {
			m.logger.Warn("pattern store failed", slog.Any("error", err))
		}
	}

	return patterns, nil
}

type assetAggregate struct {
	name         string
	count        int
	criticals    int
	lastSeen     time.Time
	metricCounts map[string]int
}

func ensureAggregate(m map[string]*assetAggregate, assetID string) *assetAggregate {
	if assetID == "" {
		assetID = "unknown"
	}
	agg, ok := m[assetID]
	if !ok {
		agg = &assetAggregate{metricCounts: make(map[string]int)}
		m[assetID] = agg
	}
	return agg
}

func (agg *assetAggregate) topMetrics(limit int) []string {
	metrics := make([]string, 0, len(agg.metricCounts))
	for metric := range agg.metricCounts {
		metrics = append(metrics, metric)
	}
	sort.Slice(metrics, func(i, j int) bool {
		if agg.metricCounts[metrics[i]] != agg.metricCounts[metrics[j]] {
			return agg.metricCounts[metrics[i]] > agg.metricCounts[metrics[j]]
		}
		return metrics[i] < metrics[j]
	})
	if len(metrics) > limit {
		metrics = metrics[:limit]
	}
	return metrics
}
