package patterns

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fleetworks/asset-sentinel/internal/cache"
	"github.com/fleetworks/asset-sentinel/internal/models"
)

const (
	patternsKey = "patterns:alerts"
	patternsTTL = 24 * time.Hour
)

// CacheStore persists mined patterns in the cache so the last mining result
// survives between requests without a database.
type CacheStore struct {
	cache cache.Provider
}

// NewCacheStore wraps a cache provider as a pattern store.
func NewCacheStore(provider cache.Provider) *CacheStore {
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	return &CacheStore{cache: provider}
}

// StorePatterns serialises patterns under a fixed key, replacing the previous
// snapshot.
func (s *CacheStore) StorePatterns(ctx context.Context, patterns []models.AlertPattern) error {
	data, err := json.Marshal(patterns)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, patternsKey, data, patternsTTL)
}

// LoadPatterns returns the last stored snapshot, or nil when none exists.
func (s *CacheStore) LoadPatterns(ctx context.Context) ([]models.AlertPattern, error) {
	data, err := s.cache.Get(ctx, patternsKey)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	var patterns []models.AlertPattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}
