package utils

import (
	"sort"
	"sync"
	"time"
)

// ReportTimings keeps a bounded window of duration samples per report kind
// and answers percentile queries over them. It lets the service layer log
// slow analytics paths without pulling a metrics registry into report code.
type ReportTimings struct {
	mu      sync.RWMutex
	maxSize int
	byKind  map[string][]time.Duration
}

// NewReportTimings creates a tracker keeping up to maxSize samples per kind.
func NewReportTimings(maxSize int) *ReportTimings {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &ReportTimings{
		maxSize: maxSize,
		byKind:  make(map[string][]time.Duration),
	}
}

// Observe records one sample for the given report kind, evicting the oldest
// sample once the window is full.
func (t *ReportTimings) Observe(kind string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	samples := append(t.byKind[kind], d)
	if len(samples) > t.maxSize {
		samples = samples[len(samples)-t.maxSize:]
	}
	t.byKind[kind] = samples
}

// Percentile returns the p-th percentile (0-100) for a kind, or zero when no
// samples exist for it.
func (t *ReportTimings) Percentile(kind string, p float64) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	samples := t.byKind[kind]
	if len(samples) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	index := int((p / 100.0) * float64(len(sorted)-1))
	return sorted[index]
}

// Count returns the number of samples held for a kind.
func (t *ReportTimings) Count(kind string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byKind[kind])
}

// Kinds lists the observed report kinds in sorted order.
func (t *ReportTimings) Kinds() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	kinds := make([]string, 0, len(t.byKind))
	for kind := range t.byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
