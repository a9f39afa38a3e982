package metrics

import (
	"context"
	"sync"
	"time"
)

// ProviderStats counts attempts against one provider
type ProviderStats struct {
	Successes int64 `json:"successes"`
	Failures  int64 `json:"failures"`
}

// Snapshot is a point-in-time copy of the in-process counters
type Snapshot struct {
	Generations map[string]int64         `json:"generations"` // keyed by tier
	Providers   map[string]ProviderStats `json:"providers"`
	TotalTokens int64                    `json:"total_tokens"`
}

// Counters keeps in-memory totals since process start for /api/metrics.
type Counters struct {
	mu          sync.Mutex
	generations map[string]int64
	providers   map[string]ProviderStats
	totalTokens int64
}

func NewCounters() *Counters {
	return &Counters{
		generations: make(map[string]int64),
		providers:   make(map[string]ProviderStats),
	}
}

func (c *Counters) RecordProviderAttempt(_ context.Context, provider string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.providers[provider]
	if success {
		stats.Successes++
	} else {
		stats.Failures++
	}
	c.providers[provider] = stats
}

func (c *Counters) RecordGeneration(_ context.Context, tier string, _ time.Duration) {
	c.mu.Lock()
	c.generations[tier]++
	c.mu.Unlock()
}

func (c *Counters) RecordTokenUsage(_ context.Context, _ string, _, _, totalTokens int) {
	c.mu.Lock()
	c.totalTokens += int64(totalTokens)
	c.mu.Unlock()
}

func (c *Counters) RecordAPIRequest(context.Context, string, int, time.Duration) {}

// Snapshot copies the counters so callers can serialize them without holding the lock
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Generations: make(map[string]int64, len(c.generations)),
		Providers:   make(map[string]ProviderStats, len(c.providers)),
		TotalTokens: c.totalTokens,
	}
	for tier, n := range c.generations {
		snap.Generations[tier] = n
	}
	for name, stats := range c.providers {
		snap.Providers[name] = stats
	}
	return snap
}

var _ Recorder = (*Counters)(nil)
