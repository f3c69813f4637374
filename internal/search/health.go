// Package search indexes event/edition aggregates into one or more search
// clusters and tracks per-cluster health so known-bad clusters are skipped
// without re-probing on every write.
package search

import (
	"sync"
	"time"
)

// ClusterHealth is one cluster's cached health entry.
type ClusterHealth struct {
	Healthy   bool
	Status    string // cluster-reported status (green/yellow/red) or a probe error tag
	CanIndex  bool
	LastCheck time.Time
}

// HealthCache is the only shared mutable state in the post-processing
// pipeline.  It is an explicitly owned, injected component: one instance
// is constructed at process start and passed by reference to the indexer.
// Entries are keyed by cluster name and refreshed on a TTL basis; writers
// only ever overwrite their own cluster's entry, so a single mutex over
// the map is all the coordination required.
type HealthCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]ClusterHealth
	now     func() time.Time
}

// NewHealthCache constructs a cache whose entries are trusted for ttl.
// A non-positive ttl falls back to 60 seconds.
func NewHealthCache(ttl time.Duration) *HealthCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &HealthCache{
		ttl:     ttl,
		entries: make(map[string]ClusterHealth),
		now:     time.Now,
	}
}

// Get returns the cluster's entry when present and still fresh.  A stale
// or missing entry returns ok=false, telling the caller to probe.
func (c *HealthCache) Get(cluster string) (ClusterHealth, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.entries[cluster]
	if !ok || c.now().Sub(h.LastCheck) > c.ttl {
		return ClusterHealth{}, false
	}
	return h, true
}

// Set overwrites the cluster's entry, stamping the check time.
func (c *HealthCache) Set(cluster string, h ClusterHealth) {
	h.LastCheck = c.now()
	c.mu.Lock()
	c.entries[cluster] = h
	c.mu.Unlock()
}

// Snapshot returns a copy of all entries, for the health endpoint.
func (c *HealthCache) Snapshot() map[string]ClusterHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]ClusterHealth, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
