// Package cache provides the in-process TTL cache that sits in front of the
// note repository, plus the key registry producers and invalidators share.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Named TTL tiers for callers to choose from. TTLMedium is the default.
const (
	TTLShort    = 2 * time.Minute
	TTLMedium   = 5 * time.Minute
	TTLLong     = 15 * time.Minute
	TTLVeryLong = 60 * time.Minute

	DefaultTTL = TTLMedium
)

// Metrics receives cache outcome counts. Implemented by the Prometheus
// collector in the observability package; nil disables collection.
type Metrics interface {
	CacheHit()
	CacheMiss()
	CacheInvalidation(count int)
}

// QueryCache is a thread-safe key/value store with per-entry TTL and
// prefix-based invalidation. It holds serialized query results for a bounded
// set of per-user queries, so there is deliberately no LRU or capacity bound:
// TTL expiry is the only eviction. Expiry is checked lazily on read; there is
// no background sweep.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	logger  *zap.Logger
	metrics Metrics

	hits          int64
	misses        int64
	invalidations int64

	// now is replaceable in tests to exercise expiry without sleeping.
	now func() time.Time
}

// cacheEntry is a single cached value. Valid iff now - storedAt <= ttl.
type cacheEntry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// NewQueryCache creates an empty cache. Pass nil for logger or metrics to
// disable them.
func NewQueryCache(logger *zap.Logger, metrics Metrics) *QueryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Get retrieves a value from the cache. An expired entry is treated as absent
// and evicted as a side effect.
func (c *QueryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.recordMiss()
		return nil, false, nil
	}

	if c.now().Sub(entry.storedAt) > entry.ttl {
		delete(c.entries, key)
		c.recordMiss()
		return nil, false, nil
	}

	c.recordHit()

	// Return a copy to prevent external modifications
	value := make([]byte, len(entry.value))
	copy(value, entry.value)

	return value, true, nil
}

// Set inserts or overwrites an entry, stamping the current time. A ttl of
// zero or less uses DefaultTTL.
func (c *QueryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	c.entries[key] = &cacheEntry{
		value:    stored,
		storedAt: c.now(),
		ttl:      ttl,
	}
	return nil
}

// Delete removes a single key.
func (c *QueryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Invalidate removes every entry whose key starts with prefix and returns how
// many were removed. The count is for debugging and test assertions, not
// control flow.
func (c *QueryCache) Invalidate(ctx context.Context, prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}

	c.invalidations += int64(removed)
	if c.metrics != nil {
		c.metrics.CacheInvalidation(removed)
	}
	if removed > 0 {
		c.logger.Debug("invalidated cache entries",
			zap.String("prefix", prefix),
			zap.Int("count", removed),
		)
	}
	return removed
}

// ClearAll drops all entries unconditionally. Calling it on an empty cache is
// a no-op; tests call it between cases to avoid cross-test pollution.
func (c *QueryCache) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	return nil
}

// Stats holds introspection data for tests and invalidation verification.
type Stats struct {
	Size          int
	Keys          []string
	Hits          int64
	Misses        int64
	Invalidations int64
}

// Stats returns a snapshot of the cache contents and counters. Expired but
// not-yet-read entries still count toward Size; expiry is lazy.
func (c *QueryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}

	return Stats{
		Size:          len(c.entries),
		Keys:          keys,
		Hits:          c.hits,
		Misses:        c.misses,
		Invalidations: c.invalidations,
	}
}

// Contains reports whether key is present and unexpired, without touching
// hit/miss counters or evicting.
func (c *QueryCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return false
	}
	return c.now().Sub(entry.storedAt) <= entry.ttl
}

func (c *QueryCache) recordHit() {
	c.hits++
	if c.metrics != nil {
		c.metrics.CacheHit()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses++
	if c.metrics != nil {
		c.metrics.CacheMiss()
	}
}
