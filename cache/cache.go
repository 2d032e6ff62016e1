package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// entry is one memoized aggregate result. The window bounds are kept so
// invalidation for a mutation timestamp can target exactly the entries
// whose window could contain it.
type entry struct {
	value       interface{}
	windowStart time.Time
	windowEnd   time.Time
	expiresAt   time.Time
}

// Stats is a read-only snapshot of cache effectiveness.
type Stats struct {
	Size     int
	Hits     uint64
	Misses   uint64
	HitRatio float64
}

// ResultCache memoizes analytics results keyed by endpoint, window and
// filter parameters. Staleness is bounded by TTL and by explicit
// invalidation on report mutation; a hit is returned as stored, without
// re-validation against current data.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	hits   uint64
	misses uint64
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Key derives a stable cache key from the endpoint name, the normalized
// window and the filter parameters. Params are sorted so equivalent
// requests map to the same key regardless of argument order.
func Key(endpoint, startDate, endDate string, params map[string]string) string {
	parts := []string{endpoint, startDate, endDate}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Get returns the stored result for key, if present and unexpired.
func (c *ResultCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			delete(c.entries, key)
		}
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Put stores a result with its window bounds.
func (c *ResultCache) Put(key string, value interface{}, windowStart, windowEnd time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:       value,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		expiresAt:   time.Now().Add(c.ttl),
	}
}

// InvalidateTimestamp drops every entry whose window could contain ts,
// so a cached result never hides a mutation inside its own window.
func (c *ResultCache) InvalidateTimestamp(ts time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	u := ts.UTC()
	for key, e := range c.entries {
		if !u.Before(e.windowStart) && u.Before(e.windowEnd.AddDate(0, 0, 1)) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// InvalidateAll clears the cache. The conservative fallback when a
// mutation event cannot be attributed to a timestamp.
func (c *ResultCache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := len(c.entries)
	c.entries = make(map[string]entry)
	return dropped
}

// Stats reports size and hit-ratio without mutating state.
func (c *ResultCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Size:   len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRatio = float64(c.hits) / float64(total)
	}
	return stats
}
