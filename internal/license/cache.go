// Package license verifies purchase keys against the license API and
// caches the verdicts for the lifetime of the process.
package license

import (
	"sync"
	"time"

	"github.com/okian/spreadline/pkg/metrics"
)

// DefaultTTL bounds how long a verification is reused before the upstream
// is consulted again.
const DefaultTTL = 600 * time.Second

// cacheEntry pairs a verification with the time it was stored.
type cacheEntry struct {
	v        Verification
	cachedAt time.Time
}

// Cache is a process-lifetime key -> verification map with lazy TTL
// eviction on read. There is no size bound; the key space is one entry per
// distinct license key seen by this process, which is accepted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// CacheOption applies a configuration option to the Cache.
type CacheOption func(*Cache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Tests use this to step past the TTL
// without sleeping.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates a verification cache with configuration options.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached verification for key when present and no older
// than the TTL. An expired entry is evicted and reported as absent.
func (c *Cache) Get(key string) (Verification, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Verification{}, false
	}
	if c.now().Sub(e.cachedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another request may have refreshed
		// the entry in the meantime.
		if cur, ok := c.entries[key]; ok && c.now().Sub(cur.cachedAt) > c.ttl {
			delete(c.entries, key)
			metrics.RecordLicenseCacheEviction()
		}
		c.mu.Unlock()
		return Verification{}, false
	}
	return e.v, true
}

// Set stores a verification for key, overwriting any prior entry.
func (c *Cache) Set(key string, v Verification) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{v: v, cachedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
