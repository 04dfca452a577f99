package retrieval

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a bounded in-process result cache with TTL and lazy
// expiry. Entries past their deadline count as misses and are dropped on
// the next write pass; when full, the oldest entry is evicted.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryCacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type memoryCacheEntry struct {
	docs      []ScoredDocument
	storedAt  time.Time
	expiresAt time.Time
}

// NewMemoryCache creates a MemoryCache. A non-positive maxEntries
// defaults to 1000; a non-positive ttl defaults to five minutes.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryCache{
		entries:    make(map[string]memoryCacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get implements ResultCache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]ScoredDocument, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.docs, true
}

// Set implements ResultCache.
func (c *MemoryCache) Set(ctx context.Context, key string, docs []ScoredDocument) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Lazy expiry: sweep dead entries before considering eviction.
	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, entry := range c.entries {
			if oldestKey == "" || entry.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = entry.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = memoryCacheEntry{
		docs:      docs,
		storedAt:  now,
		expiresAt: now.Add(c.ttl),
	}
}

// Close implements ResultCache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryCacheEntry)
	return nil
}

// Len returns the live entry count, for tests and stats.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
