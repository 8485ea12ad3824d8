package ai

import (
	"sync"
	"time"
)

// ResponseCache memoizes title results by content hash. Implementations are
// advisory only: losing entries between process restarts must never affect
// correctness, so a single-instance deployment can use the in-process map
// below while multi-instance deployments plug in a shared store.
type ResponseCache interface {
	Get(key string) (TitleResult, bool)
	Set(key string, result TitleResult)
}

type cacheEntry struct {
	result    TitleResult
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded TTL map.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache with the given entry TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(key string) (TitleResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return TitleResult{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return TitleResult{}, false
	}
	return entry.result, true
}

func (c *MemoryCache) Set(key string, result TitleResult) {
	// Stored without the per-request flags.
	result.Cached = false
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, expiresAt: c.now().Add(c.ttl)}
}
