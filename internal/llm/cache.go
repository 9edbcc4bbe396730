package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// responseCache stores completion text keyed by request fingerprint.
type responseCache interface {
	get(key string) (string, bool)
	set(key, text string)
	Close() error
}

// cacheKey fingerprints a completion request.
func cacheKey(system, user string, temperature float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%.3f", system, user, temperature)))
	return hex.EncodeToString(sum[:])
}

// cacheEntry represents a cached completion.
type cacheEntry struct {
	expiry time.Time
	text   string
}

// memoryCache provides thread-safe in-process caching for completions.
type memoryCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newMemoryCache creates a new cache with the specified TTL.
func newMemoryCache(ttl time.Duration) *memoryCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &memoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

func (c *memoryCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return "", false
	}

	return entry.text, true
}

func (c *memoryCache) set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		text:   text,
		expiry: c.now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *memoryCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *memoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *memoryCache) Close() error {
	close(c.stopCh)
	return nil
}
