package hotel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// CacheKey is a stable, case-insensitive key for a query shape.
func CacheKey(city, checkIn string, guests int, currency string) string {
	raw := fmt.Sprintf("%s|%s|%d|%s",
		strings.ToLower(strings.TrimSpace(city)),
		strings.TrimSpace(checkIn),
		guests,
		strings.ToUpper(strings.TrimSpace(currency)),
	)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

const defaultMaxEntries = 1024

type cacheEntry struct {
	offers    []RawOffer
	expiresAt time.Time
}

// MemoryCache is an in-process Cache with a fixed TTL. Entries are replaced whole.
type MemoryCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	entries    map[string]cacheEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:        ttl,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
}

// WithClock replaces the time source; used by tests to move past the TTL.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]RawOffer, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]RawOffer(nil), e.offers...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, offers []RawOffer) error {
	entry := cacheEntry{
		offers:    append([]RawOffer(nil), offers...),
		expiresAt: c.now().Add(c.ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked drops expired entries, then the entry closest to expiry if still full.
func (c *MemoryCache) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	var oldest string
	var oldestAt time.Time
	for k, e := range c.entries {
		if oldest == "" || e.expiresAt.Before(oldestAt) {
			oldest, oldestAt = k, e.expiresAt
		}
	}
	delete(c.entries, oldest)
}
