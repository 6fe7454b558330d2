// Package querycache holds server responses for a bounded time so repeated reads
// within the stale window do not hit the network. Logout clears it.
package querycache

import (
	"context"
	"sync"
	"time"
)

// DefaultStaleTime is how long an entry is served before it is refetched.
const DefaultStaleTime = 5 * time.Minute

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Cache interface for query results keyed by a caller chosen string
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Invalidate(key string)
	Clear()
	Cleanup() // Remove stale entries
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// InMemoryCache is a simple in-memory implementation
type InMemoryCache struct {
	entries   map[string]entry
	staleTime time.Duration
	mu        sync.RWMutex
}

func NewInMemoryCache(staleTime time.Duration) *InMemoryCache {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &InMemoryCache{
		entries:   make(map[string]entry),
		staleTime: staleTime,
	}
}

func (c *InMemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || c.stale(e, NowTimeFunc()) {
		return nil, false
	}
	return e.value, true
}

func (c *InMemoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, fetchedAt: NowTimeFunc()}
}

func (c *InMemoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *InMemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := NowTimeFunc()
	for key, e := range c.entries {
		if c.stale(e, now) {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of entries held, stale or not.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryCache) stale(e entry, now time.Time) bool {
	return now.Sub(e.fetchedAt) >= c.staleTime
}

// Fetch returns the cached value for key or calls fetch and caches its result.
// Errors are not cached.
func Fetch[T any](ctx context.Context, c Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}
