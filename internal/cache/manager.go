// Package cache decorates containers with a keyed result cache.
//
// A Manager hands out named caches. The decorator asks the manager for its
// cache on every lookup, so a cache removed from the manager is re-created
// empty and the next lookup fetches everything again.
package cache

import (
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Definition configures one named cache.
type Definition struct {
	// Name of the cache. Defaults to the namespace of the decorated container.
	Name string `mapstructure:"name"`
	// TTL of an entry. Zero keeps entries until the cache is removed.
	TTL time.Duration `mapstructure:"ttl"`
}

// Cache stores fetched objects by key.
type Cache interface {
	// GetAll returns the live entries for keys and the keys without one.
	GetAll(keys []any) (hits map[any]any, misses []any)
	// PutAll stores values.
	PutAll(values map[any]any)
	// Len returns the number of stored entries, expired or not.
	Len() int
}

// Manager resolves caches by name.
type Manager interface {
	// Cache returns the cache named def.Name, creating it when absent.
	Cache(def Definition) Cache
	// Remove drops the named cache.
	Remove(name string)
	// ClearAll drops every cache.
	ClearAll()
}

// Clock returns the current time.
type Clock func() time.Time

// MemoryManager keeps caches in process memory.
type MemoryManager struct {
	caches     cmap.ConcurrentMap[string, *memoryCache]
	defaultTTL time.Duration
	now        Clock
}

// MemoryOption configures a MemoryManager.
type MemoryOption func(*MemoryManager)

// WithClock sets the time source used for expiry.
func WithClock(now Clock) MemoryOption {
	return func(m *MemoryManager) {
		m.now = now
	}
}

// WithDefaultTTL sets the TTL of caches defined without one.
func WithDefaultTTL(ttl time.Duration) MemoryOption {
	return func(m *MemoryManager) {
		m.defaultTTL = ttl
	}
}

// NewMemoryManager creates an empty MemoryManager.
func NewMemoryManager(opts ...MemoryOption) *MemoryManager {
	m := &MemoryManager{
		caches: cmap.New[*memoryCache](),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *MemoryManager) Cache(def Definition) Cache {
	ttl := def.TTL
	if ttl == 0 {
		ttl = m.defaultTTL
	}

	return m.caches.Upsert(def.Name, nil, func(exist bool, valueInMap, _ *memoryCache) *memoryCache {
		if exist {
			return valueInMap
		}

		return &memoryCache{ttl: ttl, now: m.now, entries: make(map[any]entry)}
	})
}

func (m *MemoryManager) Remove(name string) {
	m.caches.Remove(name)
}

func (m *MemoryManager) ClearAll() {
	m.caches.Clear()
}

// Names returns the names of the live caches.
func (m *MemoryManager) Names() []string {
	return m.caches.Keys()
}

type entry struct {
	value   any
	expires time.Time
}

type memoryCache struct {
	ttl time.Duration
	now Clock

	mu      sync.RWMutex
	entries map[any]entry
}

func (c *memoryCache) GetAll(keys []any) (map[any]any, []any) {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	hits := make(map[any]any, len(keys))

	var misses []any

	for _, k := range keys {
		e, ok := c.entries[k]
		if !ok || (!e.expires.IsZero() && !now.Before(e.expires)) {
			misses = append(misses, k)
			continue
		}

		hits[k] = e.value
	}

	return hits, misses
}

func (c *memoryCache) PutAll(values map[any]any) {
	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range values {
		c.entries[k] = entry{value: v, expires: expires}
	}
}

func (c *memoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
