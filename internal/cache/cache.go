package cache

import (
	"sync"
	"time"
)

// Cache is a small in-process cache-aside helper: callers pass a key, a TTL
// and a loader, and get either the cached value or a freshly loaded one.
// It serves read-mostly, non-authoritative data only; authorization decisions
// are never cached here.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value     any
	expiresAt time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// GetOrLoad returns the cached value for key if it has not expired, otherwise
// invokes the loader and caches the result for ttl. Loader errors are not
// cached.
func (c *Cache) GetOrLoad(key string, ttl time.Duration, loader func() (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	value, err := loader()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return value, nil
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
