package cache

import (
	"sync"
	"time"
)

type entry struct {
	v   any
	exp time.Time
}

// TTLCache keeps decoded values in memory for a fixed time. The results API uses it so a
// burst of requests parses each CSV file once.
type TTLCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

// NewTTLCache caches each value for ttl; ttl <= 0 disables caching.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{m: make(map[string]entry), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source.
func (c *TTLCache) WithClock(now func() time.Time) *TTLCache {
	c.now = now
	return c
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *TTLCache) Set(key string, v any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.m[key] = entry{v: v, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Load returns the cached value for key or calls fn and caches its result.
// Errors are not cached.
func (c *TTLCache) Load(key string, fn func() (any, error)) (v any, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err = fn()
	if err != nil {
		return nil, false, err
	}
	c.Set(key, v)
	return v, false, nil
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
