// Package cache memoizes analytics reads for a short time. Entries are keyed
// by endpoint plus normalized query parameters and expire individually.
package cache

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultMaxSize = 512
	defaultTTL     = 2 * time.Minute
)

// AnalyticsPrefix is shared by every analytics key so writes can drop them together.
const AnalyticsPrefix = "analytics:"

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// Cache is an LRU with a per-entry TTL. It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, entry]
	now func() time.Time

	// gen counts invalidations. Remember only stores a load that started in
	// the current generation.
	mu  sync.Mutex
	gen uint64
}

// New creates a cache holding at most size entries. Non-positive sizes fall
// back to the default.
func New(size int) *Cache {
	if size <= 0 {
		size = defaultMaxSize
	}
	l, err := lru.New[string, entry](size)
	if err != nil {
		// lru.New only errors on non-positive size which we guard above.
		panic(err)
	}
	return &Cache{lru: l, now: time.Now}
}

// Key builds "<endpoint>:<k1=v1&k2=v2>" with parameters sorted by name and
// empty values dropped, so equivalent queries share an entry.
func Key(endpoint string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte(':')
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(strings.TrimSpace(params[k])))
	}
	return b.String()
}

// Get returns a fresh value. Expired entries are evicted on access.
func (c *Cache) Get(key string) (any, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		c.lru.Remove(key)
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return e.value, true
}

// Set stores value for ttl. A non-positive ttl uses the default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c.lru.Add(key, entry{value: value, storedAt: c.now(), ttl: ttl})
}

// InvalidatePrefix removes every entry whose key starts with prefix and
// returns how many were dropped.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++

	removed := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) && c.lru.Remove(k) {
			removed++
		}
	}
	cacheInvalidations.Add(float64(removed))
	return removed
}

// Purge drops everything.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	cacheInvalidations.Add(float64(c.lru.Len()))
	c.lru.Purge()
}

func (c *Cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// setIfCurrent stores value unless an invalidation ran since gen was read.
func (c *Cache) setIfCurrent(gen uint64, key string, value any, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.Set(key, value, ttl)
	return true
}

// Len reports the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Remember is a read-through helper: it returns the cached value for key or
// calls load and caches its result. Errors are never cached, and neither is
// a result whose load overlapped an invalidation.
func Remember[T any](c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var gen uint64
	if c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
		gen = c.generation()
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if c != nil {
		c.setIfCurrent(gen, key, v, ttl)
	}
	return v, nil
}
