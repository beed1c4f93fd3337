// Package cache provides the read-through cache used for display lookups.
//
// Consistency contract: an entry is served for at most TTL after it was
// stored. Writes elsewhere in the system never invalidate entries, so a
// reader may observe a value up to TTL old. There is no size bound; expired
// entries are dropped lazily when they are next read or by Sweep.
//
// Callers must not use a TTL cache for uniqueness or reference checks.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is used when a non-positive TTL is configured.
const DefaultTTL = 60 * time.Second

// Result labels a lookup for metrics.
type Result string

const (
	Hit  Result = "hit"
	Miss Result = "miss"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// TTL is a concurrency-safe map with a fixed per-entry lifetime.
type TTL[K comparable, V any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	observe func(name string, r Result)

	mu      sync.Mutex
	entries map[K]entry[V]
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	now     func() time.Time
	observe func(string, Result)
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithObserver is called on every Get with the cache name and outcome.
func WithObserver(fn func(name string, r Result)) Option {
	return func(o *options) { o.observe = fn }
}

// New creates a named cache whose entries live for ttl.
func New[K comparable, V any](name string, ttl time.Duration, opts ...Option) *TTL[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[K, V]{
		name:    name,
		ttl:     ttl,
		now:     o.now,
		observe: o.observe,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the live value for key.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if c.observe != nil {
		if ok {
			c.observe(c.name, Hit)
		} else {
			c.observe(c.name, Miss)
		}
	}
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key for one TTL.
func (c *TTL[K, V]) Put(key K, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Expire removes key immediately.
func (c *TTL[K, V]) Expire(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep drops every expired entry and returns how many were removed.
func (c *TTL[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, including expired ones not yet
// dropped.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the configured entry lifetime.
func (c *TTL[K, V]) TTL() time.Duration {
	return c.ttl
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached.
func (c *TTL[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}
