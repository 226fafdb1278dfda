// Package cache is a TTL-bounded, read-through cache over compositor query
// results (clients, monitors), with single-flight fetch
// coalescing so concurrent callers for the same kind never fan out to
// multiple producer invocations.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Producer fetches and returns the authoritative value for a cache kind.
type Producer func() (any, error)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a per-kind TTL cache with single-flight fetch coalescing.
// Concurrent readers are safe; the producer's failure propagates to every
// waiting caller and no negative result is stored.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	flight  singleflight.Group
}

// New returns a Cache whose entries expire after ttl (default: 1s).
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Second
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Fetch returns the cached value for kind if present and unexpired;
// otherwise it invokes produce, stores the result under kind with the
// configured TTL, and returns it. Concurrent Fetch calls for the same kind
// while a fetch is in flight share the single producer invocation.
func (c *Cache) Fetch(kind string, produce Producer) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[kind]; ok && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	v, err, _ := c.flight.Do(kind, func() (any, error) {
		value, err := produce()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[kind] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return value, nil
	})
	return v, err
}

// Revoke drops the cached value for kind immediately, forcing the next
// Fetch to invoke the producer.
func (c *Cache) Revoke(kind string) {
	c.mu.Lock()
	delete(c.entries, kind)
	c.mu.Unlock()
}

// RevokeAll drops every cached entry.
func (c *Cache) RevokeAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
