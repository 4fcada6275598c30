// Package cache provides a thread-safe in-memory TTL cache
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with expiration
type Entry[V any] struct {
	Value      V
	Expiration time.Time
}

// IsExpired checks if the entry has expired at now
func (e *Entry[V]) IsExpired(now time.Time) bool {
	if e.Expiration.IsZero() {
		return false // Never expires
	}
	return now.After(e.Expiration)
}

// Config holds cache configuration
type Config struct {
	MaxItems        int
	TTL             time.Duration // Default TTL, zero keeps entries until evicted
	CleanupInterval time.Duration // Zero disables the background cleanup
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems:        10000,
		TTL:             5 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// Cache is a thread-safe in-memory cache with TTL support
type Cache[V any] struct {
	mu       sync.Mutex
	items    map[string]*Entry[V]
	maxItems int
	ttl      time.Duration
	now      func() time.Time

	hits   int64
	misses int64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a cache. Call Close to stop the cleanup goroutine.
func New[V any](cfg Config) *Cache[V] {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultConfig().MaxItems
	}

	c := &Cache[V]{
		items:    make(map[string]*Entry[V]),
		maxItems: cfg.MaxItems,
		ttl:      cfg.TTL,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go c.cleanupLoop(cfg.CleanupInterval)
	} else {
		close(c.done)
	}

	return c
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lookup(key)
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return entry.Value, true
}

// lookup returns a live entry and drops an expired one (lock held)
func (c *Cache[V]) lookup(key string) (*Entry[V], bool) {
	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if entry.IsExpired(c.now()) {
		delete(c.items, key)
		return nil, false
	}
	return entry, true
}

// Set stores a value with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, ttl)
}

func (c *Cache[V]) set(key string, value V, ttl time.Duration) {
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.items[key] = &Entry[V]{Value: value, Expiration: exp}
}

// SetIfAbsent stores value unless a live entry exists. It returns the
// remaining lifetime of the existing entry and false in that case.
func (c *Cache[V]) SetIfAbsent(key string, value V, ttl time.Duration) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.lookup(key); ok {
		if entry.Expiration.IsZero() {
			return 0, false
		}
		return entry.Expiration.Sub(c.now()), false
	}
	c.set(key, value, ttl)
	return 0, true
}

// Delete removes a value from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*Entry[V])
}

// Size returns the number of stored items, expired ones included until
// the next cleanup
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() (hits, misses int64, hitRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits = c.hits
	misses = c.misses
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return
}

// GetOrSet returns the cached value or stores the result of fn
func (c *Cache[V]) GetOrSet(key string, fn func() (V, error)) (V, error) {
	if val, ok := c.Get(key); ok {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, val)
	return val, nil
}

// Close stops the cleanup goroutine
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// evictOldest removes the entry expiring first. Entries without expiration
// go last (lock held).
func (c *Cache[V]) evictOldest() {
	var (
		victim  string
		victimE *Entry[V]
		found   bool
	)

	for key, entry := range c.items {
		if !found || expiresBefore(entry, victimE) {
			victim, victimE, found = key, entry, true
		}
	}

	if found {
		delete(c.items, victim)
	}
}

// expiresBefore reports whether a expires earlier than b, treating a zero
// expiration as never
func expiresBefore[V any](a, b *Entry[V]) bool {
	switch {
	case a.Expiration.IsZero():
		return false
	case b.Expiration.IsZero():
		return true
	}
	return a.Expiration.Before(b.Expiration)
}

func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries
func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.items {
		if entry.IsExpired(now) {
			delete(c.items, key)
		}
	}
}
