package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Clock provides the current time. Defaults to time.Now; override in tests.
type Clock func() time.Time

// Fetcher loads the value for a key from the underlying source.
type Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

// entry represents a cache entry with expiration
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache with get-or-refresh semantics: a
// missing key is fetched synchronously, an expired key is served stale
// while a best-effort refresh runs in the background. A refresh failure
// is logged, never raised.
type Cache[K comparable, V any] struct {
	ttl   time.Duration
	clock Clock
	fetch Fetcher[K, V]
	log   *logrus.Entry

	mu         sync.Mutex
	items      map[K]entry[V]
	refreshing map[K]bool
	hits       uint64
	misses     uint64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock sets the time source for the cache.
func WithClock[K comparable, V any](clock Clock) Option[K, V] {
	return func(c *Cache[K, V]) { c.clock = clock }
}

// New creates a TTL cache over the given fetcher.
func New[K comparable, V any](ttl time.Duration, fetch Fetcher[K, V], log *logrus.Entry, opts ...Option[K, V]) *Cache[K, V] {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	c := &Cache[K, V]{
		ttl:        ttl,
		clock:      time.Now,
		fetch:      fetch,
		log:        log.WithField("component", "cache"),
		items:      make(map[K]entry[V]),
		refreshing: make(map[K]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, fetching it when absent. An
// expired value is returned as-is and refreshed asynchronously; callers
// tolerating staleness never block on the source.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	e, ok := c.items[key]
	if ok {
		c.hits++
		stale := c.clock().After(e.expiresAt)
		if stale && !c.refreshing[key] {
			c.refreshing[key] = true
			go c.refresh(key)
		}
		c.mu.Unlock()
		return e.value, nil
	}
	c.misses++
	c.mu.Unlock()

	value, err := c.fetch(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, value)
	return value, nil
}

// Set stores a value, restarting its TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, expiresAt: c.clock().Add(c.ttl)}
}

// Delete removes a key from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len returns the number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: hitRate,
		Size:    len(c.items),
	}
}

// refresh reloads one key in the background. The caller's context is
// gone by the time this runs, so it gets its own deadline.
func (c *Cache[K, V]) refresh(key K) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	value, err := c.fetch(ctx, key)

	c.mu.Lock()
	delete(c.refreshing, key)
	c.mu.Unlock()

	if err != nil {
		c.log.WithError(err).Warn("background refresh failed, serving stale value")
		return
	}
	c.Set(key, value)
}

// Stats represents cache statistics
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Size    int     `json:"size"`
}
