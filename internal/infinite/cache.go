// Package infinite implements a keyed, shared, incrementally paginated
// remote collection cache with time-windowed deduplication, focus
// revalidation and passive refresh.
package infinite

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"gravex-pools/internal/observability"
)

// Fetcher loads one page (0-based) of the collection identified by key.
type Fetcher[T any] func(ctx context.Context, key string, page int) ([]T, error)

// Option configures a Cache.
type Option func(*cacheConfig)

type cacheConfig struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock sets the clock used for dedup and focus throttling.
func WithClock(now func() time.Time) Option {
	return func(c *cacheConfig) {
		c.now = now
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *cacheConfig) {
		c.logger = logger
	}
}

// Cache shares one live collection per key between all subscribers.
// A collection is created on first subscription and evicted once its last
// subscriber has left and the dedup window has elapsed.
type Cache[T any] struct {
	provider Provider[T]
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]*collection[T]
	closed  bool
}

// New creates a cache backed by provider. A nil provider uses a MemoryProvider.
func New[T any](provider Provider[T], opts ...Option) *Cache[T] {
	cfg := cacheConfig{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if provider == nil {
		provider = NewMemoryProvider[T]()
	}

	return &Cache[T]{
		provider: provider,
		now:      cfg.now,
		logger:   cfg.logger,
		entries:  make(map[string]*collection[T]),
	}
}

// Subscribe attaches a handle to the collection for key. An empty key
// yields an inert handle that never fetches. Subscribing to a live key
// revalidates it, subject to the dedup window.
func (c *Cache[T]) Subscribe(key string, fetch Fetcher[T], opts Options) *Handle[T] {
	h := &Handle[T]{
		key:     key,
		updates: make(chan struct{}, 1),
	}
	if key == "" || fetch == nil {
		return h
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return h
	}
	col, ok := c.entries[key]
	if !ok {
		col = newCollection(c, key, fetch, opts.withDefaults())
		c.entries[key] = col
		observability.SetCacheEntries(len(c.entries))
	}
	h.col = col
	col.attach(h, !ok)
	c.mu.Unlock()

	go col.revalidate(false, "mount")
	return h
}

// Keys returns the keys of live collections.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Close stops every collection and closes all handles.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for key, col := range c.entries {
		col.shutdown()
		c.provider.Delete(key)
		delete(c.entries, key)
	}
	observability.SetCacheEntries(0)
}

// evict drops col if it still has no subscribers.
func (c *Cache[T]) evict(col *collection[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[col.key] != col || !col.idle() {
		return
	}
	col.shutdown()
	c.provider.Delete(col.key)
	delete(c.entries, col.key)
	observability.SetCacheEntries(len(c.entries))

	c.logger.Debug("collection evicted", zap.String("key", col.key))
}
