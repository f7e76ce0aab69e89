package poolquery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/infinite"
	"gravex-pools/internal/poolapi"
	"gravex-pools/internal/projection"
)

// PoolFetcher fetches one page of pools by URL.
type PoolFetcher interface {
	GetPools(ctx context.Context, url string, opts ...poolapi.RequestOption) (*poolapi.PageData, error)
}

// Engine opens pool queries over a shared collection cache.
type Engine struct {
	urls        URLConfig
	api         PoolFetcher
	cache       *infinite.Cache[domain.NormalizedPool]
	ownsCache   bool
	initialSize int
	logger      *zap.Logger
}

// Option configures Engine.
type Option func(*Engine)

// WithURLConfig sets the pool search endpoint.
func WithURLConfig(cfg URLConfig) Option {
	return func(e *Engine) {
		e.urls = cfg
	}
}

// WithCache shares an existing cache. The engine does not close it.
func WithCache(c *infinite.Cache[domain.NormalizedPool]) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithInitialSize sets how many pages a new query requests on open.
func WithInitialSize(n int) Option {
	return func(e *Engine) {
		e.initialSize = n
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine fetching through api.
func NewEngine(api PoolFetcher, opts ...Option) *Engine {
	e := &Engine{
		urls:        DefaultURLConfig(),
		api:         api,
		initialSize: 1,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = infinite.New[domain.NormalizedPool](nil, infinite.WithLogger(e.logger))
		e.ownsCache = true
	}
	return e
}

// URLConfig returns the endpoint configuration.
func (e *Engine) URLConfig() URLConfig {
	return e.urls
}

// Close releases the cache when the engine created it.
func (e *Engine) Close() {
	if e.ownsCache {
		e.cache.Close()
	}
}

// Open starts a query. An inactive query (no mints or ShouldFetch false)
// never fetches. Malformed mints and unknown enumerations are errors.
func (e *Engine) Open(p Params) (*Query, error) {
	q := &Query{
		engine:  e,
		updates: make(chan struct{}, 1),
	}
	if err := q.Update(p); err != nil {
		return nil, err
	}
	return q, nil
}

// fetchPage loads one page and normalizes it. Request failures are expected
// for pool searches, so they are not reported to the client error reporter.
func (e *Engine) fetchPage(ctx context.Context, key string, page int) ([]domain.NormalizedPool, error) {
	data, err := e.api.GetPools(ctx, PageURL(key, page), poolapi.SkipErrorReport())
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	return projection.NormalizeAll(data.Data), nil
}

func (e *Engine) options(p Params) infinite.Options {
	opts := infinite.IntervalOptions(p.RefreshInterval)
	opts.InitialSize = e.initialSize
	return opts
}
