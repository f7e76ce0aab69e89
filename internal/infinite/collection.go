package infinite

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"gravex-pools/internal/observability"
)

// collection is the live state of one key. Pages live in the provider;
// everything else is guarded by mu.
type collection[T any] struct {
	cache *Cache[T]
	key   string
	fetch Fetcher[T]
	opts  Options

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu           sync.Mutex
	size         int
	fetching     int
	revalidating int
	pumping      bool
	halted       bool
	err          error
	errPage      int
	gen          uint64
	lastFocus    time.Time
	subs         map[*Handle[T]]struct{}
	evictTimer   *time.Timer
	refreshTimer *time.Timer
	closed       bool
}

func newCollection[T any](cache *Cache[T], key string, fetch Fetcher[T], opts Options) *collection[T] {
	ctx, cancel := context.WithCancel(context.Background())
	col := &collection[T]{
		cache:    cache,
		key:      key,
		fetch:    fetch,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		size:     opts.InitialSize,
		fetching: -1,
		errPage:  -1,
		subs:     make(map[*Handle[T]]struct{}),
	}
	if opts.RefreshInterval > 0 {
		col.mu.Lock()
		col.refreshTimer = time.AfterFunc(opts.RefreshInterval, col.refresh)
		col.mu.Unlock()
	}
	return col
}

// attach registers h. Called with cache.mu held.
func (c *collection[T]) attach(h *Handle[T], created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.evictTimer != nil {
		c.evictTimer.Stop()
		c.evictTimer = nil
	}
	c.subs[h] = struct{}{}
	if !created {
		c.notifyOneLocked(h)
	}
}

// detach unregisters h and schedules eviction when it was the last one.
func (c *collection[T]) detach(h *Handle[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The handle won the close race, so it owns closing its channel.
	delete(c.subs, h)
	close(h.updates)
	if len(c.subs) == 0 && !c.closed && c.evictTimer == nil {
		c.evictTimer = time.AfterFunc(c.opts.DedupingInterval, func() {
			c.cache.evict(c)
		})
	}
}

func (c *collection[T]) idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs) == 0
}

// shutdown cancels in-flight requests and closes remaining handles.
func (c *collection[T]) shutdown() {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
	}
	if c.evictTimer != nil {
		c.evictTimer.Stop()
		c.evictTimer = nil
	}
	for h := range c.subs {
		if h.closed.CompareAndSwap(false, true) {
			close(h.updates)
		}
		delete(c.subs, h)
	}
}

func (c *collection[T]) pages() []Page[T] {
	pages, _ := c.cache.provider.Get(c.key)
	return pages
}

func (c *collection[T]) setPages(pages []Page[T]) {
	c.cache.provider.Set(c.key, pages)
}

func (c *collection[T]) state() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *collection[T]) stateLocked() State[T] {
	pages := c.pages()
	if len(pages) > c.size {
		pages = pages[:c.size]
	}
	st := State[T]{
		Key:          c.key,
		Pages:        pages,
		Size:         c.size,
		FetchingPage: c.fetching,
		Err:          c.err,
		ErrPage:      c.errPage,
		IsValidating: c.fetching >= 0 || c.revalidating > 0,
	}
	st.IsLoading = st.IsValidating && len(pages) == 0
	st.Phase = derivePhase(st)
	return st
}

func (c *collection[T]) notifyLocked() {
	for h := range c.subs {
		c.notifyOneLocked(h)
	}
}

func (c *collection[T]) notifyOneLocked(h *Handle[T]) {
	select {
	case h.updates <- struct{}{}:
	default:
	}
}

// load requests one page. Concurrent loads of the same page share a request.
func (c *collection[T]) load(index int) ([]T, error) {
	v, err, shared := c.group.Do(strconv.Itoa(index), func() (interface{}, error) {
		return c.fetch(c.ctx, c.key, index)
	})
	if shared {
		observability.RecordCacheEvent("inflight_shared")
	}
	if err != nil {
		return nil, err
	}
	items, _ := v.([]T)
	return items, nil
}

func (c *collection[T]) setSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSizeLocked(n)
}

func (c *collection[T]) loadMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSizeLocked(c.size + 1)
}

func (c *collection[T]) setSizeLocked(n int) {
	if n < 0 {
		n = 0
	}
	c.size = n
	c.halted = false
	c.kickLocked()
	c.notifyLocked()
}

// kickLocked starts the pump unless one is already running.
func (c *collection[T]) kickLocked() {
	if c.pumping || c.closed {
		return
	}
	c.pumping = true
	go c.pump()
}

// pump appends pages one at a time until the requested size is reached,
// the last page is empty, or a request fails.
func (c *collection[T]) pump() {
	for {
		c.mu.Lock()
		pages := c.pages()
		next := len(pages)
		exhausted := next > 0 && len(pages[next-1].Items) == 0
		if c.closed || c.halted || exhausted || next >= c.size {
			c.pumping = false
			c.mu.Unlock()
			return
		}
		c.fetching = next
		gen := c.gen
		startedAt := c.cache.now()
		c.notifyLocked()
		c.mu.Unlock()

		items, err := c.load(next)

		c.mu.Lock()
		c.fetching = -1
		switch {
		case c.closed:
			c.pumping = false
			c.mu.Unlock()
			return
		case gen != c.gen:
			// Mutated while in flight; the result may not fit any more.
		case err != nil:
			c.err = err
			c.errPage = next
			c.halted = true
			c.cache.logger.Warn("page fetch failed",
				zap.String("key", c.key),
				zap.Int("page", next),
				zap.Error(err),
			)
		default:
			pages = c.pages()
			if len(pages) == next {
				pages = append(pages, Page[T]{Index: next, Items: items, FetchedAt: startedAt})
				c.setPages(pages)
			}
			c.err = nil
			c.errPage = -1
			c.cache.logger.Debug("page fetched",
				zap.String("key", c.key),
				zap.Int("page", next),
				zap.Int("items", len(items)),
			)
		}
		c.armRefreshLocked()
		c.notifyLocked()
		c.mu.Unlock()
	}
}

// revalidate re-requests loaded pages older than the dedup window, or all
// loaded pages when force is set, then resumes growth toward the size.
func (c *collection[T]) revalidate(force bool, trigger string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	pages := c.pages()
	if len(pages) > c.size {
		pages = pages[:c.size]
	}
	now := c.cache.now()
	var stale []int
	for i, p := range pages {
		if force || now.Sub(p.FetchedAt) >= c.opts.DedupingInterval {
			stale = append(stale, i)
		}
	}
	c.halted = false
	if len(stale) == 0 {
		if len(pages) > 0 {
			observability.RecordCacheEvent("dedup_hit")
		}
		if trigger == "interval" {
			c.armRefreshLocked()
		}
		c.kickLocked()
		c.mu.Unlock()
		return
	}
	c.revalidating++
	gen := c.gen
	c.notifyLocked()
	c.mu.Unlock()

	observability.RecordRevalidation(trigger)

	startedAt := c.cache.now()
	results := make([][]T, len(stale))
	errs := make([]error, len(stale))
	var g errgroup.Group
	g.SetLimit(c.opts.RevalidateConcurrency)
	for i, idx := range stale {
		g.Go(func() error {
			results[i], errs[i] = c.load(idx)
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.revalidating--
	if c.closed {
		return
	}
	if gen == c.gen {
		pages = c.pages()
		var firstErr error
		errPage := -1
		for i, idx := range stale {
			if errs[i] != nil {
				if firstErr == nil {
					firstErr, errPage = errs[i], idx
				}
				continue
			}
			if idx < len(pages) {
				pages[idx] = Page[T]{Index: idx, Items: results[i], FetchedAt: startedAt}
			}
		}
		c.setPages(pages)

		if firstErr != nil {
			c.err = firstErr
			c.errPage = errPage
			c.cache.logger.Warn("revalidation failed",
				zap.String("key", c.key),
				zap.Int("page", errPage),
				zap.Error(firstErr),
			)
		} else if c.errPage >= 0 && c.errPage < len(pages) {
			c.err = nil
			c.errPage = -1
		}
	}
	c.armRefreshLocked()
	c.kickLocked()
	c.notifyLocked()
}

// focus revalidates unless a focus revalidation ran within the throttle window.
func (c *collection[T]) focus() {
	c.mu.Lock()
	now := c.cache.now()
	if !c.lastFocus.IsZero() && now.Sub(c.lastFocus) < c.opts.FocusThrottleInterval {
		c.mu.Unlock()
		observability.RecordCacheEvent("focus_throttled")
		return
	}
	c.lastFocus = now
	c.mu.Unlock()

	c.revalidate(false, "focus")
}

// mutate replaces the stored pages when update is non-nil and optionally
// revalidates every loaded page regardless of the dedup window.
func (c *collection[T]) mutate(update func([]Page[T]) []Page[T], revalidate bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if update != nil {
		pages := update(c.pages())
		now := c.cache.now()
		for i := range pages {
			pages[i].Index = i
			if pages[i].FetchedAt.IsZero() {
				pages[i].FetchedAt = now
			}
		}
		c.setPages(pages)
		c.gen++
		c.notifyLocked()
	}
	c.mu.Unlock()

	if revalidate {
		c.revalidate(true, "mutate")
	}
}

// refresh is the passive refresh tick.
func (c *collection[T]) refresh() {
	c.revalidate(false, "interval")
}

// armRefreshLocked schedules the next passive refresh one interval after the
// latest settled request. Page times are request start times, so every page
// is outside the dedup window when the timer fires.
func (c *collection[T]) armRefreshLocked() {
	if c.refreshTimer == nil || c.closed {
		return
	}
	c.refreshTimer.Reset(c.opts.RefreshInterval)
}
