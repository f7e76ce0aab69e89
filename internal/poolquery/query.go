package poolquery

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/infinite"
	"gravex-pools/internal/mint"
	"gravex-pools/internal/projection"
)

// Result is a snapshot of a query.
type Result struct {
	Key                   string
	Pair                  mint.Pair
	SelectedPool          *domain.NormalizedPool
	Data                  []domain.NormalizedPool
	FormattedData         []domain.FormattedPool
	FormattedSelectedPool *domain.FormattedPool
	// IsLoadEnded is true when nothing is in flight and either no record was
	// loaded or the last request failed. An empty first page and a failure
	// are not told apart beyond Error.
	IsLoadEnded  bool
	Size         int
	Phase        infinite.Phase
	IsValidating bool
	IsLoading    bool
	Error        error
	// ErrPage is the page Error belongs to, -1 without an error.
	ErrPage int
	// Pages is the number of resolved pages behind Data.
	Pages int
	// UpdatedAt is the latest fetch time of the resolved pages.
	UpdatedAt time.Time
}

// TailFailed reports whether the only failure is the request for the next
// page. Every resolved page in Data is then current.
func (r Result) TailFailed() bool {
	return r.Error != nil && r.Pages > 0 && r.ErrPage >= r.Pages
}

// Query is one consumer of a pool collection. Queries with the same key
// share pages, so Mutate through one is visible to the others.
type Query struct {
	engine *Engine

	mu      sync.Mutex
	params  Params
	pair    mint.Pair
	handle  *infinite.Handle[domain.NormalizedPool]
	updates chan struct{}
	closed  bool
}

// Params returns the current params with defaults applied.
func (q *Query) Params() Params {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.params
}

// Key returns the current cache key; empty for inactive queries.
func (q *Query) Key() string {
	return q.current().Key()
}

// Update switches the query to p. A different key starts over from the
// initial size; pages fetched under other params are never mixed in.
func (q *Query) Update(p Params) error {
	key, pair, p, err := ResolveKey(q.engine.urls, p)
	if err != nil {
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	old := q.handle
	q.params = p
	q.pair = pair
	if old != nil && old.Key() == key {
		q.notifyLocked()
		q.mu.Unlock()
		return nil
	}

	h := q.engine.cache.Subscribe(key, q.engine.fetchPage, q.engine.options(p))
	q.handle = h
	q.notifyLocked()
	q.mu.Unlock()

	if old != nil {
		old.Close()
	}
	go q.forward(h)

	q.engine.logger.Debug("query opened",
		zap.String("key", key),
		zap.String("pair", pair.String()),
		zap.Bool("active", h.Active()),
	)
	return nil
}

// Result returns the current result.
func (q *Query) Result() Result {
	q.mu.Lock()
	h := q.handle
	poolID := q.params.PoolID
	pair := q.pair
	q.mu.Unlock()

	st := h.State()
	data := st.Items()

	res := Result{
		Key:           st.Key,
		Pair:          pair,
		Data:          data,
		FormattedData: projection.FormatAll(data),
		Size:          st.Size,
		Phase:         st.Phase,
		IsValidating:  st.IsValidating,
		IsLoading:     st.IsLoading,
		Error:         st.Err,
		ErrPage:       st.ErrPage,
		Pages:         len(st.Pages),
	}
	res.IsLoadEnded = !res.IsLoading && (len(data) == 0 || res.Error != nil)
	for _, p := range st.Pages {
		if p.FetchedAt.After(res.UpdatedAt) {
			res.UpdatedAt = p.FetchedAt
		}
	}

	if sel := projection.SelectByID(data, poolID); sel != nil {
		res.SelectedPool = sel
		f := projection.Format(*sel)
		res.FormattedSelectedPool = &f
	}
	return res
}

// LoadMore requests one more page.
func (q *Query) LoadMore() {
	q.current().LoadMore()
}

// SetSize requests pages 0..n-1.
func (q *Query) SetSize(n int) {
	q.current().SetSize(n)
}

// Mutate replaces the cached pages of the key and optionally revalidates them.
func (q *Query) Mutate(update func([]infinite.Page[domain.NormalizedPool]) []infinite.Page[domain.NormalizedPool], revalidate bool) {
	q.current().Mutate(update, revalidate)
}

// Revalidate re-requests pages outside the dedup window.
func (q *Query) Revalidate() {
	q.current().Revalidate()
}

// Focus signals that the consumer regained focus.
func (q *Query) Focus() {
	q.current().Focus()
}

// Updates signals result changes. Closed by Close.
func (q *Query) Updates() <-chan struct{} {
	return q.updates
}

// Close detaches the query. No update is delivered after Close returns.
func (q *Query) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	h := q.handle
	close(q.updates)
	q.mu.Unlock()

	if h != nil {
		h.Close()
	}
}

func (q *Query) current() *infinite.Handle[domain.NormalizedPool] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.handle
}

// forward relays updates of h while it is the current handle.
func (q *Query) forward(h *infinite.Handle[domain.NormalizedPool]) {
	for range h.Updates() {
		q.mu.Lock()
		if q.closed || q.handle != h {
			q.mu.Unlock()
			return
		}
		q.notifyLocked()
		q.mu.Unlock()
	}
}

func (q *Query) notifyLocked() {
	select {
	case q.updates <- struct{}{}:
	default:
	}
}
