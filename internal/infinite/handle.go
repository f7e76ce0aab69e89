package infinite

import "sync/atomic"

// Handle is one subscriber's view of a shared collection. All handles of a
// key observe the same pages; Mutate through one is visible to all.
type Handle[T any] struct {
	key     string
	col     *collection[T]
	updates chan struct{}
	closed  atomic.Bool
}

// Key returns the subscribed key; empty for inert handles.
func (h *Handle[T]) Key() string {
	return h.key
}

// Active reports whether the handle is bound to a collection and open.
func (h *Handle[T]) Active() bool {
	return h.col != nil && !h.closed.Load()
}

// State returns the current collection state.
func (h *Handle[T]) State() State[T] {
	if !h.Active() {
		return idleState[T](h.key)
	}
	return h.col.state()
}

// Size returns the requested page count.
func (h *Handle[T]) Size() int {
	return h.State().Size
}

// SetSize requests pages 0..n-1. Pages already resolved or in flight are
// not requested again.
func (h *Handle[T]) SetSize(n int) {
	if h.Active() {
		h.col.setSize(n)
	}
}

// LoadMore requests one more page.
func (h *Handle[T]) LoadMore() {
	if h.Active() {
		h.col.loadMore()
	}
}

// Mutate replaces the pages with update(pages) when update is non-nil, then
// revalidates all loaded pages if revalidate is set. Blocks until the
// revalidation completes.
func (h *Handle[T]) Mutate(update func([]Page[T]) []Page[T], revalidate bool) {
	if h.Active() {
		h.col.mutate(update, revalidate)
	}
}

// Revalidate re-requests loaded pages outside the dedup window and blocks
// until done.
func (h *Handle[T]) Revalidate() {
	if h.Active() {
		h.col.revalidate(false, "manual")
	}
}

// Focus signals that the consumer regained focus. Throttled per key.
func (h *Handle[T]) Focus() {
	if h.Active() {
		h.col.focus()
	}
}

// Updates delivers a signal after every state change. The channel is closed
// when the handle is closed.
func (h *Handle[T]) Updates() <-chan struct{} {
	return h.updates
}

// Close detaches the handle. No update is delivered after Close returns.
func (h *Handle[T]) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	if h.col == nil {
		close(h.updates)
		return
	}
	h.col.detach(h)
}
