package infinite

import (
	"sync"
	"time"
)

// Page is one resolved page of a collection.
type Page[T any] struct {
	Index     int
	Items []T
	// FetchedAt is when the request for the page started.
	FetchedAt time.Time
}

// Provider stores resolved pages by key. The cache owns in-flight and
// subscriber state; the provider only holds data.
type Provider[T any] interface {
	// Get returns the pages stored for key.
	Get(key string) ([]Page[T], bool)

	// Set replaces the pages stored for key.
	Set(key string, pages []Page[T])

	// Delete removes key.
	Delete(key string)

	// Len returns the number of stored keys.
	Len() int
}

// MemoryProvider is an in-memory implementation of Provider.
type MemoryProvider[T any] struct {
	mu   sync.RWMutex
	data map[string][]Page[T]
}

// NewMemoryProvider creates a new in-memory page provider.
func NewMemoryProvider[T any]() *MemoryProvider[T] {
	return &MemoryProvider[T]{
		data: make(map[string][]Page[T]),
	}
}

// Get returns a copy of the pages stored for key.
func (p *MemoryProvider[T]) Get(key string) ([]Page[T], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pages, ok := p.data[key]
	if !ok {
		return nil, false
	}
	return copyPages(pages), true
}

// Set stores a copy of pages under key.
func (p *MemoryProvider[T]) Set(key string, pages []Page[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data[key] = copyPages(pages)
}

// Delete removes key.
func (p *MemoryProvider[T]) Delete(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.data, key)
}

// Len returns the number of stored keys.
func (p *MemoryProvider[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.data)
}

func copyPages[T any](pages []Page[T]) []Page[T] {
	out := make([]Page[T], len(pages))
	for i, pg := range pages {
		out[i] = Page[T]{
			Index:     pg.Index,
			Items:     append([]T(nil), pg.Items...),
			FetchedAt: pg.FetchedAt,
		}
	}
	return out
}

var _ Provider[int] = (*MemoryProvider[int])(nil)
