package memory

import (
	"context"
	"sort"
	"sync"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
)

// TrackedQueryStore is an in-memory implementation of storage.TrackedQueryStore.
type TrackedQueryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TrackedQuery
}

// NewTrackedQueryStore creates a new in-memory tracked query store.
func NewTrackedQueryStore() *TrackedQueryStore {
	return &TrackedQueryStore{
		data: make(map[string]*domain.TrackedQuery),
	}
}

// Insert adds a tracked query. Returns ErrDuplicateKey if query_hash exists.
func (s *TrackedQueryStore) Insert(_ context.Context, q *domain.TrackedQuery) error {
	if q == nil || q.QueryHash == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[q.QueryHash]; exists {
		return storage.ErrDuplicateKey
	}

	qCopy := *q
	s.data[q.QueryHash] = &qCopy
	return nil
}

// GetByHash retrieves a tracked query by hash.
func (s *TrackedQueryStore) GetByHash(_ context.Context, queryHash string) (*domain.TrackedQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.data[queryHash]
	if !ok {
		return nil, storage.ErrNotFound
	}

	qCopy := *q
	return &qCopy, nil
}

// List returns all tracked queries ordered by created_at ASC.
func (s *TrackedQueryStore) List(_ context.Context) ([]*domain.TrackedQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TrackedQuery, 0, len(s.data))
	for _, q := range s.data {
		qCopy := *q
		result = append(result, &qCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].QueryHash < result[j].QueryHash
	})

	return result, nil
}

var _ storage.TrackedQueryStore = (*TrackedQueryStore)(nil)
