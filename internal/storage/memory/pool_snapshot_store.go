package memory

import (
	"context"
	"sort"
	"sync"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/idhash"
	"gravex-pools/internal/storage"
)

// PoolSnapshotStore is an in-memory implementation of storage.PoolSnapshotStore.
type PoolSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PoolSnapshot // keyed by idhash.SnapshotKey
}

// NewPoolSnapshotStore creates a new in-memory pool snapshot store.
func NewPoolSnapshotStore() *PoolSnapshotStore {
	return &PoolSnapshotStore{
		data: make(map[string]*domain.PoolSnapshot),
	}
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate.
func (s *PoolSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.QueryHash == "" || snap.PoolID == "" {
			return storage.ErrInvalidInput
		}
		key := idhash.SnapshotKey(snap.QueryHash, snap.PoolID, snap.CapturedAt)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, snap := range snapshots {
		snapCopy := *snap
		s.data[idhash.SnapshotKey(snap.QueryHash, snap.PoolID, snap.CapturedAt)] = &snapCopy
	}

	return nil
}

// GetLatestByPool returns the most recent snapshot of a pool.
func (s *PoolSnapshotStore) GetLatestByPool(_ context.Context, poolID string) (*domain.PoolSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.PoolSnapshot
	for _, snap := range s.data {
		if snap.PoolID != poolID {
			continue
		}
		if latest == nil || snap.CapturedAt > latest.CapturedAt {
			latest = snap
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	snapCopy := *latest
	return &snapCopy, nil
}

// GetByPoolTimeRange retrieves snapshots of a pool within [start, end] (inclusive).
func (s *PoolSnapshotStore) GetByPoolTimeRange(_ context.Context, poolID string, start, end int64) ([]*domain.PoolSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PoolSnapshot
	for _, snap := range s.data {
		if snap.PoolID == poolID && snap.CapturedAt >= start && snap.CapturedAt <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CapturedAt != result[j].CapturedAt {
			return result[i].CapturedAt < result[j].CapturedAt
		}
		return result[i].QueryHash < result[j].QueryHash
	})

	return result, nil
}

var _ storage.PoolSnapshotStore = (*PoolSnapshotStore)(nil)
