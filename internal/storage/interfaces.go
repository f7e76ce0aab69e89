// Package storage defines the snapshot persistence contracts shared by the
// memory, PostgreSQL and ClickHouse backends.
package storage

import (
	"context"

	"gravex-pools/internal/domain"
)

// PoolSnapshotStore provides access to pool_snapshots storage.
type PoolSnapshotStore interface {
	// InsertBulk adds multiple snapshots atomically. Fails entire batch on
	// duplicate (query_hash, pool_id, captured_at).
	InsertBulk(ctx context.Context, snapshots []*domain.PoolSnapshot) error

	// GetLatestByPool returns the most recent snapshot of a pool. Returns ErrNotFound if none.
	GetLatestByPool(ctx context.Context, poolID string) (*domain.PoolSnapshot, error)

	// GetByPoolTimeRange retrieves snapshots of a pool captured within
	// [start, end] (inclusive), ordered by captured_at ASC.
	GetByPoolTimeRange(ctx context.Context, poolID string, start, end int64) ([]*domain.PoolSnapshot, error)
}

// TrackedQueryStore provides access to tracked_queries storage.
type TrackedQueryStore interface {
	// Insert adds a tracked query. Returns ErrDuplicateKey if query_hash exists.
	Insert(ctx context.Context, q *domain.TrackedQuery) error

	// GetByHash retrieves a tracked query. Returns ErrNotFound if not exists.
	GetByHash(ctx context.Context, queryHash string) (*domain.TrackedQuery, error)

	// List returns all tracked queries ordered by created_at ASC.
	List(ctx context.Context) ([]*domain.TrackedQuery, error)
}
