package postgres_test

import (
	"context"
	"errors"
	"testing"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
	"gravex-pools/internal/storage/postgres"
)

func snapshot(queryHash, poolID string, capturedAt int64, tvl float64) *domain.PoolSnapshot {
	return &domain.PoolSnapshot{
		QueryHash:  queryHash,
		PoolID:     poolID,
		MintA:      "So11111111111111111111111111111111111111112",
		MintB:      "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		TVL:        tvl,
		Price:      142.5,
		Volume24h:  250000,
		Apr24h:     30.75,
		Apr7d:      17,
		Apr30d:     12.5,
		CapturedAt: capturedAt,
	}
}

func TestPoolSnapshotStore_InsertAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPoolSnapshotStore(pool)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PoolSnapshot{
		snapshot("q1", "pool-a", 1000, 1e6),
		snapshot("q1", "pool-a", 2000, 2e6),
		snapshot("q1", "pool-b", 1500, 5e5),
	})
	if err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	latest, err := store.GetLatestByPool(ctx, "pool-a")
	if err != nil {
		t.Fatalf("GetLatestByPool: %v", err)
	}
	if latest.CapturedAt != 2000 {
		t.Errorf("expected captured_at 2000, got %d", latest.CapturedAt)
	}
	if latest.TVL != 2e6 {
		t.Errorf("expected tvl 2e6, got %f", latest.TVL)
	}
	if latest.Apr24h != 30.75 {
		t.Errorf("expected apr_24h 30.75, got %f", latest.Apr24h)
	}
}

func TestPoolSnapshotStore_GetLatestNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPoolSnapshotStore(pool)

	_, err := store.GetLatestByPool(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPoolSnapshotStore_DuplicateFailsBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPoolSnapshotStore(pool)
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PoolSnapshot{snapshot("q1", "pool-a", 1000, 1)}); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.PoolSnapshot{
		snapshot("q1", "pool-a", 3000, 1),
		snapshot("q1", "pool-a", 1000, 1),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// The whole batch rolled back.
	snaps, err := store.GetByPoolTimeRange(ctx, "pool-a", 0, 10000)
	if err != nil {
		t.Fatalf("GetByPoolTimeRange: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("expected 1 snapshot after rollback, got %d", len(snaps))
	}
}

func TestPoolSnapshotStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPoolSnapshotStore(pool)

	err := store.InsertBulk(context.Background(), []*domain.PoolSnapshot{snapshot("q1", "", 1000, 1)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPoolSnapshotStore_GetByPoolTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPoolSnapshotStore(pool)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PoolSnapshot{
		snapshot("q1", "pool-a", 3000, 3),
		snapshot("q1", "pool-a", 1000, 1),
		snapshot("q2", "pool-a", 2000, 2),
		snapshot("q1", "pool-a", 5000, 5),
		snapshot("q1", "pool-b", 2000, 9),
	})
	if err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	snaps, err := store.GetByPoolTimeRange(ctx, "pool-a", 1000, 3000)
	if err != nil {
		t.Fatalf("GetByPoolTimeRange: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	for i, want := range []int64{1000, 2000, 3000} {
		if snaps[i].CapturedAt != want {
			t.Errorf("snapshot %d: expected captured_at %d, got %d", i, want, snaps[i].CapturedAt)
		}
	}
}
