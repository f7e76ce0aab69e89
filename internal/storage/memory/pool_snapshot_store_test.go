package memory

import (
	"context"
	"errors"
	"testing"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
)

func TestPoolSnapshotStore_InsertBulkAndGet(t *testing.T) {
	store := NewPoolSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.PoolSnapshot{
		{QueryHash: "q1", PoolID: "p1", TVL: 100, CapturedAt: 2000},
		{QueryHash: "q1", PoolID: "p1", TVL: 90, CapturedAt: 1000},
		{QueryHash: "q1", PoolID: "p2", TVL: 5, CapturedAt: 1000},
	}

	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByPoolTimeRange(ctx, "p1", 0, 5000)
	if err != nil {
		t.Fatalf("GetByPoolTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(result))
	}
	if result[0].CapturedAt != 1000 || result[1].CapturedAt != 2000 {
		t.Errorf("Expected ascending capture order, got %d, %d", result[0].CapturedAt, result[1].CapturedAt)
	}

	latest, err := store.GetLatestByPool(ctx, "p1")
	if err != nil {
		t.Fatalf("GetLatestByPool failed: %v", err)
	}
	if latest.TVL != 100 {
		t.Errorf("Expected latest TVL 100, got %f", latest.TVL)
	}
}

func TestPoolSnapshotStore_TimeRangeInclusive(t *testing.T) {
	store := NewPoolSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.PoolSnapshot{
		{QueryHash: "q1", PoolID: "p1", CapturedAt: 1000},
		{QueryHash: "q1", PoolID: "p1", CapturedAt: 2000},
		{QueryHash: "q1", PoolID: "p1", CapturedAt: 3000},
	}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, _ := store.GetByPoolTimeRange(ctx, "p1", 1000, 2000)
	if len(result) != 2 {
		t.Errorf("Expected 2 snapshots in [1000, 2000], got %d", len(result))
	}
}

func TestPoolSnapshotStore_DuplicateKey(t *testing.T) {
	store := NewPoolSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.PoolSnapshot{{QueryHash: "q1", PoolID: "p1", CapturedAt: 1000}}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, snaps)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPoolSnapshotStore_IntraBatchDuplicateIsAtomic(t *testing.T) {
	store := NewPoolSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.PoolSnapshot{
		{QueryHash: "q1", PoolID: "p2", CapturedAt: 500},
		{QueryHash: "q1", PoolID: "p1", CapturedAt: 1000},
		{QueryHash: "q1", PoolID: "p1", CapturedAt: 1000},
	}
	err := store.InsertBulk(ctx, snaps)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	if _, err := store.GetLatestByPool(ctx, "p2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected nothing stored from failed batch, got %v", err)
	}
}

func TestPoolSnapshotStore_InvalidInput(t *testing.T) {
	store := NewPoolSnapshotStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PoolSnapshot{{PoolID: "p1"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	err = store.InsertBulk(ctx, []*domain.PoolSnapshot{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
}

func TestPoolSnapshotStore_ReturnsCopies(t *testing.T) {
	store := NewPoolSnapshotStore()
	ctx := context.Background()

	snap := &domain.PoolSnapshot{QueryHash: "q1", PoolID: "p1", TVL: 1, CapturedAt: 1000}
	if err := store.InsertBulk(ctx, []*domain.PoolSnapshot{snap}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	snap.TVL = 999

	got, _ := store.GetLatestByPool(ctx, "p1")
	got.TVL = 500

	again, _ := store.GetLatestByPool(ctx, "p1")
	if again.TVL != 1 {
		t.Errorf("Expected stored TVL 1, got %f", again.TVL)
	}
}
