package lookup

import (
	"testing"

	"gravex-pools/internal/domain"
)

func series() []*domain.PoolSnapshot {
	return []*domain.PoolSnapshot{
		{PoolID: "p", CapturedAt: 1000, TVL: 100, Price: 1.0, Apr24h: 10},
		{PoolID: "p", CapturedAt: 2000, TVL: 150, Price: 1.5, Apr24h: 12},
		{PoolID: "p", CapturedAt: 3000, TVL: 200, Price: 2.0, Apr24h: 9},
	}
}

func TestSnapshotAt_EmptySlice(t *testing.T) {
	_, err := SnapshotAt(1000, nil)
	if err != ErrNoSnapshots {
		t.Errorf("expected ErrNoSnapshots, got %v", err)
	}
}

func TestSnapshotAt_ExactMatch(t *testing.T) {
	s, err := SnapshotAt(2000, series())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil || s.TVL != 150 {
		t.Errorf("expected tvl 150, got %+v", s)
	}
}

func TestSnapshotAt_BetweenPoints(t *testing.T) {
	s, err := SnapshotAt(2500, series())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil || s.CapturedAt != 2000 {
		t.Errorf("expected snapshot at 2000, got %+v", s)
	}
}

func TestSnapshotAt_BeforeFirst(t *testing.T) {
	s, err := SnapshotAt(500, series())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil, got %+v", s)
	}
}

func TestChangeBetween(t *testing.T) {
	c, err := ChangeBetween(500, 5000, series())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.From.CapturedAt != 1000 || c.To.CapturedAt != 3000 {
		t.Errorf("unexpected endpoints: %d -> %d", c.From.CapturedAt, c.To.CapturedAt)
	}
	if c.TVLDelta != 100 {
		t.Errorf("expected tvl delta 100, got %f", c.TVLDelta)
	}
	if c.TVLPct != 100 {
		t.Errorf("expected tvl pct 100, got %f", c.TVLPct)
	}
	if c.Apr24hDelta != -1 {
		t.Errorf("expected apr delta -1, got %f", c.Apr24hDelta)
	}

	if _, err := ChangeBetween(0, 1, nil); err != ErrNoSnapshots {
		t.Errorf("expected ErrNoSnapshots, got %v", err)
	}
}
