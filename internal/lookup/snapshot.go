// Package lookup answers point-in-time questions over stored pool snapshots.
package lookup

import (
	"errors"

	"gravex-pools/internal/domain"
)

// ErrNoSnapshots is returned for an empty series.
var ErrNoSnapshots = errors.New("no snapshot data available")

// SnapshotAt returns the closest snapshot at or before target (ms).
// snaps must be ordered by CapturedAt ASC.
// Returns (nil, nil) if every snapshot is after target (valid case).
func SnapshotAt(target int64, snaps []*domain.PoolSnapshot) (*domain.PoolSnapshot, error) {
	if len(snaps) == 0 {
		return nil, ErrNoSnapshots
	}

	for i := len(snaps) - 1; i >= 0; i-- {
		if snaps[i].CapturedAt <= target {
			return snaps[i], nil
		}
	}
	return nil, nil
}

// Change compares two points of a pool series.
type Change struct {
	From *domain.PoolSnapshot
	To   *domain.PoolSnapshot

	TVLDelta    float64
	TVLPct      float64 // 0 when From.TVL is 0
	PriceDelta  float64
	Apr24hDelta float64
}

// ChangeBetween compares the snapshots at or before from and to.
// A from before the first snapshot uses the first snapshot.
func ChangeBetween(from, to int64, snaps []*domain.PoolSnapshot) (*Change, error) {
	start, err := SnapshotAt(from, snaps)
	if err != nil {
		return nil, err
	}
	if start == nil {
		start = snaps[0]
	}
	end, _ := SnapshotAt(to, snaps)
	if end == nil {
		end = snaps[0]
	}

	c := &Change{
		From:        start,
		To:          end,
		TVLDelta:    end.TVL - start.TVL,
		PriceDelta:  end.Price - start.Price,
		Apr24hDelta: end.Apr24h - start.Apr24h,
	}
	if start.TVL != 0 {
		c.TVLPct = c.TVLDelta / start.TVL * 100
	}
	return c, nil
}
