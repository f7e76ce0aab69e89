package clickhouse

import (
	"context"
	"fmt"
	"time"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
)

// PoolSnapshotStore implements storage.PoolSnapshotStore using ClickHouse.
type PoolSnapshotStore struct {
	conn *Conn
}

// NewPoolSnapshotStore creates a new PoolSnapshotStore.
func NewPoolSnapshotStore(conn *Conn) *PoolSnapshotStore {
	return &PoolSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PoolSnapshotStore = (*PoolSnapshotStore)(nil)

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate
// (query_hash, pool_id, captured_at); MergeTree does not enforce it, so
// duplicates are checked before the batch is sent.
func (s *PoolSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PoolSnapshot) (err error) {
	if len(snapshots) == 0 {
		return nil
	}

	type key struct {
		queryHash  string
		poolID     string
		capturedAt int64
	}
	seen := make(map[key]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.QueryHash == "" || snap.PoolID == "" {
			return storage.ErrInvalidInput
		}
		k := key{snap.QueryHash, snap.PoolID, snap.CapturedAt}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	start := time.Now()
	defer func() { observe("insert_snapshots", start, err) }()

	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.QueryHash, snap.PoolID, snap.CapturedAt)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pool_snapshots (
			query_hash, pool_id, mint_a, mint_b, tvl, price, volume_24h, apr_24h, apr_7d, apr_30d, captured_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.QueryHash, snap.PoolID, snap.MintA, snap.MintB,
			snap.TVL, snap.Price, snap.Volume24h,
			snap.Apr24h, snap.Apr7d, snap.Apr30d,
			uint64(snap.CapturedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetLatestByPool returns the most recent snapshot of a pool.
func (s *PoolSnapshotStore) GetLatestByPool(ctx context.Context, poolID string) (*domain.PoolSnapshot, error) {
	query := `
		SELECT query_hash, pool_id, mint_a, mint_b, tvl, price, volume_24h, apr_24h, apr_7d, apr_30d, captured_at
		FROM pool_snapshots
		WHERE pool_id = ?
		ORDER BY captured_at DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	return snaps[0], nil
}

// GetByPoolTimeRange retrieves snapshots of a pool within [start, end] (inclusive).
func (s *PoolSnapshotStore) GetByPoolTimeRange(ctx context.Context, poolID string, start, end int64) ([]*domain.PoolSnapshot, error) {
	query := `
		SELECT query_hash, pool_id, mint_a, mint_b, tvl, price, volume_24h, apr_24h, apr_7d, apr_30d, captured_at
		FROM pool_snapshots
		WHERE pool_id = ? AND captured_at >= ? AND captured_at <= ?
		ORDER BY captured_at ASC, query_hash ASC
	`

	began := time.Now()
	rows, err := s.conn.Query(ctx, query, poolID, uint64(start), uint64(end))
	if err != nil {
		observe("get_snapshots_by_range", began, err)
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	snaps, err := scanSnapshots(rows)
	observe("get_snapshots_by_range", began, err)
	return snaps, err
}

// exists checks if a snapshot with the given key exists.
func (s *PoolSnapshotStore) exists(ctx context.Context, queryHash, poolID string, capturedAt int64) (bool, error) {
	query := `
		SELECT count(*) FROM pool_snapshots
		WHERE query_hash = ? AND pool_id = ? AND captured_at = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, queryHash, poolID, uint64(capturedAt)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows chRows) ([]*domain.PoolSnapshot, error) {
	var snaps []*domain.PoolSnapshot

	for rows.Next() {
		var snap domain.PoolSnapshot
		var capturedAt uint64

		err := rows.Scan(
			&snap.QueryHash, &snap.PoolID, &snap.MintA, &snap.MintB,
			&snap.TVL, &snap.Price, &snap.Volume24h,
			&snap.Apr24h, &snap.Apr7d, &snap.Apr30d,
			&capturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pool snapshot row: %w", err)
		}

		snap.CapturedAt = int64(capturedAt)
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool snapshot rows: %w", err)
	}

	return snaps, nil
}
