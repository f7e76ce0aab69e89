package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
)

// PoolSnapshotStore implements storage.PoolSnapshotStore using PostgreSQL.
type PoolSnapshotStore struct {
	pool *Pool
}

// NewPoolSnapshotStore creates a new PoolSnapshotStore.
func NewPoolSnapshotStore(pool *Pool) *PoolSnapshotStore {
	return &PoolSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolSnapshotStore = (*PoolSnapshotStore)(nil)

const insertSnapshotSQL = `
	INSERT INTO pool_snapshots (
		query_hash, pool_id, mint_a, mint_b, tvl, price, volume_24h, apr_24h, apr_7d, apr_30d, captured_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const selectSnapshotColumns = `
	SELECT query_hash, pool_id, mint_a, mint_b, tvl, price, volume_24h, apr_24h, apr_7d, apr_30d, captured_at
	FROM pool_snapshots
`

// InsertBulk adds multiple snapshots in one transaction. Fails entire batch on any duplicate.
func (s *PoolSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.PoolSnapshot) (err error) {
	if len(snapshots) == 0 {
		return nil
	}
	for _, snap := range snapshots {
		if snap == nil || snap.QueryHash == "" || snap.PoolID == "" {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() { observe("insert_snapshots", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(insertSnapshotSQL,
			snap.QueryHash,
			snap.PoolID,
			snap.MintA,
			snap.MintB,
			snap.TVL,
			snap.Price,
			snap.Volume24h,
			snap.Apr24h,
			snap.Apr7d,
			snap.Apr30d,
			snap.CapturedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range snapshots {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert snapshot in bulk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetLatestByPool returns the most recent snapshot of a pool.
func (s *PoolSnapshotStore) GetLatestByPool(ctx context.Context, poolID string) (*domain.PoolSnapshot, error) {
	query := selectSnapshotColumns + `
		WHERE pool_id = $1
		ORDER BY captured_at DESC, id DESC
		LIMIT 1
	`

	start := time.Now()
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query, poolID))
	if err != nil {
		if isNotFoundError(err) {
			observe("get_latest_snapshot", start, nil)
			return nil, storage.ErrNotFound
		}
		observe("get_latest_snapshot", start, err)
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	observe("get_latest_snapshot", start, nil)
	return snap, nil
}

// GetByPoolTimeRange retrieves snapshots of a pool within [start, end] (inclusive).
func (s *PoolSnapshotStore) GetByPoolTimeRange(ctx context.Context, poolID string, start, end int64) ([]*domain.PoolSnapshot, error) {
	query := selectSnapshotColumns + `
		WHERE pool_id = $1 AND captured_at >= $2 AND captured_at <= $3
		ORDER BY captured_at ASC, id ASC
	`

	began := time.Now()
	rows, err := s.pool.Query(ctx, query, poolID, start, end)
	if err != nil {
		observe("get_snapshots_by_range", began, err)
		return nil, fmt.Errorf("get snapshots by time range: %w", err)
	}
	defer rows.Close()

	snaps, err := scanSnapshots(rows)
	observe("get_snapshots_by_range", began, err)
	return snaps, err
}

func scanSnapshot(row pgx.Row) (*domain.PoolSnapshot, error) {
	var snap domain.PoolSnapshot
	err := row.Scan(
		&snap.QueryHash,
		&snap.PoolID,
		&snap.MintA,
		&snap.MintB,
		&snap.TVL,
		&snap.Price,
		&snap.Volume24h,
		&snap.Apr24h,
		&snap.Apr7d,
		&snap.Apr30d,
		&snap.CapturedAt,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// scanSnapshots scans multiple rows into a slice of PoolSnapshot.
func scanSnapshots(rows pgx.Rows) ([]*domain.PoolSnapshot, error) {
	var snaps []*domain.PoolSnapshot

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snaps, nil
}
