package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
)

// TrackedQueryStore implements storage.TrackedQueryStore using PostgreSQL.
type TrackedQueryStore struct {
	pool *Pool
}

// NewTrackedQueryStore creates a new TrackedQueryStore.
func NewTrackedQueryStore(pool *Pool) *TrackedQueryStore {
	return &TrackedQueryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TrackedQueryStore = (*TrackedQueryStore)(nil)

// Insert adds a tracked query. Returns ErrDuplicateKey if query_hash exists.
func (s *TrackedQueryStore) Insert(ctx context.Context, q *domain.TrackedQuery) error {
	if q == nil || q.QueryHash == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tracked_queries (
			query_hash, key, base_mint, quote_mint, pool_type, sort_field, sort_order, page_size, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		q.QueryHash,
		q.Key,
		q.BaseMint,
		q.QuoteMint,
		q.PoolType,
		q.SortField,
		q.SortOrder,
		q.PageSize,
		q.CreatedAt,
	)
	observe("insert_tracked_query", start, err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert tracked query: %w", err)
	}
	return nil
}

// GetByHash retrieves a tracked query by hash.
func (s *TrackedQueryStore) GetByHash(ctx context.Context, queryHash string) (*domain.TrackedQuery, error) {
	query := `
		SELECT query_hash, key, base_mint, quote_mint, pool_type, sort_field, sort_order, page_size, created_at
		FROM tracked_queries
		WHERE query_hash = $1
	`

	q, err := scanTrackedQuery(s.pool.QueryRow(ctx, query, queryHash))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get tracked query: %w", err)
	}
	return q, nil
}

// List returns all tracked queries ordered by created_at ASC.
func (s *TrackedQueryStore) List(ctx context.Context) ([]*domain.TrackedQuery, error) {
	query := `
		SELECT query_hash, key, base_mint, quote_mint, pool_type, sort_field, sort_order, page_size, created_at
		FROM tracked_queries
		ORDER BY created_at ASC, query_hash ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tracked queries: %w", err)
	}
	defer rows.Close()

	var out []*domain.TrackedQuery
	for rows.Next() {
		q, err := scanTrackedQuery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracked query row: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracked query rows: %w", err)
	}
	return out, nil
}

func scanTrackedQuery(row pgx.Row) (*domain.TrackedQuery, error) {
	var q domain.TrackedQuery
	err := row.Scan(
		&q.QueryHash,
		&q.Key,
		&q.BaseMint,
		&q.QuoteMint,
		&q.PoolType,
		&q.SortField,
		&q.SortOrder,
		&q.PageSize,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
