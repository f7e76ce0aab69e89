// Package app wires configuration into the engine and snapshot stores shared
// by the commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gravex-pools/internal/config"
	"gravex-pools/internal/poolapi"
	"gravex-pools/internal/poolquery"
	"gravex-pools/internal/storage"
	chstore "gravex-pools/internal/storage/clickhouse"
	"gravex-pools/internal/storage/memory"
	"gravex-pools/internal/storage/migrations"
	pgstore "gravex-pools/internal/storage/postgres"
)

// Stores holds the snapshot stores selected by config.
// Both are nil when snapshots are disabled.
type Stores struct {
	Snapshots storage.PoolSnapshotStore
	Queries   storage.TrackedQueryStore
}

// Enabled reports whether snapshots are recorded.
func (s *Stores) Enabled() bool {
	return s != nil && s.Snapshots != nil
}

// NewEngine creates a pool query engine for cfg.
func NewEngine(cfg config.Config, logger *zap.Logger) *poolquery.Engine {
	client := poolapi.NewClient(
		poolapi.WithTimeout(cfg.Timeout),
		poolapi.WithMaxRetries(cfg.MaxRetries),
		poolapi.WithRetryDelay(cfg.RetryDelay),
		poolapi.WithLogger(logger.Named("poolapi")),
		poolapi.WithErrorReporter(func(url string, err error) {
			logger.Warn("pool api request failed", zap.String("url", url), zap.Error(err))
		}),
	)
	return poolquery.NewEngine(client,
		poolquery.WithURLConfig(cfg.URLConfig()),
		poolquery.WithLogger(logger.Named("poolquery")),
	)
}

// OpenStores connects the configured backend and applies its migrations.
// The returned cleanup closes every connection.
func OpenStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, func(), error) {
	switch cfg.Store {
	case config.StoreNone, "":
		return &Stores{}, func() {}, nil

	case config.StoreMemory:
		return &Stores{
			Snapshots: memory.NewPoolSnapshotStore(),
			Queries:   memory.NewTrackedQueryStore(),
		}, func() {}, nil

	case config.StorePostgres:
		pool, err := openPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("snapshot store ready", zap.String("store", cfg.Store))
		return &Stores{
			Snapshots: pgstore.NewPoolSnapshotStore(pool),
			Queries:   pgstore.NewTrackedQueryStore(pool),
		}, pool.Close, nil

	case config.StoreClickHouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		stores := &Stores{Snapshots: chstore.NewPoolSnapshotStore(conn)}
		cleanup := func() { conn.Close() }

		// ClickHouse only keeps the time series; tracked queries go to
		// Postgres when configured.
		if cfg.PostgresDSN == "" {
			stores.Queries = memory.NewTrackedQueryStore()
		} else {
			pool, err := openPostgres(ctx, cfg.PostgresDSN)
			if err != nil {
				conn.Close()
				return nil, nil, err
			}
			stores.Queries = pgstore.NewTrackedQueryStore(pool)
			cleanup = func() {
				conn.Close()
				pool.Close()
			}
		}
		logger.Info("snapshot store ready", zap.String("store", cfg.Store))
		return stores, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func openPostgres(ctx context.Context, dsn string) (*pgstore.Pool, error) {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}
	return pool, nil
}
