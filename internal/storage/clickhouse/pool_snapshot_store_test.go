package clickhouse_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
	"gravex-pools/internal/storage/clickhouse"
	"gravex-pools/internal/storage/migrations"
)

// setupTestDB starts a ClickHouse container and applies the embedded migrations.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*clickhouse.Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/pools_test", host, port.Port())

	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

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

func TestPoolSnapshotStore_InsertAndQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewPoolSnapshotStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PoolSnapshot{
		snapshot("q1", "pool-a", 3000, 3),
		snapshot("q1", "pool-a", 1000, 1),
		snapshot("q2", "pool-a", 2000, 2),
		snapshot("q1", "pool-b", 2000, 9),
	})
	require.NoError(t, err)

	snaps, err := store.GetByPoolTimeRange(ctx, "pool-a", 1000, 2500)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(1000), snaps[0].CapturedAt)
	assert.Equal(t, "q2", snaps[1].QueryHash)

	latest, err := store.GetLatestByPool(ctx, "pool-a")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), latest.CapturedAt)
	assert.Equal(t, 30.75, latest.Apr24h)

	_, err = store.GetLatestByPool(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPoolSnapshotStore_Duplicates(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewPoolSnapshotStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.PoolSnapshot{snapshot("q1", "pool-a", 1000, 1)}))

	err := store.InsertBulk(ctx, []*domain.PoolSnapshot{
		snapshot("q1", "pool-a", 4000, 1),
		snapshot("q1", "pool-a", 1000, 1),
	})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "existing row: %v", err)

	err = store.InsertBulk(ctx, []*domain.PoolSnapshot{
		snapshot("q1", "pool-c", 1000, 1),
		snapshot("q1", "pool-c", 1000, 1),
	})
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "intra-batch: %v", err)

	snaps, err := store.GetByPoolTimeRange(ctx, "pool-a", 0, 10000)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}
