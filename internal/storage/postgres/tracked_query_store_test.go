package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/storage"
	"gravex-pools/internal/storage/postgres"
)

func TestTrackedQueryStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTrackedQueryStore(pool)
	ctx := context.Background()

	first := &domain.TrackedQuery{
		QueryHash: "hash-b",
		Key:       "https://api-v3.raydium.io/pools/info/mint?mint1=A&mint2=B",
		BaseMint:  "A",
		QuoteMint: "B",
		PoolType:  "all",
		SortField: "default",
		SortOrder: "desc",
		PageSize:  100,
		CreatedAt: 1000,
	}
	second := &domain.TrackedQuery{
		QueryHash: "hash-a",
		Key:       "https://api-v3.raydium.io/pools/info/mint?mint1=A&mint2=",
		BaseMint:  "A",
		PoolType:  "concentratedFarm",
		SortField: "liquidity",
		SortOrder: "asc",
		PageSize:  50,
		CreatedAt: 2000,
	}

	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.Insert(ctx, second))

	err := store.Insert(ctx, first)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)

	got, err := store.GetByHash(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = store.GetByHash(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "hash-b", all[0].QueryHash)
	assert.Equal(t, "hash-a", all[1].QueryHash)

	assert.True(t, errors.Is(store.Insert(ctx, &domain.TrackedQuery{}), storage.ErrInvalidInput))
}
