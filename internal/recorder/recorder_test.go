package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/idhash"
	"gravex-pools/internal/mint"
	"gravex-pools/internal/poolquery"
	"gravex-pools/internal/storage"
	"gravex-pools/internal/storage/memory"
)

const testKey = "https://api-v3.raydium.io/pools/info/mint?mint1=A&mint2=B&poolType=all&poolSortField=default&sortType=desc&pageSize=100"

type fakeSource struct {
	mu      sync.Mutex
	res     poolquery.Result
	updates chan struct{}
}

func newFakeSource(res poolquery.Result) *fakeSource {
	return &fakeSource{res: res, updates: make(chan struct{}, 1)}
}

func (s *fakeSource) Params() poolquery.Params { return poolquery.DefaultParams() }

func (s *fakeSource) Result() poolquery.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res
}

func (s *fakeSource) Updates() <-chan struct{} { return s.updates }

func (s *fakeSource) set(res poolquery.Result) {
	s.mu.Lock()
	s.res = res
	s.mu.Unlock()
	s.updates <- struct{}{}
}

func pool(id string, tvl, dayApr float64) domain.NormalizedPool {
	return domain.NormalizedPool{
		Record: domain.PoolRecord{
			ID:    id,
			MintA: domain.MintInfo{Address: "A"},
			MintB: domain.MintInfo{Address: "B"},
			TVL:   tvl,
			Price: 2,
			Day:   domain.PeriodStats{Volume: 100},
		},
		TotalApr: domain.AprWindows{Day: dayApr, Week: 5, Month: 4},
	}
}

func loaded(at time.Time, pools ...domain.NormalizedPool) poolquery.Result {
	return poolquery.Result{
		Key:       testKey,
		Pair:      mint.Pair{Base: "A", Quote: "B"},
		Data:      pools,
		UpdatedAt: at,
	}
}

func TestRecord_OneSnapshotPerPool(t *testing.T) {
	snaps := memory.NewPoolSnapshotStore()
	queries := memory.NewTrackedQueryStore()
	rec := New(Options{SnapshotStore: snaps, TrackedQueryStore: queries})
	ctx := context.Background()

	at := time.UnixMilli(1_700_000_000_000)
	src := newFakeSource(loaded(at, pool("p1", 10, 7), pool("p2", 20, 8), pool("p1", 99, 99)))

	n, err := rec.Record(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := snaps.GetLatestByPool(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, idhash.QueryHash(testKey), got.QueryHash)
	assert.Equal(t, 10.0, got.TVL)
	assert.Equal(t, 7.0, got.Apr24h)
	assert.Equal(t, 5.0, got.Apr7d)
	assert.Equal(t, 100.0, got.Volume24h)
	assert.Equal(t, at.UnixMilli(), got.CapturedAt)

	tq, err := queries.GetByHash(ctx, idhash.QueryHash(testKey))
	require.NoError(t, err)
	assert.Equal(t, "A", tq.BaseMint)
	assert.Equal(t, "all", tq.PoolType)
	assert.Equal(t, 100, tq.PageSize)

	// Same refresh again is skipped.
	n, err = rec.Record(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecord_SkipsUnsettledResults(t *testing.T) {
	snaps := memory.NewPoolSnapshotStore()
	rec := New(Options{SnapshotStore: snaps})
	ctx := context.Background()
	at := time.UnixMilli(1000)

	cases := map[string]poolquery.Result{
		"inactive":   {Data: []domain.NormalizedPool{pool("p1", 1, 1)}, UpdatedAt: at},
		"validating": func() poolquery.Result { r := loaded(at, pool("p1", 1, 1)); r.IsValidating = true; return r }(),
		"errored":    func() poolquery.Result { r := loaded(at, pool("p1", 1, 1)); r.Error = errors.New("boom"); return r }(),
		"empty":      loaded(at),
		"refresh failed": func() poolquery.Result {
			r := loaded(at, pool("p1", 1, 1))
			r.Error, r.ErrPage, r.Pages = errors.New("boom"), 0, 1
			return r
		}(),
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := rec.Record(ctx, newFakeSource(res))
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}

	_, err := snaps.GetLatestByPool(ctx, "p1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestRecord_NextPageFailureKeepsRecording(t *testing.T) {
	snaps := memory.NewPoolSnapshotStore()
	rec := New(Options{SnapshotStore: snaps})
	ctx := context.Background()

	failing := func(at time.Time, tvl float64) poolquery.Result {
		r := loaded(at, pool("p1", tvl, 1))
		r.Error, r.ErrPage, r.Pages = errors.New("boom"), 1, 1
		return r
	}

	n, err := rec.Record(ctx, newFakeSource(failing(time.UnixMilli(1000), 10)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = rec.Record(ctx, newFakeSource(failing(time.UnixMilli(2000), 20)))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "refreshed pages are recorded while the next page keeps failing")

	latest, err := snaps.GetLatestByPool(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), latest.CapturedAt)
	assert.Equal(t, 20.0, latest.TVL)
}

func TestRecord_TrackedQueryAlreadyStored(t *testing.T) {
	snaps := memory.NewPoolSnapshotStore()
	queries := memory.NewTrackedQueryStore()
	ctx := context.Background()
	require.NoError(t, queries.Insert(ctx, &domain.TrackedQuery{QueryHash: idhash.QueryHash(testKey), CreatedAt: 1}))

	rec := New(Options{SnapshotStore: snaps, TrackedQueryStore: queries})
	n, err := rec.Record(ctx, newFakeSource(loaded(time.UnixMilli(5000), pool("p1", 1, 1))))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_RecordsEachRefresh(t *testing.T) {
	snaps := memory.NewPoolSnapshotStore()
	rec := New(Options{SnapshotStore: snaps})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource(loaded(time.UnixMilli(1000), pool("p1", 1, 1)))
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx, src) }()

	require.Eventually(t, func() bool {
		_, err := snaps.GetLatestByPool(context.Background(), "p1")
		return err == nil
	}, time.Second, 10*time.Millisecond)

	src.set(loaded(time.UnixMilli(2000), pool("p1", 2, 1)))

	require.Eventually(t, func() bool {
		got, err := snaps.GetByPoolTimeRange(context.Background(), "p1", 0, 10_000)
		return err == nil && len(got) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReturnsWhenSourceCloses(t *testing.T) {
	rec := New(Options{SnapshotStore: memory.NewPoolSnapshotStore()})
	src := newFakeSource(poolquery.Result{})
	close(src.updates)

	assert.NoError(t, rec.Run(context.Background(), src))
}
