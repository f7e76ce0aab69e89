// Package recorder persists refreshed pool query results as snapshots.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/idhash"
	"gravex-pools/internal/observability"
	"gravex-pools/internal/poolquery"
	"gravex-pools/internal/storage"
)

// Source is the part of poolquery.Query the recorder reads.
type Source interface {
	Params() poolquery.Params
	Result() poolquery.Result
	Updates() <-chan struct{}
}

// Options for creating Recorder.
type Options struct {
	// Required
	SnapshotStore storage.PoolSnapshotStore

	// Optional; queries are not registered when nil.
	TrackedQueryStore storage.TrackedQueryStore
	Logger            *zap.Logger
}

// Recorder writes one snapshot per pool each time a query finishes a refresh.
// A Recorder is not safe for concurrent use.
type Recorder struct {
	snapshots storage.PoolSnapshotStore
	queries   storage.TrackedQueryStore
	logger    *zap.Logger

	tracked      map[string]struct{}
	lastRecorded map[string]time.Time
}

// New creates a new Recorder.
func New(opts Options) *Recorder {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		snapshots:    opts.SnapshotStore,
		queries:      opts.TrackedQueryStore,
		logger:       logger,
		tracked:      make(map[string]struct{}),
		lastRecorded: make(map[string]time.Time),
	}
}

// Run records src until ctx is done or src is closed. Store failures are
// logged and do not stop recording.
func (r *Recorder) Run(ctx context.Context, src Source) error {
	if _, err := r.Record(ctx, src); err != nil {
		r.logger.Warn("record snapshots", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-src.Updates():
			if !ok {
				return nil
			}
			if _, err := r.Record(ctx, src); err != nil {
				r.logger.Warn("record snapshots", zap.Error(err))
			}
		}
	}
}

// Record stores the current result of src if it holds a refresh not yet
// recorded. Returns the number of snapshots written.
func (r *Recorder) Record(ctx context.Context, src Source) (int, error) {
	res := src.Result()
	if res.Key == "" || res.IsValidating || len(res.Data) == 0 || res.UpdatedAt.IsZero() {
		return 0, nil
	}
	// A failing next page leaves the resolved pages current; any other
	// failure means some of Data was not refreshed.
	if res.Error != nil && !res.TailFailed() {
		return 0, nil
	}

	queryHash := idhash.QueryHash(res.Key)
	if last, ok := r.lastRecorded[queryHash]; ok && !res.UpdatedAt.After(last) {
		return 0, nil
	}

	if err := r.track(ctx, queryHash, res, src.Params()); err != nil {
		return 0, err
	}

	snaps := Snapshots(queryHash, res.Data, res.UpdatedAt.UnixMilli())
	if err := r.snapshots.InsertBulk(ctx, snaps); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return 0, fmt.Errorf("insert snapshots: %w", err)
		}
		r.logger.Debug("snapshots already stored",
			zap.String("query_hash", queryHash),
			zap.Time("captured_at", res.UpdatedAt),
		)
		r.lastRecorded[queryHash] = res.UpdatedAt
		return 0, nil
	}
	r.lastRecorded[queryHash] = res.UpdatedAt

	observability.RecordSnapshotsStored(len(snaps))
	r.logger.Info("snapshots stored",
		zap.String("query_hash", queryHash),
		zap.Int("pools", len(snaps)),
		zap.Time("captured_at", res.UpdatedAt),
	)
	return len(snaps), nil
}

func (r *Recorder) track(ctx context.Context, queryHash string, res poolquery.Result, p poolquery.Params) error {
	if r.queries == nil {
		return nil
	}
	if _, ok := r.tracked[queryHash]; ok {
		return nil
	}

	err := r.queries.Insert(ctx, &domain.TrackedQuery{
		QueryHash: queryHash,
		Key:       res.Key,
		BaseMint:  res.Pair.Base,
		QuoteMint: res.Pair.Quote,
		PoolType:  p.Type.WireValue(p.ShowFarms),
		SortField: p.Sort,
		SortOrder: string(p.Order),
		PageSize:  p.PageSize,
		CreatedAt: res.UpdatedAt.UnixMilli(),
	})
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("track query: %w", err)
	}
	r.tracked[queryHash] = struct{}{}
	return nil
}

// Snapshots builds one snapshot per distinct pool id; the first occurrence wins.
func Snapshots(queryHash string, pools []domain.NormalizedPool, capturedAt int64) []*domain.PoolSnapshot {
	seen := make(map[string]struct{}, len(pools))
	out := make([]*domain.PoolSnapshot, 0, len(pools))
	for _, p := range pools {
		if _, dup := seen[p.ID()]; dup {
			continue
		}
		seen[p.ID()] = struct{}{}

		rec := p.Record
		out = append(out, &domain.PoolSnapshot{
			QueryHash:  queryHash,
			PoolID:     rec.ID,
			MintA:      rec.MintA.Address,
			MintB:      rec.MintB.Address,
			TVL:        rec.TVL,
			Price:      rec.Price,
			Volume24h:  rec.Day.Volume,
			Apr24h:     p.TotalApr.Day,
			Apr7d:      p.TotalApr.Week,
			Apr30d:     p.TotalApr.Month,
			CapturedAt: capturedAt,
		})
	}
	return out
}
