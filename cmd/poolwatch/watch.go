package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gravex-pools/internal/app"
	"gravex-pools/internal/config"
	"gravex-pools/internal/domain"
	"gravex-pools/internal/observability"
	"gravex-pools/internal/poolquery"
	"gravex-pools/internal/recorder"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	params, err := cfg.QueryDefaults()
	if err != nil {
		return err
	}
	params.Mint1, _ = cmd.Flags().GetString("mint1")
	params.Mint2, _ = cmd.Flags().GetString("mint2")
	params.PoolID, _ = cmd.Flags().GetString("pool-id")
	if params.Mint1 == "" && params.Mint2 == "" {
		return fmt.Errorf("--mint1 or --mint2 is required")
	}
	pages, _ := cmd.Flags().GetInt("pages")
	once, _ := cmd.Flags().GetBool("once")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := app.NewEngine(cfg, logger)
	defer engine.Close()

	q, err := engine.Open(params)
	if err != nil {
		return err
	}
	defer q.Close()

	stores, cleanup, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if stores.Enabled() {
		rec := recorder.New(recorder.Options{
			SnapshotStore:     stores.Snapshots,
			TrackedQueryStore: stores.Queries,
			Logger:            logger.Named("recorder"),
		})
		go func() {
			if err := rec.Run(ctx, q); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("recorder stopped", zap.Error(err))
			}
		}()
	}

	if pages > 1 {
		q.SetSize(pages)
	}

	logger.Info("watching pools",
		zap.String("key", q.Key()),
		zap.Int("pages", pages),
		zap.String("store", cfg.Store),
	)

	return watch(ctx, q, os.Stdout, once)
}

// watch prints every settled result of q until ctx is done. With once it
// returns after the first one.
func watch(ctx context.Context, q *poolquery.Query, out io.Writer, once bool) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	type printed struct {
		at  int64
		err string
	}
	var last printed
	for {
		res := q.Result()
		cur := printed{at: res.UpdatedAt.UnixMilli()}
		if res.Error != nil {
			cur.err = res.Error.Error()
		}
		settled := !res.IsValidating && (res.Error != nil || !res.UpdatedAt.IsZero())
		if settled && cur != last {
			last = cur
			if err := enc.Encode(summarize(res)); err != nil {
				return err
			}
			if once {
				return res.Error
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-q.Updates():
			if !ok {
				return nil
			}
		}
	}
}

type summary struct {
	Key      string                 `json:"key"`
	Phase    string                 `json:"phase"`
	Pages    int                    `json:"pages"`
	Count    int                    `json:"count"`
	Error    string                 `json:"error,omitempty"`
	Selected *domain.FormattedPool  `json:"selected,omitempty"`
	Pools    []domain.FormattedPool `json:"pools"`
}

func summarize(res poolquery.Result) summary {
	s := summary{
		Key:      res.Key,
		Phase:    res.Phase.String(),
		Pages:    res.Size,
		Count:    len(res.FormattedData),
		Pools:    res.FormattedData,
		Selected: res.FormattedSelectedPool,
	}
	if res.Error != nil {
		s.Error = res.Error.Error()
	}
	return s
}
