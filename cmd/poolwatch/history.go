package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gravex-pools/internal/app"
	"gravex-pools/internal/config"
	"gravex-pools/internal/lookup"
	"gravex-pools/internal/observability"
	"gravex-pools/internal/reporting"
	"gravex-pools/internal/storage"
)

func runHistory(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Store == config.StoreNone {
		return fmt.Errorf("--store is required")
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolID, _ := cmd.Flags().GetString("pool-id")
	if poolID == "" {
		return fmt.Errorf("--pool-id is required")
	}
	window, _ := cmd.Flags().GetDuration("window")
	format, _ := cmd.Flags().GetString("format")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	end := time.Now()
	from, to := end.Add(-window).UnixMilli(), end.UnixMilli()
	if format == "csv" {
		snaps, err := stores.Snapshots.GetByPoolTimeRange(ctx, poolID, from, to)
		if err != nil {
			return fmt.Errorf("load snapshots: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), reporting.RenderSnapshotsCSV(snaps))
		return nil
	}
	return printHistory(ctx, cmd.OutOrStdout(), stores.Snapshots, poolID, from, to)
}

// printHistory writes the snapshots of poolID in [from, to] and the change
// across the window.
func printHistory(ctx context.Context, out io.Writer, store storage.PoolSnapshotStore, poolID string, from, to int64) error {
	snaps, err := store.GetByPoolTimeRange(ctx, poolID, from, to)
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}

	change, err := lookup.ChangeBetween(from, to, snaps)
	if err != nil {
		return fmt.Errorf("pool %s: %w", poolID, err)
	}

	fmt.Fprintf(out, "%-24s %16s %16s %10s\n", "captured_at", "tvl", "price", "apr_24h")
	for _, s := range snaps {
		fmt.Fprintf(out, "%-24s %16.2f %16.6f %10.2f\n",
			time.UnixMilli(s.CapturedAt).UTC().Format(time.RFC3339), s.TVL, s.Price, s.Apr24h)
	}
	fmt.Fprintf(out, "\nsnapshots=%d tvl_change=%.2f (%.2f%%) price_change=%.6f apr_24h_change=%.2f\n",
		len(snaps), change.TVLDelta, change.TVLPct, change.PriceDelta, change.Apr24hDelta)
	return nil
}
