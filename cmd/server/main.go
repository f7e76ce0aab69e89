// Package main runs the pool stream server: websocket pool queries, health
// and Prometheus metrics, with optional snapshot recording.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gravex-pools/internal/app"
	"gravex-pools/internal/config"
	"gravex-pools/internal/observability"
	"gravex-pools/internal/poolquery"
	"gravex-pools/internal/recorder"
	"gravex-pools/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:          "server",
		Short:        "Stream pool queries over websocket",
		SilenceUsage: true,
		RunE:         runServer,
	}

	root.Flags().String("config", "", "config file path")
	root.Flags().String("listen", ":8080", "HTTP listen address")
	root.Flags().String("api-host", "https://api-v3.raydium.io", "pool API host")
	root.Flags().Duration("refresh-interval", time.Minute, "dedup, focus throttle and refresh interval")
	root.Flags().Int("page-size", 100, "default records per page")
	root.Flags().Duration("timeout", 10*time.Second, "request timeout")
	root.Flags().Int("max-retries", 0, "retries for rate-limited or failed requests")
	root.Flags().String("store", "none", "snapshot store (none, memory, postgres, clickhouse)")
	root.Flags().String("postgres-dsn", "", "Postgres DSN")
	root.Flags().String("clickhouse-dsn", "", "ClickHouse DSN")
	root.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
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

	defaults, err := cfg.QueryDefaults()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := app.NewEngine(cfg, logger)
	defer engine.Close()

	opts := []server.Option{
		server.WithDefaults(defaults),
		server.WithLogger(logger.Named("server")),
	}
	if stores.Enabled() {
		opts = append(opts, server.WithQueryHook(func(ctx context.Context, q *poolquery.Query) {
			rec := recorder.New(recorder.Options{
				SnapshotStore:     stores.Snapshots,
				TrackedQueryStore: stores.Queries,
				Logger:            logger.Named("recorder"),
			})
			if err := rec.Run(ctx, q); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("recorder stopped", zap.Error(err))
			}
		}))
	}

	logger.Info("starting server",
		zap.String("listen", cfg.Listen),
		zap.String("api", cfg.URLConfig().Endpoint()),
		zap.String("store", cfg.Store),
	)

	if err := server.New(engine, opts...).ListenAndServe(ctx, cfg.Listen); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
