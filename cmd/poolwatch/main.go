package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "poolwatch",
		Short:        "Query, watch and record liquidity pools for a token pair",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the pools of a mint pair",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("mint1", "", "first mint (base58; native SOL is accepted)")
	watchCmd.Flags().String("mint2", "", "second mint (optional)")
	watchCmd.Flags().String("pool-id", "", "pool to select from the results")
	watchCmd.Flags().Int("pages", 1, "pages to load")
	watchCmd.Flags().Bool("once", false, "print the first settled result and exit")
	addQueryFlags(watchCmd)
	addStoreFlags(watchCmd)
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	deriveCmd := &cobra.Command{
		Use:   "derive-pool-id",
		Short: "Derive the CPMM pool address of a mint pair",
		RunE:  runDerivePoolID,
	}

	deriveCmd.Flags().String("mint1", "", "first mint")
	deriveCmd.Flags().String("mint2", "", "second mint")
	deriveCmd.Flags().String("program", "", "CPMM program id (default Raydium CPMM)")
	deriveCmd.Flags().String("amm-config", "", "amm config address; derived from --config-index when empty")
	deriveCmd.Flags().Uint16("config-index", 0, "amm config index")

	root.AddCommand(deriveCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print recorded snapshots of a pool",
		RunE:  runHistory,
	}

	historyCmd.Flags().String("pool-id", "", "pool address")
	historyCmd.Flags().Duration("window", 24*time.Hour, "how far back to read")
	historyCmd.Flags().String("format", "table", "output format (table, csv)")
	addStoreFlags(historyCmd)
	historyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(historyCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-host", "https://api-v3.raydium.io", "pool API host")
	cmd.Flags().String("type", "all", "pool type (all, standard, concentrated)")
	cmd.Flags().String("sort", "default", "sort field")
	cmd.Flags().String("order", "desc", "sort order (asc, desc)")
	cmd.Flags().Int("page-size", 100, "records per page")
	cmd.Flags().Bool("farms", false, "only pools with farms")
	cmd.Flags().Duration("refresh-interval", time.Minute, "dedup, focus throttle and refresh interval")
	cmd.Flags().Duration("timeout", 10*time.Second, "request timeout")
	cmd.Flags().Int("max-retries", 0, "retries for rate-limited or failed requests")
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "none", "snapshot store (none, memory, postgres, clickhouse)")
	cmd.Flags().String("postgres-dsn", "", "Postgres DSN")
	cmd.Flags().String("clickhouse-dsn", "", "ClickHouse DSN")
}
