// Package config loads settings from flags, environment and config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gravex-pools/internal/domain"
	"gravex-pools/internal/poolquery"
)

// EnvPrefix prefixes every environment variable, e.g. GRAVEX_API_HOST.
const EnvPrefix = "GRAVEX"

// Store backends.
const (
	StoreNone       = "none"
	StoreMemory     = "memory"
	StorePostgres   = "postgres"
	StoreClickHouse = "clickhouse"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	// Pool API
	APIHost        string
	PoolSearchPath string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Query defaults
	PoolType        string
	Sort            string
	Order           string
	PageSize        int
	ShowFarms       bool
	RefreshInterval time.Duration

	// Server
	Listen string

	// Snapshot storage
	Store         string
	PostgresDSN   string
	ClickHouseDSN string

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
// Precedence: changed flag, env, config file, default.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api-host", "https://api-v3.raydium.io")
	v.SetDefault("pool-search-path", "/pools/info/mint")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("max-retries", 0)
	v.SetDefault("retry-delay", 500*time.Millisecond)
	v.SetDefault("type", "all")
	v.SetDefault("sort", "default")
	v.SetDefault("order", "desc")
	v.SetDefault("page-size", 100)
	v.SetDefault("farms", false)
	v.SetDefault("refresh-interval", time.Minute)
	v.SetDefault("listen", ":8080")
	v.SetDefault("store", StoreNone)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		APIHost:         v.GetString("api-host"),
		PoolSearchPath:  v.GetString("pool-search-path"),
		Timeout:         v.GetDuration("timeout"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryDelay:      v.GetDuration("retry-delay"),
		PoolType:        v.GetString("type"),
		Sort:            v.GetString("sort"),
		Order:           v.GetString("order"),
		PageSize:        v.GetInt("page-size"),
		ShowFarms:       v.GetBool("farms"),
		RefreshInterval: v.GetDuration("refresh-interval"),
		Listen:          v.GetString("listen"),
		Store:           strings.ToLower(v.GetString("store")),
		PostgresDSN:     v.GetString("postgres-dsn"),
		ClickHouseDSN:   v.GetString("clickhouse-dsn"),
		LogLevel:        v.GetString("log-level"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store {
	case StoreNone, StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("store %q requires postgres-dsn", c.Store)
		}
	case StoreClickHouse:
		if c.ClickHouseDSN == "" {
			return fmt.Errorf("store %q requires clickhouse-dsn", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page-size must not be negative, got %d", c.PageSize)
	}
	return nil
}

// URLConfig returns the pool search endpoint.
func (c Config) URLConfig() poolquery.URLConfig {
	return poolquery.URLConfig{Host: c.APIHost, PoolSearchMintPath: c.PoolSearchPath}
}

// QueryDefaults returns the query params every request starts from.
func (c Config) QueryDefaults() (poolquery.Params, error) {
	t, err := domain.ParsePoolFetchType(c.PoolType)
	if err != nil {
		return poolquery.Params{}, err
	}
	order := domain.SortOrder(strings.ToLower(c.Order))
	if order != "" && !order.IsValid() {
		return poolquery.Params{}, fmt.Errorf("unknown sort order %q", c.Order)
	}

	p := poolquery.DefaultParams()
	p.Type = t
	if c.Sort != "" {
		p.Sort = c.Sort
	}
	if order != "" {
		p.Order = order
	}
	if c.PageSize > 0 {
		p.PageSize = c.PageSize
	}
	p.ShowFarms = c.ShowFarms
	if c.RefreshInterval > 0 {
		p.RefreshInterval = c.RefreshInterval
	}
	return p, nil
}
