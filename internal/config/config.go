// Package config loads application configuration from environment
// variables. Flags in cmd/server may override individual values.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Network names the Solana cluster the service talks to.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkDevnet  Network = "devnet"
)

// Config aggregates all configuration sections for the application.
// Fields are populated from environment variables; nested structs are
// tagged with envPrefix so their fields are parsed with the given prefix.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	HTTP      HTTP      `envPrefix:"HTTP_"`
	Postgres  Postgres  `envPrefix:"PSQL_"`
	ClickHouse ClickHouse `envPrefix:"CLICKHOUSE_"`
	Solana    Solana    `envPrefix:"SOLANA_"`
	Market    Market    `envPrefix:"MARKET_"`
	Reconcile Reconcile `envPrefix:"RECONCILE_"`
}

// HTTP configures the API and metrics listeners.
type HTTP struct {
	// Port is the TCP port the API server listens on.
	Port uint16 `env:"PORT" envDefault:"8080"`
	// MetricsPort serves the Prometheus endpoint. 0 disables it.
	MetricsPort uint16 `env:"METRICS_PORT" envDefault:"9090"`
}

// Postgres configures the campaign/user store. An empty Addr selects the
// in-memory stores, which is the development default.
type Postgres struct {
	// Addr is a connection string accepted by pgxpool.New.
	Addr string `env:"ADDRESS"`
	// RunMigrations executes embedded migrations on startup.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"false"`
}

// ClickHouse configures the progress-history analytics store. An empty
// Addr disables history recording.
type ClickHouse struct {
	// Addr is a clickhouse:// DSN for the native protocol.
	Addr string `env:"ADDRESS"`
	// RunMigrations executes embedded migrations on startup.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"false"`
}

// Solana configures ledger access and pool derivation.
type Solana struct {
	// RPCEndpoint is the JSON-RPC HTTP endpoint. Required.
	RPCEndpoint string `env:"RPC_ENDPOINT"`
	// WSEndpoint is the websocket endpoint for the pool-creation watcher.
	// Empty disables the watcher.
	WSEndpoint string `env:"WS_ENDPOINT"`
	// Network selects the cluster: mainnet or devnet.
	Network Network `env:"NETWORK" envDefault:"mainnet"`
	// MainnetPoolConfigKey is the bonding-curve pool config account on
	// mainnet. Required when Network is mainnet.
	MainnetPoolConfigKey string `env:"MAINNET_POOL_CONFIG_KEY"`
	// DevnetPoolConfigKey is the pool config account on devnet. Required
	// when Network is devnet.
	DevnetPoolConfigKey string `env:"DEVNET_POOL_CONFIG_KEY"`
	// QuoteMint is the quote currency mint of campaign pools.
	QuoteMint string `env:"QUOTE_MINT" envDefault:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"`
}

// PoolConfigKey returns the pool config account for the selected network.
func (s Solana) PoolConfigKey() string {
	if s.Network == NetworkDevnet {
		return s.DevnetPoolConfigKey
	}
	return s.MainnetPoolConfigKey
}

// Market configures the market-data client.
type Market struct {
	// BaseURL of the pools endpoint host.
	BaseURL string `env:"BASE_URL" envDefault:"https://datapi.jup.ag"`
	// Timeout bounds one pools request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Reconcile tunes the reconciliation service.
type Reconcile struct {
	// LedgerConcurrency bounds parallel fee fetches in a batch run.
	LedgerConcurrency int `env:"LEDGER_CONCURRENCY" envDefault:"8"`
	// LedgerTimeout bounds one fee fetch.
	LedgerTimeout time.Duration `env:"LEDGER_TIMEOUT" envDefault:"15s"`
	// MarketTimeout bounds one market batch fetch.
	MarketTimeout time.Duration `env:"MARKET_TIMEOUT" envDefault:"15s"`
}

// Parse reads configuration from environment variables without validating
// it. Callers that apply overrides run Validate afterwards.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Load reads configuration from environment variables and validates the
// required fields. Parsing or validation failure is fatal at startup.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field requirements that tags cannot express.
func (c Config) Validate() error {
	if c.Solana.RPCEndpoint == "" {
		return fmt.Errorf("SOLANA_RPC_ENDPOINT is required")
	}
	switch c.Solana.Network {
	case NetworkMainnet:
		if c.Solana.MainnetPoolConfigKey == "" {
			return fmt.Errorf("SOLANA_MAINNET_POOL_CONFIG_KEY is required on mainnet")
		}
	case NetworkDevnet:
		if c.Solana.DevnetPoolConfigKey == "" {
			return fmt.Errorf("SOLANA_DEVNET_POOL_CONFIG_KEY is required on devnet")
		}
	default:
		return fmt.Errorf("unknown network %q", c.Solana.Network)
	}
	if c.Solana.QuoteMint == "" {
		return fmt.Errorf("SOLANA_QUOTE_MINT is required")
	}
	if c.Reconcile.LedgerConcurrency <= 0 {
		return fmt.Errorf("RECONCILE_LEDGER_CONCURRENCY must be positive")
	}
	return nil
}
