// Package main runs the campaign service: the HTTP API, the batch
// reconciler's dependencies, and the optional pool-creation watcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curvefund/internal/api"
	"curvefund/internal/config"
	"curvefund/internal/ledger"
	"curvefund/internal/market"
	"curvefund/internal/observability"
	"curvefund/internal/reconcile"
	"curvefund/internal/solana"
	"curvefund/internal/storage"
	chstore "curvefund/internal/storage/clickhouse"
	"curvefund/internal/storage/memory"
	"curvefund/internal/storage/migrations"
	pgstore "curvefund/internal/storage/postgres"
	"curvefund/internal/watcher"
)

func main() {
	// Flags override environment configuration.
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint (overrides SOLANA_RPC_ENDPOINT)")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint (overrides SOLANA_WS_ENDPOINT)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides PSQL_ADDRESS)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for progress history (overrides CLICKHOUSE_ADDRESS)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := loadConfig(*rpcEndpoint, *wsEndpoint, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals with graceful timeout.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	if err := run(ctx, cfg, *useMemory, logger); err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	close(done)
	logger.Println("Shutdown complete")
}

// loadConfig loads the environment configuration, applies flag overrides,
// then validates the result.
func loadConfig(rpcEndpoint, wsEndpoint, postgresDSN, clickhouseDSN string) (config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return cfg, err
	}

	if rpcEndpoint != "" {
		cfg.Solana.RPCEndpoint = rpcEndpoint
	}
	if wsEndpoint != "" {
		cfg.Solana.WSEndpoint = wsEndpoint
	}
	if postgresDSN != "" {
		cfg.Postgres.Addr = postgresDSN
	}
	if clickhouseDSN != "" {
		cfg.ClickHouse.Addr = clickhouseDSN
	}

	return cfg, cfg.Validate()
}

// run wires the stores, clients, and servers, then blocks until shutdown.
func run(ctx context.Context, cfg config.Config, useMemory bool, logger *log.Logger) error {
	// Stores
	var (
		campaigns storage.CampaignStore
		users     storage.UserStore
		history   storage.ProgressHistoryStore
	)

	if useMemory || cfg.Postgres.Addr == "" {
		logger.Println("Using in-memory storage")
		campaigns = memory.NewCampaignStore()
		users = memory.NewUserStore()
		history = memory.NewProgressHistoryStore()
	} else {
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.Addr)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if cfg.Postgres.RunMigrations {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				return fmt.Errorf("run postgres migrations: %w", err)
			}
			logger.Println("PostgreSQL migrations applied")
		}

		campaigns = pgstore.NewCampaignStore(pool)
		users = pgstore.NewUserStore(pool)
	}

	if cfg.ClickHouse.Addr != "" {
		var conn *chstore.Conn
		var err error
		if cfg.ClickHouse.RunMigrations {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.Addr)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickHouse.Addr)
		}
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()
		history = chstore.NewProgressHistoryStore(conn)
		logger.Println("Progress history recording enabled")
	}

	// Ledger and market clients
	rpc := solana.NewHTTPClient(cfg.Solana.RPCEndpoint)
	feeReader := ledger.NewReader(rpc, cfg.Solana.QuoteMint, cfg.Solana.PoolConfigKey(), logger)
	marketClient := market.NewClient(cfg.Market.BaseURL, logger, market.WithTimeout(cfg.Market.Timeout))

	svc, err := reconcile.NewService(reconcile.Options{
		CampaignStore:     campaigns,
		UserStore:         users,
		FeeFetcher:        feeReader,
		MarketFetcher:     marketClient,
		HistoryStore:      history,
		LedgerConcurrency: cfg.Reconcile.LedgerConcurrency,
		LedgerTimeout:     cfg.Reconcile.LedgerTimeout,
		MarketTimeout:     cfg.Reconcile.MarketTimeout,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("create reconcile service: %w", err)
	}

	// Pool-creation watcher
	if cfg.Solana.WSEndpoint != "" {
		ws, err := solana.NewLogWSClient(ctx, cfg.Solana.WSEndpoint, nil)
		if err != nil {
			return fmt.Errorf("create websocket client: %w", err)
		}
		defer ws.Close()

		w := watcher.New(ws, campaigns, logger)
		go func() {
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				logger.Printf("Watcher stopped: %v", err)
			}
		}()
	} else {
		logger.Println("No WebSocket endpoint configured, watcher disabled")
	}

	// Metrics server
	if cfg.HTTP.MetricsPort != 0 {
		metricsAddr := fmt.Sprintf(":%d", cfg.HTTP.MetricsPort)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// API server
	handler := api.NewHandler(campaigns, users, svc, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("API server shutdown: %v", err)
	}
	return ctx.Err()
}
