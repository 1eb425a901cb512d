// Package main is the entry point of the CompITA Metrics Hub API server.
//
// The server exposes read-only endpoints over the latest archived metrics
// run: per-student records, class-wide records, rankings, and rendered
// Markdown reports, plus the usual health endpoints.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/compita-hub/compita-metrics-hub/config"
	"github.com/compita-hub/compita-metrics-hub/internal/application/query"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/infrastructure/ingest"
	"github.com/compita-hub/compita-metrics-hub/internal/infrastructure/persistence/postgres"
	"github.com/compita-hub/compita-metrics-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/compita-hub/compita-metrics-hub/internal/interface/http"
	"github.com/compita-hub/compita-metrics-hub/internal/interface/http/handlers"
	"github.com/compita-hub/compita-metrics-hub/pkg/logger"
	"github.com/compita-hub/compita-metrics-hub/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Database.Disabled {
		return fmt.Errorf("the API server needs the run archive; set DATABASE_URL")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting CompITA Metrics Hub API server",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	pool := postgres.DefaultPoolSettings()
	pool.MaxConns = int32(cfg.Database.MaxConns)
	pool.MinConns = int32(cfg.Database.MinConns)
	pool.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pool.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	var conn *postgres.Connection
	err = retry.ConnectRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		conn, connErr = postgres.NewConnection(ctx, cfg.Database.URL, pool)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		conn.Close()
	}()

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var recordCache metrics.RecordCache
	var cacheChecker handlers.CacheChecker

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, serving from the archive only", logger.Err(err))
		} else {
			defer cache.Close()
			metricsCache := redis.NewMetricsCache(cache, cfg.Redis.MetricsTTL)
			recordCache = redis.NewGuardedCache(metricsCache, log)
			cacheChecker = cache
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. QUERY HANDLERS (CQRS Read Side)
	// ─────────────────────────────────────────────────────────────────────────
	archive := postgres.NewRunRepository(conn)

	deps := httpapi.Dependencies{
		GetLatestRunHandler:      query.NewGetLatestRunHandler(archive),
		GetStudentMetricsHandler: query.NewGetStudentMetricsHandler(archive, recordCache, log),
		GetClassMetricsHandler:   query.NewGetClassMetricsHandler(archive, recordCache, log),
		GetRankingsHandler:       query.NewGetRankingsHandler(archive),
		Logger:                   log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	checker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	checker.AddCheck("database", handlers.NewDatabaseCheck(conn))
	if cacheChecker != nil {
		checker.AddCheck("cache", handlers.NewCacheCheck(cacheChecker))
	}
	checker.AddCheck("snapshots", handlers.NewSnapshotCheck(ingest.NewLoader(cfg.App.SnapshotDir, log)))
	deps.HealthChecker = checker

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.APIKeyHeader = cfg.HTTP.APIKeyHeader
	serverCfg.APIKeyHashes = cfg.HTTP.APIKeyHashes

	if len(serverCfg.APIKeyHashes) == 0 && cfg.IsProduction() {
		log.Warn("no API key hashes configured, API endpoints are open")
	}

	server := httpapi.NewServer(serverCfg, deps)
	errCh := server.StartAsync()
	log.Info("API server is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger builds the structured logger. With LOG_FILE set, entries go to
// stdout and to a size-rotated file.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)

	if cfg.Observability.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.Observability.LogFile,
			MaxSize:    cfg.Observability.LogMaxSizeMB,
			MaxBackups: cfg.Observability.LogMaxBackups,
			MaxAge:     cfg.Observability.LogMaxAgeDays,
			Compress:   true,
		}
		opts.Output = io.MultiWriter(os.Stdout, rotated)
	}

	return logger.New(opts)
}
