// Package main is the batch report generator of the CompITA Metrics Hub.
//
// One invocation loads the newest source snapshot (or the folder named with
// -folder), computes every student's composite metrics, and writes the
// Markdown and Excel reports. With a database configured the run is archived
// so the API server can serve it; with Redis configured the records are
// cached for the same reason.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/compita-hub/compita-metrics-hub/config"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/infrastructure/ingest"
	"github.com/compita-hub/compita-metrics-hub/internal/infrastructure/persistence/postgres"
	"github.com/compita-hub/compita-metrics-hub/internal/infrastructure/persistence/redis"
	"github.com/compita-hub/compita-metrics-hub/internal/reports"
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
	var (
		folderFlag = flag.String("folder", "", "snapshot folder to process (default: newest)")
		outFlag    = flag.String("out", "", "report output directory (default: REPORT_DIR)")
		skipExcel  = flag.Bool("no-excel", false, "skip the Excel class summary")
	)
	flag.Parse()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	reportDir := cfg.App.ReportDir
	if *outFlag != "" {
		reportDir = *outFlag
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting CompITA Metrics Hub report run",
		logger.String("snapshot_dir", cfg.App.SnapshotDir),
		logger.String("report_dir", reportDir),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. LOAD SNAPSHOT
	// ─────────────────────────────────────────────────────────────────────────
	loader := ingest.NewLoader(cfg.App.SnapshotDir, log)

	var snap metrics.Snapshot
	folder := *folderFlag
	if folder == "" {
		snap, folder, err = loader.LoadLatest()
	} else {
		snap, err = loader.Load(folder)
	}
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	log.Info("snapshot loaded", logger.SnapshotID(folder))

	// ─────────────────────────────────────────────────────────────────────────
	// 4. COMPUTE METRICS
	// ─────────────────────────────────────────────────────────────────────────
	engine := metrics.NewEngine(cfg.Scoring.ToMetricsConfig(), log)
	records := engine.Run(snap)
	if len(records) == 0 {
		return fmt.Errorf("snapshot %s contains no students", folder)
	}
	log.Info("metrics computed", logger.Int("students", len(records)))

	// ─────────────────────────────────────────────────────────────────────────
	// 5. WRITE REPORTS
	// ─────────────────────────────────────────────────────────────────────────
	if err := writeReports(records, filepath.Join(reportDir, folder), *skipExcel, log); err != nil {
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ARCHIVE RUN (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Database.Disabled {
		if err := archiveRun(ctx, cfg, folder, records, log); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. WARM CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Redis.Disabled {
		warmCache(ctx, cfg, folder, records, log)
	}

	log.Info("report run completed", logger.SnapshotID(folder))
	return nil
}

// writeReports renders one Markdown report per student plus the class
// summary in Markdown and, unless skipped, Excel.
func writeReports(records []metrics.CompositeMetricsRecord, dir string, skipExcel bool, log *logger.Logger) error {
	studentDir := filepath.Join(dir, "students")
	if err := os.MkdirAll(studentDir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	markdown := reports.NewMarkdownRenderer()

	for i := range records {
		rec := &records[i]
		path := filepath.Join(studentDir, studentFileName(rec.Name))
		if err := os.WriteFile(path, []byte(markdown.StudentReport(rec)), 0o644); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", rec.Name, err)
		}
	}
	log.Info("student reports written", logger.Int("count", len(records)))

	summaryPath := filepath.Join(dir, "class_summary.md")
	if err := os.WriteFile(summaryPath, []byte(markdown.ClassSummary(records)), 0o644); err != nil {
		return fmt.Errorf("failed to write class summary: %w", err)
	}

	if !skipExcel {
		excel := reports.NewExcelExporter()
		if err := excel.WriteClassSummary(records, filepath.Join(dir, "class_summary.xlsx")); err != nil {
			return fmt.Errorf("failed to write Excel summary: %w", err)
		}
	}

	log.Info("class summary written", logger.String("dir", dir))
	return nil
}

// archiveRun stores the run in PostgreSQL so the API can serve it.
func archiveRun(ctx context.Context, cfg *config.Config, folder string, records []metrics.CompositeMetricsRecord, log *logger.Logger) error {
	pool := postgres.DefaultPoolSettings()
	pool.MaxConns = int32(cfg.Database.MaxConns)
	pool.MinConns = int32(cfg.Database.MinConns)
	pool.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pool.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	var conn *postgres.Connection
	err := retry.ConnectRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		conn, connErr = postgres.NewConnection(ctx, cfg.Database.URL, pool)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	run, err := postgres.NewRunRepository(conn).SaveRun(ctx, folder, records)
	if err != nil {
		return fmt.Errorf("failed to archive run: %w", err)
	}

	log.Info("run archived",
		logger.String("run_id", run.ID.String()),
		logger.SnapshotID(folder),
	)
	return nil
}

// warmCache pushes the records into Redis. Failures only cost the next API
// reader a trip to the archive, so they are logged and ignored.
func warmCache(ctx context.Context, cfg *config.Config, folder string, records []metrics.CompositeMetricsRecord, log *logger.Logger) {
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
		log.Warn("failed to connect to Redis, skipping cache warmup", logger.Err(err))
		return
	}
	defer cache.Close()

	metricsCache := redis.NewMetricsCache(cache, cfg.Redis.MetricsTTL)
	if err := metricsCache.PutRun(ctx, folder, records); err != nil {
		log.Warn("cache warmup failed", logger.Err(err))
		return
	}
	log.Info("cache warmed", logger.SnapshotID(folder))
}

// studentFileName turns "Smith, John" into "smith_john_report.md".
func studentFileName(name string) string {
	cleaned := strings.ToLower(name)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "/", " ")
	cleaned = strings.Join(strings.Fields(cleaned), "_")
	if cleaned == "" {
		cleaned = "student"
	}
	return cleaned + "_report.md"
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
