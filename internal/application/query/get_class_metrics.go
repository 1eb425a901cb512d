package query

import (
	"context"
	"errors"
	"time"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CLASS METRICS QUERY
// Returns all records of the latest run, cache first. This feeds the class
// summary endpoint and the report renderers.
// ══════════════════════════════════════════════════════════════════════════════

// GetClassMetricsQuery contains parameters for the class-wide lookup.
type GetClassMetricsQuery struct{}

// GetClassMetricsResult contains every record of the latest run.
type GetClassMetricsResult struct {
	// Records are all student records, sorted by name.
	Records []metrics.CompositeMetricsRecord `json:"records"`

	// SnapshotFolder is the snapshot the records were computed from.
	SnapshotFolder string `json:"snapshot_folder"`

	// FromCache reports whether the records were served from cache.
	FromCache bool `json:"from_cache"`

	// GeneratedAt is when this result was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetClassMetricsHandler handles class-wide metric lookups.
type GetClassMetricsHandler struct {
	archive metrics.RunArchive
	cache   metrics.RecordCache
	log     *logger.Logger
}

// NewGetClassMetricsHandler creates a new handler. The cache may be nil
// when Redis is disabled.
func NewGetClassMetricsHandler(archive metrics.RunArchive, cache metrics.RecordCache, log *logger.Logger) *GetClassMetricsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetClassMetricsHandler{archive: archive, cache: cache, log: log}
}

// Handle executes the query.
func (h *GetClassMetricsHandler) Handle(ctx context.Context, _ GetClassMetricsQuery) (*GetClassMetricsResult, error) {
	run, err := h.archive.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		records, err := h.cache.GetRun(ctx, run.SnapshotFolder)
		if err == nil {
			return &GetClassMetricsResult{
				Records:        records,
				SnapshotFolder: run.SnapshotFolder,
				FromCache:      true,
				GeneratedAt:    time.Now().UTC(),
			}, nil
		}
		if !errors.Is(err, metrics.ErrRecordNotCached) {
			h.log.Warn("run cache read failed",
				logger.SnapshotID(run.SnapshotFolder),
				logger.Err(err),
			)
		}
	}

	records, err := h.archive.Records(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	// Backfill so the next read skips the archive. Best effort.
	if h.cache != nil {
		if err := h.cache.PutRun(ctx, run.SnapshotFolder, records); err != nil {
			h.log.Warn("run cache backfill failed",
				logger.SnapshotID(run.SnapshotFolder),
				logger.Err(err),
			)
		}
	}

	return &GetClassMetricsResult{
		Records:        records,
		SnapshotFolder: run.SnapshotFolder,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
