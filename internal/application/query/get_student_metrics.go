package query

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
	"github.com/compita-hub/compita-metrics-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT METRICS QUERY
// Returns one student's full composite record from the latest run. This is
// the query behind the per-student report endpoint, so it reads through the
// cache first and falls back to the archive.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentMetricsQuery contains parameters for a per-student lookup.
type GetStudentMetricsQuery struct {
	// Name is the student's full name as it appears in the gradebook,
	// usually "Last, First".
	Name string
}

// Validate checks the query parameters.
func (q *GetStudentMetricsQuery) Validate() error {
	q.Name = strings.TrimSpace(q.Name)
	if q.Name == "" {
		return errors.New("student name must be provided")
	}
	return nil
}

// GetStudentMetricsResult contains the per-student lookup result.
type GetStudentMetricsResult struct {
	// Record is the student's full composite metrics record.
	Record metrics.CompositeMetricsRecord `json:"record"`

	// SnapshotFolder is the snapshot the record was computed from.
	SnapshotFolder string `json:"snapshot_folder"`

	// FromCache reports whether the record was served from cache.
	FromCache bool `json:"from_cache"`

	// GeneratedAt is when this result was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetStudentMetricsHandler handles per-student metric lookups.
type GetStudentMetricsHandler struct {
	archive metrics.RunArchive
	cache   metrics.RecordCache
	log     *logger.Logger
}

// NewGetStudentMetricsHandler creates a new handler. The cache may be nil
// when Redis is disabled.
func NewGetStudentMetricsHandler(archive metrics.RunArchive, cache metrics.RecordCache, log *logger.Logger) *GetStudentMetricsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GetStudentMetricsHandler{archive: archive, cache: cache, log: log}
}

// Handle executes the query.
func (h *GetStudentMetricsHandler) Handle(ctx context.Context, query GetStudentMetricsQuery) (*GetStudentMetricsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStudentMetrics", shared.ErrValidation, err.Error(), err)
	}

	run, err := h.archive.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		rec, err := h.cache.GetRecord(ctx, run.SnapshotFolder, query.Name)
		if err == nil {
			return &GetStudentMetricsResult{
				Record:         *rec,
				SnapshotFolder: run.SnapshotFolder,
				FromCache:      true,
				GeneratedAt:    time.Now().UTC(),
			}, nil
		}
		// A miss is normal; anything else is worth a line in the log.
		if !errors.Is(err, metrics.ErrRecordNotCached) {
			h.log.Warn("student record cache read failed",
				logger.StudentName(query.Name),
				logger.Err(err),
			)
		}
	}

	rec, err := h.archive.StudentRecord(ctx, run.ID, query.Name)
	if err != nil {
		return nil, err
	}

	return &GetStudentMetricsResult{
		Record:         *rec,
		SnapshotFolder: run.SnapshotFolder,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
