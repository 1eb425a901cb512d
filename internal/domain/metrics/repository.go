package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotCached is returned by RecordCache lookups on a miss.
var ErrRecordNotCached = errors.New("metrics: record not cached")

// ══════════════════════════════════════════════════════════════════════════════
// RUN ARCHIVE PORTS
// ══════════════════════════════════════════════════════════════════════════════

// RunInfo is the header of one archived metrics run.
type RunInfo struct {
	ID             uuid.UUID `json:"id"`
	SnapshotFolder string    `json:"snapshot_folder"`
	StudentCount   int       `json:"student_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// RunArchive stores completed metrics runs and serves their records back.
// The PostgreSQL implementation lives in infrastructure/persistence.
type RunArchive interface {
	// SaveRun archives one run and all of its records atomically.
	SaveRun(ctx context.Context, snapshotFolder string, records []CompositeMetricsRecord) (*RunInfo, error)

	// LatestRun returns the most recent archived run.
	LatestRun(ctx context.Context) (*RunInfo, error)

	// Records returns all records of one run, sorted by student name.
	Records(ctx context.Context, runID uuid.UUID) ([]CompositeMetricsRecord, error)

	// StudentRecord returns one student's record from one run.
	StudentRecord(ctx context.Context, runID uuid.UUID, name string) (*CompositeMetricsRecord, error)

	// TopByOverallScore returns the run's top records by overall score.
	TopByOverallScore(ctx context.Context, runID uuid.UUID, limit int) ([]CompositeMetricsRecord, error)
}

// RecordCache is the read-through cache in front of the archive. Keys carry
// the snapshot folder so a new run never serves stale records.
type RecordCache interface {
	PutRun(ctx context.Context, folder string, records []CompositeMetricsRecord) error
	GetRun(ctx context.Context, folder string) ([]CompositeMetricsRecord, error)
	GetRecord(ctx context.Context, folder, name string) (*CompositeMetricsRecord, error)
	Invalidate(ctx context.Context, folder string) error
}
