// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LATEST RUN QUERY
// Returns the header of the most recent archived metrics run. The API serves
// this so clients can tell which snapshot folder their numbers came from.
// ══════════════════════════════════════════════════════════════════════════════

// GetLatestRunQuery contains parameters for the latest run lookup.
// There are none yet; the struct keeps the handler signature uniform.
type GetLatestRunQuery struct{}

// RunDTO describes one archived metrics run.
type RunDTO struct {
	// ID identifies the run.
	ID string `json:"id"`

	// SnapshotFolder is the source snapshot the run was computed from,
	// in YY-MM-DD form.
	SnapshotFolder string `json:"snapshot_folder"`

	// StudentCount is how many student records the run produced.
	StudentCount int `json:"student_count"`

	// CreatedAt is when the run was archived.
	CreatedAt time.Time `json:"created_at"`
}

// GetLatestRunResult contains the latest run lookup result.
type GetLatestRunResult struct {
	Run RunDTO `json:"run"`

	// GeneratedAt is when this result was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLatestRunHandler handles latest run lookups.
type GetLatestRunHandler struct {
	archive metrics.RunArchive
}

// NewGetLatestRunHandler creates a new handler.
func NewGetLatestRunHandler(archive metrics.RunArchive) *GetLatestRunHandler {
	return &GetLatestRunHandler{archive: archive}
}

// Handle executes the query.
func (h *GetLatestRunHandler) Handle(ctx context.Context, _ GetLatestRunQuery) (*GetLatestRunResult, error) {
	run, err := h.archive.LatestRun(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("query", "GetLatestRun", shared.ErrStorageUnavailable, "cannot read run archive", err)
	}

	return &GetLatestRunResult{
		Run: RunDTO{
			ID:             run.ID.String(),
			SnapshotFolder: run.SnapshotFolder,
			StudentCount:   run.StudentCount,
			CreatedAt:      run.CreatedAt,
		},
		GeneratedAt: time.Now().UTC(),
	}, nil
}
