package query

import (
	"context"
	"errors"
	"time"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET RANKINGS QUERY
// Returns the latest run's top students by overall score.
// ══════════════════════════════════════════════════════════════════════════════

const (
	defaultRankingsLimit = 10
	maxRankingsLimit     = 100
)

// GetRankingsQuery contains parameters for the rankings lookup.
type GetRankingsQuery struct {
	// Limit is how many students to return (default 10, max 100).
	Limit int
}

// Validate checks and normalizes the query parameters.
func (q *GetRankingsQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = defaultRankingsLimit
	}
	if q.Limit > maxRankingsLimit {
		q.Limit = maxRankingsLimit
	}
	return nil
}

// RankingEntryDTO is one row of the rankings table.
type RankingEntryDTO struct {
	Rank            int     `json:"rank"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	OverallScore    float64 `json:"overall_score"`
	ProgressScore   float64 `json:"progress_score"`
	EngagementScore float64 `json:"engagement_score"`
	TotalStudyTime  string  `json:"total_study_time"`
}

// GetRankingsResult contains the rankings lookup result.
type GetRankingsResult struct {
	Entries []RankingEntryDTO `json:"entries"`

	// SnapshotFolder is the snapshot the rankings were computed from.
	SnapshotFolder string `json:"snapshot_folder"`

	// GeneratedAt is when this result was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetRankingsHandler handles rankings lookups.
type GetRankingsHandler struct {
	archive metrics.RunArchive
}

// NewGetRankingsHandler creates a new handler.
func NewGetRankingsHandler(archive metrics.RunArchive) *GetRankingsHandler {
	return &GetRankingsHandler{archive: archive}
}

// Handle executes the query.
func (h *GetRankingsHandler) Handle(ctx context.Context, query GetRankingsQuery) (*GetRankingsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetRankings", shared.ErrValidation, err.Error(), err)
	}

	run, err := h.archive.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	records, err := h.archive.TopByOverallScore(ctx, run.ID, query.Limit)
	if err != nil {
		return nil, err
	}

	entries := make([]RankingEntryDTO, 0, len(records))
	for i, rec := range records {
		entries = append(entries, RankingEntryDTO{
			Rank:            i + 1,
			Name:            rec.Name,
			Email:           rec.Email,
			OverallScore:    rec.Summary.OverallScore,
			ProgressScore:   rec.Summary.ProgressScore,
			EngagementScore: rec.Summary.EngagementScore,
			TotalStudyTime:  rec.StudyTime.TotalFormatted,
		})
	}

	return &GetRankingsResult{
		Entries:        entries,
		SnapshotFolder: run.SnapshotFolder,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
