package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// METRIC RUN REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// RunRepository archives metrics runs and serves their records back. It
// implements metrics.RunArchive.
type RunRepository struct {
	conn *Connection
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(conn *Connection) *RunRepository {
	return &RunRepository{conn: conn}
}

// SaveRun archives one run and all of its records in a single transaction.
func (r *RunRepository) SaveRun(ctx context.Context, snapshotFolder string, records []metrics.CompositeMetricsRecord) (*metrics.RunInfo, error) {
	run := &metrics.RunInfo{
		ID:             uuid.New(),
		SnapshotFolder: snapshotFolder,
		StudentCount:   len(records),
		CreatedAt:      time.Now().UTC(),
	}

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO metric_runs (id, snapshot_folder, student_count, created_at)
			VALUES ($1, $2, $3, $4)
		`, run.ID, run.SnapshotFolder, run.StudentCount, run.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for i := range records {
			rec := &records[i]
			payload, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal record for %s: %w", rec.Name, err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO metric_records (
					run_id, student_name, student_email,
					progress_score, engagement_score, overall_score, record
				) VALUES ($1, $2, $3, $4, $5, $6, $7)
			`,
				run.ID,
				rec.Name,
				rec.Email,
				rec.Summary.ProgressScore,
				rec.Summary.EngagementScore,
				rec.Summary.OverallScore,
				payload,
			)
			if err != nil {
				return fmt.Errorf("failed to insert record for %s: %w", rec.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return run, nil
}

// LatestRun returns the most recent archived run.
func (r *RunRepository) LatestRun(ctx context.Context) (*metrics.RunInfo, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT id, snapshot_folder, student_count, created_at
		FROM metric_runs
		ORDER BY created_at DESC
		LIMIT 1
	`)

	run := &metrics.RunInfo{}
	err := row.Scan(&run.ID, &run.SnapshotFolder, &run.StudentCount, &run.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return run, nil
}

// Records returns all records of one run, sorted by student name.
func (r *RunRepository) Records(ctx context.Context, runID uuid.UUID) ([]metrics.CompositeMetricsRecord, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT record
		FROM metric_records
		WHERE run_id = $1
		ORDER BY student_name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []metrics.CompositeMetricsRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		var rec metrics.CompositeMetricsRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// StudentRecord returns one student's record from one run.
func (r *RunRepository) StudentRecord(ctx context.Context, runID uuid.UUID, name string) (*metrics.CompositeMetricsRecord, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT record
		FROM metric_records
		WHERE run_id = $1 AND student_name = $2
	`, runID, name)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to query student record: %w", err)
	}

	var rec metrics.CompositeMetricsRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// TopByOverallScore returns the run's top records ordered by overall score.
func (r *RunRepository) TopByOverallScore(ctx context.Context, runID uuid.UUID, limit int) ([]metrics.CompositeMetricsRecord, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT record
		FROM metric_records
		WHERE run_id = $1
		ORDER BY overall_score DESC, student_name
		LIMIT $2
	`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top records: %w", err)
	}
	defer rows.Close()

	var records []metrics.CompositeMetricsRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec metrics.CompositeMetricsRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
