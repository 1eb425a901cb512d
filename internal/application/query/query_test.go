package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST DOUBLES
// ══════════════════════════════════════════════════════════════════════════════

type stubArchive struct {
	run     *metrics.RunInfo
	records []metrics.CompositeMetricsRecord
}

func (s *stubArchive) SaveRun(ctx context.Context, folder string, records []metrics.CompositeMetricsRecord) (*metrics.RunInfo, error) {
	panic("not used in queries")
}

func (s *stubArchive) LatestRun(ctx context.Context) (*metrics.RunInfo, error) {
	if s.run == nil {
		return nil, shared.ErrSnapshotNotFound
	}
	return s.run, nil
}

func (s *stubArchive) Records(ctx context.Context, runID uuid.UUID) ([]metrics.CompositeMetricsRecord, error) {
	return s.records, nil
}

func (s *stubArchive) StudentRecord(ctx context.Context, runID uuid.UUID, name string) (*metrics.CompositeMetricsRecord, error) {
	for i := range s.records {
		if s.records[i].Name == name {
			return &s.records[i], nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (s *stubArchive) TopByOverallScore(ctx context.Context, runID uuid.UUID, limit int) ([]metrics.CompositeMetricsRecord, error) {
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return s.records[:limit], nil
}

type stubCache struct {
	runs    map[string][]metrics.CompositeMetricsRecord
	puts    int
	failGet bool
}

func newStubCache() *stubCache {
	return &stubCache{runs: make(map[string][]metrics.CompositeMetricsRecord)}
}

func (c *stubCache) PutRun(ctx context.Context, folder string, records []metrics.CompositeMetricsRecord) error {
	c.puts++
	c.runs[folder] = records
	return nil
}

func (c *stubCache) GetRun(ctx context.Context, folder string) ([]metrics.CompositeMetricsRecord, error) {
	if c.failGet {
		return nil, assert.AnError
	}
	records, ok := c.runs[folder]
	if !ok {
		return nil, metrics.ErrRecordNotCached
	}
	return records, nil
}

func (c *stubCache) GetRecord(ctx context.Context, folder, name string) (*metrics.CompositeMetricsRecord, error) {
	if c.failGet {
		return nil, assert.AnError
	}
	for _, rec := range c.runs[folder] {
		if rec.Name == name {
			rec := rec
			return &rec, nil
		}
	}
	return nil, metrics.ErrRecordNotCached
}

func (c *stubCache) Invalidate(ctx context.Context, folder string) error {
	delete(c.runs, folder)
	return nil
}

func testRun() *metrics.RunInfo {
	return &metrics.RunInfo{
		ID:             uuid.New(),
		SnapshotFolder: "25-04-15",
		StudentCount:   2,
		CreatedAt:      time.Date(2025, time.April, 15, 12, 0, 0, 0, time.UTC),
	}
}

func testRecords() []metrics.CompositeMetricsRecord {
	return []metrics.CompositeMetricsRecord{
		{
			Name:    "Diaz, Ana",
			Email:   "ana@example.com",
			Summary: metrics.SummaryScore{OverallScore: 82.5, ProgressScore: 90, EngagementScore: 65},
		},
		{
			Name:    "Smith, John",
			Email:   "john@example.com",
			Summary: metrics.SummaryScore{OverallScore: 50.7, ProgressScore: 70, EngagementScore: 5.6},
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GET LATEST RUN
// ══════════════════════════════════════════════════════════════════════════════

func TestGetLatestRunHandler_Handle(t *testing.T) {
	run := testRun()
	h := NewGetLatestRunHandler(&stubArchive{run: run})

	result, err := h.Handle(context.Background(), GetLatestRunQuery{})
	require.NoError(t, err)

	assert.Equal(t, run.ID.String(), result.Run.ID)
	assert.Equal(t, "25-04-15", result.Run.SnapshotFolder)
	assert.Equal(t, 2, result.Run.StudentCount)
}

func TestGetLatestRunHandler_NoRuns(t *testing.T) {
	h := NewGetLatestRunHandler(&stubArchive{})

	_, err := h.Handle(context.Background(), GetLatestRunQuery{})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT METRICS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetStudentMetricsHandler_CacheHit(t *testing.T) {
	archive := &stubArchive{run: testRun()}
	cache := newStubCache()
	cache.runs["25-04-15"] = testRecords()

	h := NewGetStudentMetricsHandler(archive, cache, nil)

	result, err := h.Handle(context.Background(), GetStudentMetricsQuery{Name: "Smith, John"})
	require.NoError(t, err)

	assert.True(t, result.FromCache)
	assert.Equal(t, "john@example.com", result.Record.Email)
	assert.Equal(t, "25-04-15", result.SnapshotFolder)
}

func TestGetStudentMetricsHandler_CacheMissFallsBack(t *testing.T) {
	archive := &stubArchive{run: testRun(), records: testRecords()}
	h := NewGetStudentMetricsHandler(archive, newStubCache(), nil)

	result, err := h.Handle(context.Background(), GetStudentMetricsQuery{Name: "Diaz, Ana"})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Equal(t, "ana@example.com", result.Record.Email)
}

func TestGetStudentMetricsHandler_NilCache(t *testing.T) {
	archive := &stubArchive{run: testRun(), records: testRecords()}
	h := NewGetStudentMetricsHandler(archive, nil, nil)

	result, err := h.Handle(context.Background(), GetStudentMetricsQuery{Name: "Smith, John"})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
}

func TestGetStudentMetricsHandler_UnknownStudent(t *testing.T) {
	archive := &stubArchive{run: testRun(), records: testRecords()}
	h := NewGetStudentMetricsHandler(archive, nil, nil)

	_, err := h.Handle(context.Background(), GetStudentMetricsQuery{Name: "Nobody"})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestGetStudentMetricsHandler_EmptyName(t *testing.T) {
	h := NewGetStudentMetricsHandler(&stubArchive{run: testRun()}, nil, nil)

	_, err := h.Handle(context.Background(), GetStudentMetricsQuery{Name: "   "})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

// ══════════════════════════════════════════════════════════════════════════════
// GET CLASS METRICS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetClassMetricsHandler_CacheMissBackfills(t *testing.T) {
	archive := &stubArchive{run: testRun(), records: testRecords()}
	cache := newStubCache()

	h := NewGetClassMetricsHandler(archive, cache, nil)

	result, err := h.Handle(context.Background(), GetClassMetricsQuery{})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, cache.puts)

	// Second read is served from cache.
	result, err = h.Handle(context.Background(), GetClassMetricsQuery{})
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, 1, cache.puts)
}

func TestGetClassMetricsHandler_CacheFailureFallsBack(t *testing.T) {
	archive := &stubArchive{run: testRun(), records: testRecords()}
	cache := newStubCache()
	cache.failGet = true

	h := NewGetClassMetricsHandler(archive, cache, nil)

	result, err := h.Handle(context.Background(), GetClassMetricsQuery{})
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
}

// ══════════════════════════════════════════════════════════════════════════════
// GET RANKINGS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetRankingsHandler_Handle(t *testing.T) {
	archive := &stubArchive{run: testRun(), records: testRecords()}
	h := NewGetRankingsHandler(archive)

	result, err := h.Handle(context.Background(), GetRankingsQuery{Limit: 1})
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, "Diaz, Ana", result.Entries[0].Name)
	assert.InDelta(t, 82.5, result.Entries[0].OverallScore, 0.001)
}

func TestGetRankingsQuery_Validate(t *testing.T) {
	q := GetRankingsQuery{}
	require.NoError(t, q.Validate())
	assert.Equal(t, defaultRankingsLimit, q.Limit)

	q = GetRankingsQuery{Limit: 500}
	require.NoError(t, q.Validate())
	assert.Equal(t, maxRankingsLimit, q.Limit)

	q = GetRankingsQuery{Limit: -1}
	assert.Error(t, q.Validate())
}
