package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/shared"
)

const gradebookJSON = `{
  "students": [
    {
      "name": "Smith, John",
      "email": "john@example.com",
      "labs": [
        {"name": "Lab - 1.1 Basics", "completion": 1.0},
        {"name": "Lab - 1.2 Advanced", "completion": "50%"}
      ],
      "assessments": [
        {"name": "Assessment - 1.1 Module Quiz", "completion": 0.9}
      ],
      "summary": {"total_completed": 2.4, "total_items": 3}
    },
    {
      "name": "Adams, Amy (amy@example.com)",
      "email": "",
      "labs": [],
      "assessments": []
    }
  ],
  "metadata": {"total_students": 2}
}`

const studyHistoryJSON = `{
  "students": [
    {
      "name": "Smith, John",
      "email": "john@example.com",
      "daily_study": [
        {"date": "Apr 15, Tuesday", "study_time_seconds": 3600},
        {"date": "Apr 16, Wednesday", "study_time_seconds": "30m 0s"}
      ]
    }
  ],
  "metadata": {"total_students": 1}
}`

func TestFlexFraction_Decoding(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`0.85`, 0.85},
		{`"85%"`, 0.85},
		{`"0.85"`, 0.85},
		{`"not a number"`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		var f FlexFraction
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &f), "raw %s", tt.raw)
		assert.InDelta(t, tt.want, float64(f), 0.0001, "raw %s", tt.raw)
	}
}

func TestFlexSeconds_Decoding(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`5400`, 5400},
		{`"1h 30m 0s"`, 5400},
		{`"45m"`, 2700},
		{`""`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		var s FlexSeconds
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &s), "raw %s", tt.raw)
		assert.Equal(t, tt.want, int(s), "raw %s", tt.raw)
	}
}

func TestMapper_SplitsEmbeddedEmail(t *testing.T) {
	var file GradebookFile
	require.NoError(t, json.Unmarshal([]byte(gradebookJSON), &file))

	dataset := NewMapper().CompletionDataset(&file)
	require.Len(t, dataset.Students, 2)

	assert.Equal(t, "Smith, John", dataset.Students[0].Name)
	assert.Equal(t, "john@example.com", dataset.Students[0].Email)
	require.Len(t, dataset.Students[0].Labs, 2)
	assert.InDelta(t, 0.5, dataset.Students[0].Labs[1].Completion, 0.0001)

	assert.Equal(t, "Adams, Amy", dataset.Students[1].Name)
	assert.Equal(t, "amy@example.com", dataset.Students[1].Email)
}

func TestMapper_ExplicitEmailWinsOverEmbedded(t *testing.T) {
	file := &GradebookFile{Students: []GradebookStudentDTO{
		{Name: "Smith, John (stale@example.com)", Email: "fresh@example.com"},
	}}

	dataset := NewMapper().CompletionDataset(file)
	require.Len(t, dataset.Students, 1)
	assert.Equal(t, "Smith, John", dataset.Students[0].Name)
	assert.Equal(t, "fresh@example.com", dataset.Students[0].Email)
}

func writeSnapshotDir(t *testing.T, base, folder string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(base, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestLoader_LoadLatest(t *testing.T) {
	base := t.TempDir()
	writeSnapshotDir(t, base, "25-04-14", map[string]string{
		"classgradebook-4-14-9am.json": `{"students": []}`,
	})
	writeSnapshotDir(t, base, "25-04-21", map[string]string{
		"classgradebook-4-21-9am.json":    gradebookJSON,
		"classstudyhistory-4-21-9am.json": studyHistoryJSON,
		"notes.txt":                       "ignored",
	})

	loader := NewLoader(base, nil)
	snap, folder, err := loader.LoadLatest()
	require.NoError(t, err)

	assert.Equal(t, "25-04-21", folder)
	require.Len(t, snap.Completion.Students, 2)
	require.Len(t, snap.Study.Students, 1)

	daily := snap.Study.Students[0].DailyStudy
	require.Len(t, daily, 2)
	assert.Equal(t, 3600, daily[0].Seconds)
	assert.Equal(t, 1800, daily[1].Seconds)
}

func TestLoader_MissingFileDegradesToEmptyDataset(t *testing.T) {
	base := t.TempDir()
	writeSnapshotDir(t, base, "25-04-21", map[string]string{
		"classgradebook-4-21-9am.json": gradebookJSON,
	})

	snap, err := NewLoader(base, nil).Load("25-04-21")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Completion.Students)
	assert.Empty(t, snap.Study.Students)
}

func TestLoader_NoDateFoldersIsSourceMissing(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "not-a-date"), 0o755))

	_, _, err := NewLoader(base, nil).LoadLatest()
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestLoader_CorruptFileFailsLoad(t *testing.T) {
	base := t.TempDir()
	writeSnapshotDir(t, base, "25-04-21", map[string]string{
		"classgradebook-4-21-9am.json": `{"students": [`,
	})

	_, err := NewLoader(base, nil).Load("25-04-21")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}
