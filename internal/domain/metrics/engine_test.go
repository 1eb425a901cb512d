package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Completion: CompletionDataset{Students: []CompletionStudent{
			{
				Name:  "Smith, John",
				Email: "john@example.com",
				Labs: []ResourceRecord{
					{Label: "Lab - 1.1 Basics", Completion: 1.0},
					{Label: "Lab - 1.2 Advanced", Completion: 0.5},
				},
				Assessments: []ResourceRecord{
					{Label: "Assessment - 1.1 Module Quiz", Completion: 0.9},
				},
			},
		}},
		Study: StudyDataset{Students: []StudyStudent{
			{
				Name: "Smith, John",
				DailyStudy: []DailyStudyRecord{
					{DateLabel: "Apr 15, Tuesday", Seconds: 3600},
					{DateLabel: "Apr 16, Wednesday", Seconds: 1800},
				},
			},
		}},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AnchorYear = 2025
	return cfg
}

func TestEngine_Run_FullPipeline(t *testing.T) {
	engine := NewEngine(testConfig(), nil)

	records := engine.Run(testSnapshot())
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Smith, John", rec.Name)
	assert.Equal(t, "john@example.com", rec.Email)

	m, ok := rec.Module(1)
	require.True(t, ok)
	assert.Equal(t, 2, m.LabsTotal)
	assert.Equal(t, 1, m.LabsCompleted)
	assert.InDelta(t, 50.0, m.LabsRate, 0.001)
	assert.Equal(t, 1, m.AssessmentsTotal)
	assert.Equal(t, 1, m.AssessmentsCompleted)
	assert.InDelta(t, 90.0, m.AssessmentsAvgScore, 0.001)
	assert.InDelta(t, 100.0, m.AssessmentsRate, 0.001)

	w, ok := rec.Week(1)
	require.True(t, ok)
	assert.Equal(t, 5400, w.StudySeconds)
	assert.Equal(t, 2, w.StudyDays)

	assert.Equal(t, 5400, rec.StudyTime.TotalSeconds)
	assert.Equal(t, 2, rec.StudyTime.StudyDays)
	assert.Equal(t, 2700, rec.StudyTime.AvgDailySeconds)
	assert.Equal(t, "1h 30m 0s", rec.StudyTime.TotalFormatted)

	early, ok := rec.RangeByName(RangeEarly)
	require.True(t, ok)
	assert.Equal(t, 2, early.LabsTotal)
	assert.Equal(t, 1, early.AssessmentsTotal)

	require.Len(t, rec.Categories, 1)
	assert.Equal(t, CategoryQuiz, rec.Categories[0].Category)

	assert.InDelta(t, 70.0, rec.Summary.ProgressScore, 0.001)
	assert.InDelta(t, 5.625, rec.Summary.EngagementScore, 0.001)
	assert.InDelta(t, 50.6875, rec.Summary.OverallScore, 0.001)
}

func TestEngine_Run_MissingDatasetsStillEmitRecords(t *testing.T) {
	engine := NewEngine(testConfig(), nil)

	snap := testSnapshot()
	snap.Study = StudyDataset{}

	records := engine.Run(snap)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].StudyTime.TotalSeconds)
	assert.InDelta(t, 0.0, records[0].Summary.EngagementScore, 0.001)
	// Progress still reflects the completion side.
	assert.InDelta(t, 70.0, records[0].Summary.ProgressScore, 0.001)
}

func TestEngine_Run_EmptySnapshot(t *testing.T) {
	engine := NewEngine(testConfig(), nil)
	assert.Empty(t, engine.Run(Snapshot{}))
}

func TestEngine_Run_DeterministicAcrossWorkers(t *testing.T) {
	snap := Snapshot{}
	for _, name := range []string{"Young, Zoe", "Brown, Ada", "Smith, John", "Kim, Lee", "Diaz, Ana"} {
		snap.Completion.Students = append(snap.Completion.Students, CompletionStudent{
			Name: name,
			Labs: []ResourceRecord{{Label: "Lab - 1.1 Basics", Completion: 1.0}},
		})
		snap.Study.Students = append(snap.Study.Students, StudyStudent{
			Name:       name,
			DailyStudy: []DailyStudyRecord{{DateLabel: "Apr 15", Seconds: 1200}},
		})
	}

	serial := testConfig()
	serial.Workers = 1
	parallel := testConfig()
	parallel.Workers = 8

	a := NewEngine(serial, nil).Run(snap)
	b := NewEngine(parallel, nil).Run(snap)

	assert.Equal(t, a, b)

	// Output order is the sorted normalized name order.
	names := make([]string, 0, len(b))
	for _, rec := range b {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"Brown, Ada", "Diaz, Ana", "Kim, Lee", "Smith, John", "Young, Zoe"}, names)
}

func TestEngine_Run_Idempotent(t *testing.T) {
	engine := NewEngine(testConfig(), nil)
	snap := testSnapshot()

	first := engine.Run(snap)
	second := engine.Run(snap)
	assert.Equal(t, first, second)
}
