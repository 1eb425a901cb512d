package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newScorer() *CompositeScorer {
	return NewCompositeScorer(DefaultConfig().Weights)
}

func TestCompositeScorer_BothSources(t *testing.T) {
	s := newScorer()

	sum := s.Summarize([]ModuleRollup{
		{Module: 1, LabsTotal: 2, LabsCompleted: 1, AssessmentsTotal: 1, AssessmentsCompleted: 1, AssessmentsAvgScore: 90},
	}, StudyTotals{TotalSeconds: 5400, StudyDays: 2})

	assert.Equal(t, 2, sum.TotalLabs)
	assert.Equal(t, 1, sum.TotalLabsCompleted)
	assert.Equal(t, 1, sum.TotalAssessments)
	assert.Equal(t, 1, sum.TotalAssessmentsCompleted)
	assert.InDelta(t, 50.0, sum.LabsCompletionRate, 0.001)
	assert.InDelta(t, 100.0, sum.AssessmentsCompletionRate, 0.001)
	assert.InDelta(t, 90.0, sum.AssessmentsAvgScore, 0.001)

	// 50*0.6 + 100*0.4
	assert.InDelta(t, 70.0, sum.ProgressScore, 0.001)
	// time: 5400/3600/40*100 = 3.75, days: 2/20*100 = 10 -> 3.75*0.7 + 10*0.3
	assert.InDelta(t, 5.625, sum.EngagementScore, 0.001)
	// 70*0.7 + 5.625*0.3
	assert.InDelta(t, 50.6875, sum.OverallScore, 0.001)
}

func TestCompositeScorer_SingleSourceProgress(t *testing.T) {
	s := newScorer()

	// Labs only: progress is the lab rate, unweighted.
	sum := s.Summarize([]ModuleRollup{
		{Module: 1, LabsTotal: 4, LabsCompleted: 3},
	}, StudyTotals{})
	assert.InDelta(t, 75.0, sum.ProgressScore, 0.001)

	// Assessments only: progress is the assessment rate, unweighted.
	sum = s.Summarize([]ModuleRollup{
		{Module: 1, AssessmentsTotal: 4, AssessmentsCompleted: 1, AssessmentsAvgScore: 55},
	}, StudyTotals{})
	assert.InDelta(t, 25.0, sum.ProgressScore, 0.001)

	// Nothing at all: zero across the board.
	sum = s.Summarize(nil, StudyTotals{})
	assert.InDelta(t, 0.0, sum.ProgressScore, 0.001)
	assert.InDelta(t, 0.0, sum.OverallScore, 0.001)
}

func TestCompositeScorer_EngagementCapsAtHundred(t *testing.T) {
	s := newScorer()

	// 80 hours over 40 days saturates both components.
	sum := s.Summarize(nil, StudyTotals{TotalSeconds: 80 * 3600, StudyDays: 40})
	assert.InDelta(t, 100.0, sum.EngagementScore, 0.001)
	assert.InDelta(t, 30.0, sum.OverallScore, 0.001)
}

func TestCompositeScorer_AvgScoreRecomposition(t *testing.T) {
	s := newScorer()

	// The overall average weights per-module averages by assessment count.
	sum := s.Summarize([]ModuleRollup{
		{Module: 1, AssessmentsTotal: 3, AssessmentsCompleted: 3, AssessmentsAvgScore: 90},
		{Module: 2, AssessmentsTotal: 1, AssessmentsCompleted: 0, AssessmentsAvgScore: 50},
	}, StudyTotals{})

	// (90*3 + 50*1) / 4
	assert.InDelta(t, 80.0, sum.AssessmentsAvgScore, 0.001)
	assert.InDelta(t, 75.0, sum.AssessmentsCompletionRate, 0.001)
}
