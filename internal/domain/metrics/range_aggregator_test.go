package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleRangeAggregator_GroupsByRange(t *testing.T) {
	a := NewModuleRangeAggregator(DefaultConfig().Ranges)

	rollups := a.Aggregate([]ModuleRollup{
		{Module: 1, LabsTotal: 4, LabsCompleted: 2, AssessmentsTotal: 2, AssessmentsCompleted: 1, AssessmentsAvgScore: 80},
		{Module: 3, LabsTotal: 2, LabsCompleted: 2, AssessmentsTotal: 1, AssessmentsCompleted: 1, AssessmentsAvgScore: 95},
		{Module: 7, LabsTotal: 3, LabsCompleted: 0},
		{Module: 14, LabsTotal: 1, LabsCompleted: 1, AssessmentsTotal: 4, AssessmentsCompleted: 2, AssessmentsAvgScore: 60},
	})

	require.Len(t, rollups, 3)

	early := rollups[0]
	assert.Equal(t, RangeEarly, early.Range)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, early.Modules)
	assert.Equal(t, 6, early.LabsTotal)
	assert.Equal(t, 4, early.LabsCompleted)
	assert.InDelta(t, 66.666, early.LabsRate, 0.01)
	assert.Equal(t, 3, early.AssessmentsTotal)
	assert.Equal(t, 2, early.AssessmentsCompleted)
	// (80*2 + 95*1) / 3
	assert.InDelta(t, 85.0, early.AssessmentsAvgScore, 0.001)
	assert.InDelta(t, 66.666, early.AssessmentsRate, 0.01)

	middle := rollups[1]
	assert.Equal(t, RangeMiddle, middle.Range)
	assert.Equal(t, 3, middle.LabsTotal)
	assert.Equal(t, 0, middle.LabsCompleted)
	assert.InDelta(t, 0.0, middle.LabsRate, 0.001)
	assert.Equal(t, 0, middle.AssessmentsTotal)
	assert.InDelta(t, 0.0, middle.AssessmentsAvgScore, 0.001)

	late := rollups[2]
	assert.Equal(t, RangeLate, late.Range)
	assert.Equal(t, 1, late.LabsTotal)
	assert.Equal(t, 4, late.AssessmentsTotal)
	assert.InDelta(t, 60.0, late.AssessmentsAvgScore, 0.001)
	assert.InDelta(t, 50.0, late.AssessmentsRate, 0.001)
}

func TestModuleRangeAggregator_EmptyInputStillEmitsAllRanges(t *testing.T) {
	a := NewModuleRangeAggregator(DefaultConfig().Ranges)

	rollups := a.Aggregate(nil)
	require.Len(t, rollups, 3)
	for _, r := range rollups {
		assert.Equal(t, 0, r.LabsTotal)
		assert.Equal(t, 0, r.AssessmentsTotal)
		assert.InDelta(t, 0.0, r.LabsRate, 0.001)
	}
}
