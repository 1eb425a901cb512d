package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModuleAggregator() *ModuleAggregator {
	return NewModuleAggregator(NewLabelParser(DefaultConfig().Categories))
}

func TestModuleAggregator_LabCompletionIsExact(t *testing.T) {
	a := newModuleAggregator()

	modules, _ := a.Aggregate([]ResourceRecord{
		{Label: "Lab - 1.1 Basics", Completion: 1.0},
		{Label: "Lab - 1.2 Advanced", Completion: 0.99},
		{Label: "Lab - 1.3 Review", Completion: 0.5},
	}, nil)

	require.Len(t, modules, 1)
	m := modules[0]
	assert.Equal(t, 1, m.Module)
	assert.Equal(t, 3, m.LabsTotal)
	assert.Equal(t, 1, m.LabsCompleted)
	assert.InDelta(t, 33.333, m.LabsRate, 0.01)
}

func TestModuleAggregator_AssessmentPassThreshold(t *testing.T) {
	a := newModuleAggregator()

	modules, _ := a.Aggregate(nil, []ResourceRecord{
		{Label: "Assessment - 2.1 Module Quiz", Completion: 0.7},
		{Label: "Assessment - 2.2 Module Quiz", Completion: 0.69},
		{Label: "Assessment - 2.3 Module Quiz", Completion: 1.0},
	})

	require.Len(t, modules, 1)
	m := modules[0]
	assert.Equal(t, 3, m.AssessmentsTotal)
	assert.Equal(t, 2, m.AssessmentsCompleted)
	assert.InDelta(t, 79.666, m.AssessmentsAvgScore, 0.01)
	assert.InDelta(t, 66.666, m.AssessmentsRate, 0.01)
}

func TestModuleAggregator_SortedByModule(t *testing.T) {
	a := newModuleAggregator()

	modules, _ := a.Aggregate([]ResourceRecord{
		{Label: "Lab - 11.1 Later", Completion: 1.0},
		{Label: "Lab - 2.1 Earlier", Completion: 1.0},
		{Label: "Lab - 7.1 Middle", Completion: 0.0},
	}, nil)

	require.Len(t, modules, 3)
	assert.Equal(t, 2, modules[0].Module)
	assert.Equal(t, 7, modules[1].Module)
	assert.Equal(t, 11, modules[2].Module)
}

func TestModuleAggregator_SkipsUnresolvedModules(t *testing.T) {
	a := newModuleAggregator()

	modules, categories := a.Aggregate(
		[]ResourceRecord{
			{Label: "Lab - Final Challenge", Completion: 1.0},
			{Label: "Practice - 1.1 Warmup", Completion: 1.0},
		},
		[]ResourceRecord{
			{Label: "Assessment - B.2.6 Packet Tracer Skills", Completion: 0.95},
		},
	)

	assert.Empty(t, modules)
	assert.Empty(t, categories)
}

func TestModuleAggregator_CategoryRollups(t *testing.T) {
	a := newModuleAggregator()

	_, categories := a.Aggregate(nil, []ResourceRecord{
		{Label: "Assessment - 1.1 Module Quiz", Completion: 0.8},
		{Label: "Assessment - 3.2 Lesson Review", Completion: 0.6},
		{Label: "Assessment - 5.1 Checkpoint Review", Completion: 0.9},
		{Label: "Assessment - 10.1 Checkpoint Review", Completion: 0.5},
	})

	require.Len(t, categories, 2)

	// Sorted by category name: Exam before Quiz.
	exam := categories[0]
	assert.Equal(t, CategoryExam, exam.Category)
	assert.Equal(t, 2, exam.Total)
	assert.Equal(t, 1, exam.Completed)
	assert.InDelta(t, 70.0, exam.AvgScore, 0.001)
	assert.InDelta(t, 50.0, exam.Rate, 0.001)

	quiz := categories[1]
	assert.Equal(t, CategoryQuiz, quiz.Category)
	assert.Equal(t, 2, quiz.Total)
	assert.Equal(t, 1, quiz.Completed)
	assert.InDelta(t, 70.0, quiz.AvgScore, 0.001)
}

func TestModuleAggregator_EmptyInputs(t *testing.T) {
	a := newModuleAggregator()

	modules, categories := a.Aggregate(nil, nil)
	assert.Empty(t, modules)
	assert.Empty(t, categories)
}
