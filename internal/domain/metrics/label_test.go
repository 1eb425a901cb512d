package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelParser_Labs(t *testing.T) {
	parser := NewLabelParser(DefaultConfig().Categories)

	parsed := parser.Parse("Lab - 3.2 Configuring Switches")
	assert.Equal(t, KindLab, parsed.Kind)
	assert.True(t, parsed.HasModule)
	assert.Equal(t, 3, parsed.Module)
	assert.Equal(t, CategoryLab, parsed.Category)

	parsed = parser.Parse("Lab - 12.1.4 Troubleshooting")
	assert.True(t, parsed.HasModule)
	assert.Equal(t, 12, parsed.Module)
}

func TestLabelParser_Assessments(t *testing.T) {
	parser := NewLabelParser(DefaultConfig().Categories)

	tests := []struct {
		label    string
		category Category
	}{
		{"Assessment - 1.1 Module Quiz", CategoryQuiz},
		{"Assessment - 5.3 Checkpoint Review", CategoryExam},
		{"Assessment - 2.4 Interactive Activity", CategoryQuiz},
		{"Assessment - 7.2 Lesson Review", CategoryQuiz},
		{"Assessment - 9.9 Something Else", CategoryQuiz},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			parsed := parser.Parse(tt.label)
			assert.Equal(t, KindAssessment, parsed.Kind)
			assert.True(t, parsed.HasModule)
			assert.Equal(t, tt.category, parsed.Category)
		})
	}
}

func TestLabelParser_CategoryPriorityOrder(t *testing.T) {
	parser := NewLabelParser(DefaultConfig().Categories)

	// "Module Quiz" is declared before "Checkpoint Review", so a label
	// containing both resolves to Quiz.
	parsed := parser.Parse("Assessment - 4.1 Module Quiz Checkpoint Review")
	assert.Equal(t, CategoryQuiz, parsed.Category)
}

func TestLabelParser_AppendixModulesStayUnresolved(t *testing.T) {
	parser := NewLabelParser(DefaultConfig().Categories)

	// Appendix-style labels split into ["Assessment - B", "2", "6 ..."], so
	// the module text is the bare "B" and never resolves to a number.
	parsed := parser.Parse("Assessment - B.2.6 Packet Tracer Skills")
	assert.Equal(t, KindAssessment, parsed.Kind)
	assert.False(t, parsed.HasModule)
	assert.Equal(t, 0, parsed.Module)
}

func TestLabelParser_Unparseable(t *testing.T) {
	parser := NewLabelParser(DefaultConfig().Categories)

	for _, label := range []string{
		"",
		"Practice - 1.2 Warmup",
		"Lab without prefix separator",
		"lab - 3.2 lowercase prefix",
	} {
		parsed := parser.Parse(label)
		assert.Equal(t, KindUnparseable, parsed.Kind, "label %q", label)
	}
}

func TestLabelParser_PrefixWithoutModuleNumber(t *testing.T) {
	parser := NewLabelParser(DefaultConfig().Categories)

	// Known prefix but no period-separated module number: kind survives,
	// the module does not.
	parsed := parser.Parse("Lab - Final Challenge")
	assert.Equal(t, KindLab, parsed.Kind)
	assert.False(t, parsed.HasModule)

	parsed = parser.Parse("Assessment - Final Exam")
	assert.Equal(t, KindAssessment, parsed.Kind)
	assert.False(t, parsed.HasModule)
}
