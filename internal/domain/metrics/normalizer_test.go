package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordNormalizer_UnionsBothSources(t *testing.T) {
	n := NewRecordNormalizer()

	records := n.Normalize(Snapshot{
		Completion: CompletionDataset{Students: []CompletionStudent{
			{Name: "Smith, John", Email: "john@example.com", Labs: []ResourceRecord{{Label: "Lab - 1.1", Completion: 1.0}}},
			{Name: "Adams, Amy", Email: "amy@example.com"},
		}},
		Study: StudyDataset{Students: []StudyStudent{
			{Name: "Smith, John", DailyStudy: []DailyStudyRecord{{DateLabel: "Apr 15", Seconds: 600}}},
			{Name: "Zhou, Wei", Email: "wei@example.com", DailyStudy: []DailyStudyRecord{{DateLabel: "Apr 16", Seconds: 300}}},
		}},
	})

	require.Len(t, records, 3)

	// Sorted by normalized name.
	assert.Equal(t, "Adams, Amy", records[0].Name)
	assert.Equal(t, "Smith, John", records[1].Name)
	assert.Equal(t, "Zhou, Wei", records[2].Name)

	// Completion-only student keeps empty study history.
	assert.Empty(t, records[0].DailyStudy)

	// Merged student has both sides.
	assert.Len(t, records[1].Labs, 1)
	assert.Len(t, records[1].DailyStudy, 1)

	// Study-only student keeps empty resource lists.
	assert.Empty(t, records[2].Labs)
	assert.Empty(t, records[2].Assessments)
}

func TestRecordNormalizer_NameWhitespaceIsTheJoinKey(t *testing.T) {
	n := NewRecordNormalizer()

	records := n.Normalize(Snapshot{
		Completion: CompletionDataset{Students: []CompletionStudent{
			{Name: "  Smith, John  ", Email: "john@example.com"},
		}},
		Study: StudyDataset{Students: []StudyStudent{
			{Name: "Smith, John", DailyStudy: []DailyStudyRecord{{DateLabel: "Apr 15", Seconds: 60}}},
		}},
	})

	require.Len(t, records, 1)
	assert.Equal(t, "Smith, John", records[0].Name)
	assert.Len(t, records[0].DailyStudy, 1)
}

func TestRecordNormalizer_CompletionEmailWins(t *testing.T) {
	n := NewRecordNormalizer()

	records := n.Normalize(Snapshot{
		Completion: CompletionDataset{Students: []CompletionStudent{
			{Name: "Smith, John", Email: "primary@example.com"},
		}},
		Study: StudyDataset{Students: []StudyStudent{
			{Name: "Smith, John", Email: "stale@example.com"},
		}},
	})

	require.Len(t, records, 1)
	assert.Equal(t, "primary@example.com", records[0].Email)
}

func TestRecordNormalizer_StudyEmailFillsGap(t *testing.T) {
	n := NewRecordNormalizer()

	records := n.Normalize(Snapshot{
		Completion: CompletionDataset{Students: []CompletionStudent{
			{Name: "Smith, John"},
		}},
		Study: StudyDataset{Students: []StudyStudent{
			{Name: "Smith, John", Email: "only@example.com"},
		}},
	})

	require.Len(t, records, 1)
	assert.Equal(t, "only@example.com", records[0].Email)
}

func TestRecordNormalizer_EmptySnapshot(t *testing.T) {
	n := NewRecordNormalizer()
	assert.Empty(t, n.Normalize(Snapshot{}))
}
