package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudyAggregator() *StudyTimeAggregator {
	return NewStudyTimeAggregator(NewWeekBucketer(2025))
}

func TestStudyTimeAggregator_WeeklyBuckets(t *testing.T) {
	a := newStudyAggregator()

	weekly, totals := a.Aggregate([]DailyStudyRecord{
		{DateLabel: "Apr 15, Tuesday", Seconds: 3600},
		{DateLabel: "Apr 16, Wednesday", Seconds: 1800},
		{DateLabel: "Apr 23, Wednesday", Seconds: 7200},
	})

	require.Len(t, weekly, 2)
	assert.Equal(t, 1, weekly[0].Week)
	assert.Equal(t, 5400, weekly[0].StudySeconds)
	assert.Equal(t, 2, weekly[0].StudyDays)
	assert.Equal(t, 2, weekly[1].Week)
	assert.Equal(t, 7200, weekly[1].StudySeconds)
	assert.Equal(t, 1, weekly[1].StudyDays)

	assert.Equal(t, 12600, totals.TotalSeconds)
	assert.Equal(t, 3, totals.StudyDays)
	assert.Equal(t, 4200, totals.AvgDailySeconds)
	assert.Equal(t, "3h 30m 0s", totals.TotalFormatted)
	assert.Equal(t, "1h 10m 0s", totals.AvgDailyFormatted)
}

func TestStudyTimeAggregator_ZeroSecondDaysAreInactive(t *testing.T) {
	a := newStudyAggregator()

	weekly, totals := a.Aggregate([]DailyStudyRecord{
		{DateLabel: "Apr 15", Seconds: 600},
		{DateLabel: "Apr 16", Seconds: 0},
	})

	require.Len(t, weekly, 1)
	assert.Equal(t, 600, weekly[0].StudySeconds)
	assert.Equal(t, 1, weekly[0].StudyDays)
	assert.Equal(t, 1, totals.StudyDays)
	assert.Equal(t, 600, totals.AvgDailySeconds)
}

func TestStudyTimeAggregator_EmptyDateLabelsSkipped(t *testing.T) {
	a := newStudyAggregator()

	weekly, totals := a.Aggregate([]DailyStudyRecord{
		{DateLabel: "", Seconds: 9999},
		{DateLabel: "Apr 15", Seconds: 100},
	})

	require.Len(t, weekly, 1)
	assert.Equal(t, 100, totals.TotalSeconds)
}

func TestStudyTimeAggregator_AvgUsesIntegerDivision(t *testing.T) {
	a := newStudyAggregator()

	_, totals := a.Aggregate([]DailyStudyRecord{
		{DateLabel: "Apr 15", Seconds: 100},
		{DateLabel: "Apr 16", Seconds: 101},
	})

	assert.Equal(t, 201, totals.TotalSeconds)
	assert.Equal(t, 100, totals.AvgDailySeconds)
}

func TestStudyTimeAggregator_NoEntries(t *testing.T) {
	a := newStudyAggregator()

	weekly, totals := a.Aggregate(nil)
	assert.Empty(t, weekly)
	assert.Equal(t, 0, totals.TotalSeconds)
	assert.Equal(t, 0, totals.StudyDays)
	assert.Equal(t, 0, totals.AvgDailySeconds)
	assert.Equal(t, "0s", totals.TotalFormatted)
	assert.Equal(t, "0s", totals.AvgDailyFormatted)
}
