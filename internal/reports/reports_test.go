package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
)

func fixedClock() time.Time {
	return time.Date(2025, time.April, 21, 9, 0, 0, 0, time.UTC)
}

func sampleRecord() metrics.CompositeMetricsRecord {
	return metrics.CompositeMetricsRecord{
		Name:  "Smith, John",
		Email: "john@example.com",
		Modules: []metrics.ModuleRollup{
			{Module: 1, LabsTotal: 2, LabsCompleted: 1, LabsRate: 50,
				AssessmentsTotal: 1, AssessmentsCompleted: 1, AssessmentsAvgScore: 90, AssessmentsRate: 100},
			{Module: 2, LabsTotal: 4, LabsCompleted: 1, LabsRate: 25},
		},
		Categories: []metrics.CategoryRollup{
			{Category: metrics.CategoryQuiz, Total: 1, Completed: 1, AvgScore: 90, Rate: 100},
		},
		Weekly: []metrics.WeekRollup{
			{Week: 1, StudySeconds: 5400, StudyDays: 2},
		},
		StudyTime: metrics.StudyTotals{
			TotalSeconds: 5400, StudyDays: 2, AvgDailySeconds: 2700,
			TotalFormatted: "1h 30m 0s", AvgDailyFormatted: "45m 0s",
		},
		Ranges: []metrics.ModuleRangeRollup{
			{Range: metrics.RangeEarly, Modules: []int{1, 2, 3, 4, 5},
				LabsTotal: 6, LabsCompleted: 2, LabsRate: 33.3,
				AssessmentsTotal: 1, AssessmentsCompleted: 1, AssessmentsAvgScore: 90, AssessmentsRate: 100},
		},
		Summary: metrics.SummaryScore{
			TotalLabs: 6, TotalLabsCompleted: 2,
			TotalAssessments: 1, TotalAssessmentsCompleted: 1,
			LabsCompletionRate: 33.3, AssessmentsCompletionRate: 100, AssessmentsAvgScore: 90,
			ProgressScore: 60, EngagementScore: 5.6, OverallScore: 43.7,
		},
	}
}

func TestMarkdownRenderer_StudentReport(t *testing.T) {
	r := NewMarkdownRendererAt(fixedClock)
	rec := sampleRecord()

	report := r.StudentReport(&rec)

	assert.Contains(t, report, "# Progress Report: Smith, John")
	assert.Contains(t, report, "**Email:** john@example.com")
	assert.Contains(t, report, "**Report Date:** April 21, 2025")
	assert.Contains(t, report, "| Overall Score | 43.7% |")
	assert.Contains(t, report, "| Labs Completed | 2 / 6 (33.3%) |")
	assert.Contains(t, report, "### Early Modules (1-2-3-4-5)")
	assert.Contains(t, report, "| Module 1 | 1 / 2 | 50.0% | 90.0% | 100.0% |")
	assert.Contains(t, report, "| Week 1 | 1h 30m 0s | 2 |")
	assert.Contains(t, report, "| Quiz | 1 | 1 | 90.0% | 100.0% |")
}

func TestMarkdownRenderer_Recommendations(t *testing.T) {
	r := NewMarkdownRendererAt(fixedClock)
	rec := sampleRecord()

	report := r.StudentReport(&rec)

	// Labs rate 33.3, study days 2, total time 1.5h: three generic bullets
	// plus the lagging-modules one for modules 1 and 2.
	assert.Contains(t, report, "**Focus on completing more labs**")
	assert.Contains(t, report, "**Increase study frequency**")
	assert.Contains(t, report, "**Increase total study time**")
	assert.Contains(t, report, "**Focus on modules 2**")
	// Assessment average is 90, so no review bullet.
	assert.NotContains(t, report, "**Review assessment material**")
}

func TestMarkdownRenderer_ClassSummary(t *testing.T) {
	r := NewMarkdownRendererAt(fixedClock)

	a := sampleRecord()
	b := sampleRecord()
	b.Name = "Adams, Amy"
	b.Summary.OverallScore = 80

	report := r.ClassSummary([]metrics.CompositeMetricsRecord{a, b})

	assert.Contains(t, report, "# Class Summary Report")
	// (43.7 + 80) / 2
	assert.Contains(t, report, "| Overall Score | 61.9% |")
	// Higher score ranks first.
	assert.Contains(t, report, "| 1 | Adams, Amy |")
	assert.Contains(t, report, "| 2 | Smith, John |")
	assert.Contains(t, report, "| Module 1 |")
}

func TestMarkdownRenderer_ClassSummaryEmpty(t *testing.T) {
	r := NewMarkdownRendererAt(fixedClock)

	report := r.ClassSummary(nil)
	assert.Contains(t, report, "| Overall Score | 0.0% |")
}

func TestRankByOverallScore_TiesBreakOnName(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.Name = "Adams, Amy"

	ranked := RankByOverallScore([]metrics.CompositeMetricsRecord{a, b})
	require.Len(t, ranked, 2)
	assert.Equal(t, "Adams, Amy", ranked[0].Name)
	assert.Equal(t, "Smith, John", ranked[1].Name)
}

func TestModuleAverages_SkipEmptyContributions(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	// Student b has no labs in module 2; their zero rate must not drag the
	// class average down.
	b.Modules = []metrics.ModuleRollup{
		{Module: 2, LabsTotal: 0, AssessmentsTotal: 2, AssessmentsCompleted: 1, AssessmentsAvgScore: 70, AssessmentsRate: 50},
	}

	averages := moduleAverages([]metrics.CompositeMetricsRecord{a, b})
	require.Len(t, averages, 2)

	m2 := averages[1]
	assert.Equal(t, 2, m2.Module)
	// Only student a has labs in module 2.
	assert.InDelta(t, 25.0, m2.LabsRate, 0.001)
	// Only student b has assessments in module 2.
	assert.InDelta(t, 50.0, m2.AssessmentsRate, 0.001)
	assert.InDelta(t, 70.0, m2.AssessmentsScore, 0.001)
}

func TestExcelExporter_ClassSummary(t *testing.T) {
	e := NewExcelExporter()

	f, err := e.ClassSummary([]metrics.CompositeMetricsRecord{sampleRecord()})
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{sheetOverview, sheetRankings, sheetModules}, f.GetSheetList())

	name, err := f.GetCellValue(sheetRankings, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Smith, John", name)

	metric, err := f.GetCellValue(sheetOverview, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Overall Score", metric)
}

func TestExcelExporter_WriteClassSummary(t *testing.T) {
	e := NewExcelExporter()
	path := t.TempDir() + "/class_summary.xlsx"

	require.NoError(t, e.WriteClassSummary([]metrics.CompositeMetricsRecord{sampleRecord()}, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	count, err := f.GetCellValue(sheetOverview, "B2")
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}
