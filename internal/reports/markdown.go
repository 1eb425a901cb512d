// Package reports renders computed metrics records into the delivery
// formats the instructors consume: per-student and class-summary markdown,
// plus an Excel workbook for the class overview.
package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
	"github.com/compita-hub/compita-metrics-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARKDOWN RENDERER
// ══════════════════════════════════════════════════════════════════════════════

// MarkdownRenderer renders metrics records as markdown reports.
type MarkdownRenderer struct {
	now func() time.Time
}

// NewMarkdownRenderer creates a renderer stamping reports with the current
// date.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{now: time.Now}
}

// NewMarkdownRendererAt creates a renderer with a fixed clock. Used by tests
// and by batch runs that stamp every report with the snapshot date.
func NewMarkdownRendererAt(now func() time.Time) *MarkdownRenderer {
	return &MarkdownRenderer{now: now}
}

func (r *MarkdownRenderer) reportDate() string {
	return r.now().Format("January 2, 2006")
}

// StudentReport renders the progress report of one student.
func (r *MarkdownRenderer) StudentReport(rec *metrics.CompositeMetricsRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Progress Report: %s\n", rec.Name)
	fmt.Fprintf(&b, "**Email:** %s\n", rec.Email)
	fmt.Fprintf(&b, "**Report Date:** %s\n\n", r.reportDate())

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Overall Score | %.1f%% |\n", rec.Summary.OverallScore)
	fmt.Fprintf(&b, "| Progress Score | %.1f%% |\n", rec.Summary.ProgressScore)
	fmt.Fprintf(&b, "| Engagement Score | %.1f%% |\n", rec.Summary.EngagementScore)
	fmt.Fprintf(&b, "| Labs Completed | %d / %d (%.1f%%) |\n",
		rec.Summary.TotalLabsCompleted, rec.Summary.TotalLabs, rec.Summary.LabsCompletionRate)
	fmt.Fprintf(&b, "| Assessments Completed | %d / %d (%.1f%%) |\n",
		rec.Summary.TotalAssessmentsCompleted, rec.Summary.TotalAssessments, rec.Summary.AssessmentsCompletionRate)
	fmt.Fprintf(&b, "| Assessment Average Score | %.1f%% |\n", rec.Summary.AssessmentsAvgScore)
	fmt.Fprintf(&b, "| Total Study Time | %s |\n", rec.StudyTime.TotalFormatted)
	fmt.Fprintf(&b, "| Study Days | %d |\n", rec.StudyTime.StudyDays)
	fmt.Fprintf(&b, "| Average Daily Study Time | %s |\n\n", rec.StudyTime.AvgDailyFormatted)

	b.WriteString("## Module Progress\n\n")
	for _, mr := range rec.Ranges {
		fmt.Fprintf(&b, "### %s Modules (%s)\n\n", capitalize(string(mr.Range)), joinInts(mr.Modules, "-"))
		b.WriteString("| Metric | Value |\n")
		b.WriteString("|--------|-------|\n")
		fmt.Fprintf(&b, "| Labs Completed | %d / %d (%.1f%%) |\n",
			mr.LabsCompleted, mr.LabsTotal, mr.LabsRate)
		fmt.Fprintf(&b, "| Assessments Completed | %d / %d (%.1f%%) |\n",
			mr.AssessmentsCompleted, mr.AssessmentsTotal, mr.AssessmentsRate)
		fmt.Fprintf(&b, "| Assessment Average Score | %.1f%% |\n\n", mr.AssessmentsAvgScore)
	}

	b.WriteString("### Individual Module Details\n\n")
	b.WriteString("| Module | Labs Completed | Labs Completion % | Assessment Avg. Score | Assessment Completion % |\n")
	b.WriteString("|--------|---------------|-------------------|------------------------|-------------------------|\n")
	for _, m := range rec.Modules {
		fmt.Fprintf(&b, "| Module %d | %d / %d | %.1f%% | %.1f%% | %.1f%% |\n",
			m.Module, m.LabsCompleted, m.LabsTotal, m.LabsRate, m.AssessmentsAvgScore, m.AssessmentsRate)
	}
	b.WriteString("\n")

	b.WriteString("## Weekly Activity\n\n")
	b.WriteString("| Week | Study Time | Study Days |\n")
	b.WriteString("|------|------------|------------|\n")
	for _, w := range rec.Weekly {
		fmt.Fprintf(&b, "| Week %d | %s | %d |\n",
			w.Week, timeutil.FormatSeconds(w.StudySeconds), w.StudyDays)
	}
	b.WriteString("\n")

	b.WriteString("## Assessment Performance\n\n")
	b.WriteString("| Assessment Type | Completed | Total | Avg. Score | Completion % |\n")
	b.WriteString("|-----------------|-----------|-------|------------|--------------|\n")
	for _, c := range rec.Categories {
		fmt.Fprintf(&b, "| %s | %d | %d | %.1f%% | %.1f%% |\n",
			c.Category, c.Completed, c.Total, c.AvgScore, c.Rate)
	}
	b.WriteString("\n")

	b.WriteString("## Recommendations\n\n")
	for _, advice := range r.recommendations(rec) {
		fmt.Fprintf(&b, "- %s\n", advice)
	}

	return b.String()
}

// recommendations derives the advice bullets from the record's metrics.
// Thresholds come from the legacy reports.
func (r *MarkdownRenderer) recommendations(rec *metrics.CompositeMetricsRecord) []string {
	var recs []string

	if rec.Summary.LabsCompletionRate < 50 {
		recs = append(recs, "**Focus on completing more labs**: Your lab completion rate is below 50%. Labs provide hands-on experience that is crucial for skill development.")
	}
	if rec.Summary.AssessmentsAvgScore < 70 {
		recs = append(recs, "**Review assessment material**: Your assessment average score is below 70%. Consider revisiting the material to strengthen your understanding.")
	}
	if rec.StudyTime.StudyDays < 10 {
		recs = append(recs, "**Increase study frequency**: You've studied on fewer than 10 days. Regular, consistent study is more effective than cramming.")
	}
	if rec.StudyTime.TotalSeconds < 20*3600 {
		recs = append(recs, "**Increase total study time**: Your total study time is less than 20 hours. Consider dedicating more time to master the material.")
	}

	var lagging []int
	for _, m := range rec.Modules {
		if m.LabsTotal > 0 && m.LabsRate < 50 {
			lagging = append(lagging, m.Module)
		}
	}
	if len(lagging) > 0 {
		recs = append(recs, fmt.Sprintf("**Focus on modules %s**: These modules have low completion rates and should be prioritized.", joinInts(lagging, ", ")))
	}

	return recs
}

// ClassSummary renders the class overview report over all records.
func (r *MarkdownRenderer) ClassSummary(records []metrics.CompositeMetricsRecord) string {
	var b strings.Builder

	b.WriteString("# Class Summary Report\n")
	fmt.Fprintf(&b, "**Report Date:** %s\n\n", r.reportDate())

	b.WriteString("## Class Overview\n\n")
	b.WriteString("| Metric | Class Average |\n")
	b.WriteString("|--------|--------------|\n")

	avg := classAverages(records)
	fmt.Fprintf(&b, "| Overall Score | %.1f%% |\n", avg.Overall)
	fmt.Fprintf(&b, "| Progress Score | %.1f%% |\n", avg.Progress)
	fmt.Fprintf(&b, "| Engagement Score | %.1f%% |\n", avg.Engagement)
	fmt.Fprintf(&b, "| Labs Completion Rate | %.1f%% |\n", avg.LabsRate)
	fmt.Fprintf(&b, "| Assessments Completion Rate | %.1f%% |\n", avg.AssessmentsRate)
	fmt.Fprintf(&b, "| Assessment Average Score | %.1f%% |\n\n", avg.AssessmentsScore)

	b.WriteString("## Student Rankings\n\n")
	b.WriteString("### Overall Score\n\n")
	b.WriteString("| Rank | Student | Overall Score | Progress Score | Engagement Score |\n")
	b.WriteString("|------|---------|--------------|----------------|------------------|\n")
	for i, rec := range RankByOverallScore(records) {
		fmt.Fprintf(&b, "| %d | %s | %.1f%% | %.1f%% | %.1f%% |\n",
			i+1, rec.Name, rec.Summary.OverallScore, rec.Summary.ProgressScore, rec.Summary.EngagementScore)
	}
	b.WriteString("\n")

	b.WriteString("## Module Progress\n\n")
	b.WriteString("| Module | Labs Completion % | Assessment Avg. Score | Assessment Completion % |\n")
	b.WriteString("|--------|-------------------|------------------------|-------------------------|\n")
	for _, m := range moduleAverages(records) {
		fmt.Fprintf(&b, "| Module %d | %.1f%% | %.1f%% | %.1f%% |\n",
			m.Module, m.LabsRate, m.AssessmentsScore, m.AssessmentsRate)
	}
	b.WriteString("\n")

	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS AGGREGATION
// ══════════════════════════════════════════════════════════════════════════════

// ClassAverages holds the class-wide mean of the headline scores.
type ClassAverages struct {
	Overall          float64
	Progress         float64
	Engagement       float64
	LabsRate         float64
	AssessmentsRate  float64
	AssessmentsScore float64
}

func classAverages(records []metrics.CompositeMetricsRecord) ClassAverages {
	avg := ClassAverages{}
	if len(records) == 0 {
		return avg
	}

	for _, rec := range records {
		avg.Overall += rec.Summary.OverallScore
		avg.Progress += rec.Summary.ProgressScore
		avg.Engagement += rec.Summary.EngagementScore
		avg.LabsRate += rec.Summary.LabsCompletionRate
		avg.AssessmentsRate += rec.Summary.AssessmentsCompletionRate
		avg.AssessmentsScore += rec.Summary.AssessmentsAvgScore
	}

	n := float64(len(records))
	avg.Overall /= n
	avg.Progress /= n
	avg.Engagement /= n
	avg.LabsRate /= n
	avg.AssessmentsRate /= n
	avg.AssessmentsScore /= n
	return avg
}

// ModuleAverage is the class-wide mean of one module's rates. Only students
// who actually have work in the module contribute to its averages.
type ModuleAverage struct {
	Module           int
	LabsRate         float64
	AssessmentsRate  float64
	AssessmentsScore float64
}

func moduleAverages(records []metrics.CompositeMetricsRecord) []ModuleAverage {
	type accum struct {
		labsSum        float64
		labsN          int
		assessSum      float64
		assessScoreSum float64
		assessN        int
	}
	byModule := make(map[int]*accum)

	for _, rec := range records {
		for _, m := range rec.Modules {
			a, ok := byModule[m.Module]
			if !ok {
				a = &accum{}
				byModule[m.Module] = a
			}
			if m.LabsTotal > 0 {
				a.labsSum += m.LabsRate
				a.labsN++
			}
			if m.AssessmentsTotal > 0 {
				a.assessSum += m.AssessmentsRate
				a.assessScoreSum += m.AssessmentsAvgScore
				a.assessN++
			}
		}
	}

	averages := make([]ModuleAverage, 0, len(byModule))
	for num, a := range byModule {
		avg := ModuleAverage{Module: num}
		if a.labsN > 0 {
			avg.LabsRate = a.labsSum / float64(a.labsN)
		}
		if a.assessN > 0 {
			avg.AssessmentsRate = a.assessSum / float64(a.assessN)
			avg.AssessmentsScore = a.assessScoreSum / float64(a.assessN)
		}
		averages = append(averages, avg)
	}
	sort.Slice(averages, func(i, j int) bool {
		return averages[i].Module < averages[j].Module
	})
	return averages
}

// RankByOverallScore returns the records sorted by overall score, highest
// first, with name as the tiebreaker.
func RankByOverallScore(records []metrics.CompositeMetricsRecord) []metrics.CompositeMetricsRecord {
	ranked := make([]metrics.CompositeMetricsRecord, len(records))
	copy(ranked, records)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Summary.OverallScore != ranked[j].Summary.OverallScore {
			return ranked[i].Summary.OverallScore > ranked[j].Summary.OverallScore
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinInts(nums []int, sep string) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, sep)
}
