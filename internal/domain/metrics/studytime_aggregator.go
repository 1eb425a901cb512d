package metrics

import (
	"sort"

	"github.com/compita-hub/compita-metrics-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDY TIME AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

// StudyTimeAggregator builds per-week and whole-history study-time rollups
// from one student's daily study log.
type StudyTimeAggregator struct {
	weeks *WeekBucketer
}

// NewStudyTimeAggregator creates an aggregator using the given bucketer.
func NewStudyTimeAggregator(weeks *WeekBucketer) *StudyTimeAggregator {
	return &StudyTimeAggregator{weeks: weeks}
}

// Aggregate processes one student's daily study entries. Entries with an
// empty date label are skipped entirely; entries with zero seconds count
// toward no active day but still land in their week's bucket. Weekly
// rollups come back sorted by week index.
func (a *StudyTimeAggregator) Aggregate(entries []DailyStudyRecord) ([]WeekRollup, StudyTotals) {
	byWeek := make(map[int]*WeekRollup)
	totals := StudyTotals{}

	for _, entry := range entries {
		if entry.DateLabel == "" {
			continue
		}

		week := a.weeks.Week(entry.DateLabel)
		w, ok := byWeek[week]
		if !ok {
			w = &WeekRollup{Week: week}
			byWeek[week] = w
		}

		w.StudySeconds += entry.Seconds
		totals.TotalSeconds += entry.Seconds
		if entry.Seconds > 0 {
			w.StudyDays++
			totals.StudyDays++
		}
	}

	if totals.StudyDays > 0 {
		totals.AvgDailySeconds = totals.TotalSeconds / totals.StudyDays
	}
	totals.TotalFormatted = timeutil.FormatSeconds(totals.TotalSeconds)
	totals.AvgDailyFormatted = timeutil.FormatSeconds(totals.AvgDailySeconds)

	weekly := make([]WeekRollup, 0, len(byWeek))
	for _, w := range byWeek {
		weekly = append(weekly, *w)
	}
	sort.Slice(weekly, func(i, j int) bool {
		return weekly[i].Week < weekly[j].Week
	})

	return weekly, totals
}
