package metrics

// ══════════════════════════════════════════════════════════════════════════════
// INPUT DATASETS
// ══════════════════════════════════════════════════════════════════════════════

// ResourceRecord is one lab or assessment entry for a student.
type ResourceRecord struct {
	// Label is the free-text resource label, e.g. "Lab - 3.2 Configuring Switches".
	Label string `json:"label"`

	// Completion is the completion fraction in [0,1].
	Completion float64 `json:"completion"`
}

// DailyStudyRecord is one day of study time for a student.
type DailyStudyRecord struct {
	// DateLabel is a loose date string, e.g. "Apr 15, Tuesday".
	DateLabel string `json:"date_label"`

	// Seconds is the study time for that day.
	Seconds int `json:"seconds"`
}

// CompletionStudent is one student's entry in the completion dataset.
type CompletionStudent struct {
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Labs        []ResourceRecord `json:"labs"`
	Assessments []ResourceRecord `json:"assessments"`
}

// StudyStudent is one student's entry in the study-time dataset.
type StudyStudent struct {
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	DailyStudy []DailyStudyRecord `json:"daily_study"`
}

// CompletionDataset is the lab/assessment completion source.
type CompletionDataset struct {
	Students []CompletionStudent `json:"students"`
}

// StudyDataset is the daily study-time source.
type StudyDataset struct {
	Students []StudyStudent `json:"students"`
}

// Snapshot bundles one batch of fully materialized source datasets.
// Either dataset may be empty; the engine still emits a record for every
// student known to at least one source.
type Snapshot struct {
	Completion CompletionDataset
	Study      StudyDataset
}

// StudentRecord is the normalized per-student input: identity plus the raw
// resource lists from both sources. The normalizer builds one per student
// in the population union, seeding empty containers for students present
// in only one source.
type StudentRecord struct {
	Name        string
	Email       string
	Labs        []ResourceRecord
	Assessments []ResourceRecord
	DailyStudy  []DailyStudyRecord
}

// ══════════════════════════════════════════════════════════════════════════════
// OUTPUT ROLLUPS
// ══════════════════════════════════════════════════════════════════════════════

// ModuleRollup aggregates labs and assessments of one curriculum module.
type ModuleRollup struct {
	// Module is the positive module number the rollup belongs to.
	Module int `json:"module_number"`

	LabsTotal     int     `json:"labs_total"`
	LabsCompleted int     `json:"labs_completed"`
	LabsRate      float64 `json:"labs_rate"`

	AssessmentsTotal     int     `json:"assessments_total"`
	AssessmentsCompleted int     `json:"assessments_completed"`
	AssessmentsAvgScore  float64 `json:"assessments_avg_score"`
	AssessmentsRate      float64 `json:"assessments_rate"`
}

// CategoryRollup aggregates assessments of one category (Quiz, Exam)
// across all modules the student has resolved resources in.
type CategoryRollup struct {
	Category  Category `json:"category"`
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	AvgScore  float64  `json:"avg_score"`
	Rate      float64  `json:"completion_rate"`
}

// WeekRollup aggregates study time inside one cohort week.
type WeekRollup struct {
	// Week is the 1-based cohort week index.
	Week int `json:"week_index"`

	StudySeconds int `json:"study_seconds_total"`
	StudyDays    int `json:"study_days_count"`
}

// StudyTotals aggregates study time over the whole history.
type StudyTotals struct {
	TotalSeconds int `json:"total_seconds"`
	StudyDays    int `json:"study_days"`

	// AvgDailySeconds is TotalSeconds integer-divided by StudyDays (0 when
	// the student has no active days).
	AvgDailySeconds int `json:"avg_daily_seconds"`

	TotalFormatted    string `json:"total_formatted"`
	AvgDailyFormatted string `json:"avg_daily_formatted"`
}

// RangeName identifies a coarse-grained grouping of consecutive modules.
type RangeName string

const (
	RangeEarly  RangeName = "early"
	RangeMiddle RangeName = "middle"
	RangeLate   RangeName = "late"
)

// ModuleRangeRollup aggregates the per-module rollups of one module range.
type ModuleRangeRollup struct {
	Range   RangeName `json:"range_name"`
	Modules []int     `json:"modules"`

	LabsTotal     int     `json:"labs_total"`
	LabsCompleted int     `json:"labs_completed"`
	LabsRate      float64 `json:"labs_rate"`

	AssessmentsTotal     int     `json:"assessments_total"`
	AssessmentsCompleted int     `json:"assessments_completed"`
	AssessmentsAvgScore  float64 `json:"assessments_avg_score"`
	AssessmentsRate      float64 `json:"assessments_rate"`
}

// SummaryScore is the headline metric block of one student.
type SummaryScore struct {
	TotalLabs                 int     `json:"total_labs"`
	TotalLabsCompleted        int     `json:"total_labs_completed"`
	TotalAssessments          int     `json:"total_assessments"`
	TotalAssessmentsCompleted int     `json:"total_assessments_completed"`
	LabsCompletionRate        float64 `json:"labs_completion_rate"`
	AssessmentsCompletionRate float64 `json:"assessments_completion_rate"`
	AssessmentsAvgScore       float64 `json:"assessments_avg_score"`

	ProgressScore   float64 `json:"progress_score"`
	EngagementScore float64 `json:"engagement_score"`
	OverallScore    float64 `json:"overall_score"`
}

// CompositeMetricsRecord is the final analytics record of one student,
// immutable once emitted. Records are keyed by the normalized student name.
type CompositeMetricsRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`

	Modules    []ModuleRollup      `json:"modules"`
	Categories []CategoryRollup    `json:"assessment_types"`
	Weekly     []WeekRollup        `json:"weekly_metrics"`
	StudyTime  StudyTotals         `json:"study_time"`
	Ranges     []ModuleRangeRollup `json:"module_ranges"`
	Summary    SummaryScore        `json:"summary"`
}

// Module returns the rollup for the given module number, if present.
func (r *CompositeMetricsRecord) Module(num int) (ModuleRollup, bool) {
	for _, m := range r.Modules {
		if m.Module == num {
			return m, true
		}
	}
	return ModuleRollup{}, false
}

// Week returns the rollup for the given week index, if present.
func (r *CompositeMetricsRecord) Week(index int) (WeekRollup, bool) {
	for _, w := range r.Weekly {
		if w.Week == index {
			return w, true
		}
	}
	return WeekRollup{}, false
}

// RangeByName returns the rollup for the given module range, if present.
func (r *CompositeMetricsRecord) RangeByName(name RangeName) (ModuleRangeRollup, bool) {
	for _, mr := range r.Ranges {
		if mr.Range == name {
			return mr, true
		}
	}
	return ModuleRangeRollup{}, false
}
