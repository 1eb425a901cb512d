package metrics

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ModuleRange names one group of consecutive module numbers.
type ModuleRange struct {
	Name    RangeName
	Modules []int
}

// CategoryRule maps a label substring to an assessment category. Rules are
// evaluated in declaration order; the first match wins.
type CategoryRule struct {
	Substring string
	Category  Category
}

// ScoreWeights holds the weighting constants of the composite scorer.
type ScoreWeights struct {
	// ProgressLabs and ProgressAssessments blend the two completion rates
	// into the progress score when both sources are present.
	ProgressLabs        float64
	ProgressAssessments float64

	// EngagementTime and EngagementDays blend the time and active-day
	// scores into the engagement score.
	EngagementTime float64
	EngagementDays float64

	// FullTimeHours is the study-time ceiling: this many hours score 100.
	FullTimeHours float64

	// FullStudyDays is the active-day ceiling: this many days score 100.
	FullStudyDays float64

	// OverallProgress and OverallEngagement blend progress and engagement
	// into the overall score.
	OverallProgress   float64
	OverallEngagement float64
}

// Config is the immutable process-wide configuration injected into the
// engine. Values are fixed before the run starts; the engine only reads
// them, so a single Config is safe to share across workers.
type Config struct {
	// Ranges is the module-range table, in reporting order.
	Ranges []ModuleRange

	// Categories is the ordered assessment-category priority table.
	// Labels matching none of the rules default to CategoryQuiz.
	Categories []CategoryRule

	// Weights are the composite-score constants.
	Weights ScoreWeights

	// AnchorYear is the implicit year of date labels and of the cohort
	// week anchor (April 15). Zero means the current year.
	AnchorYear int

	// Workers bounds the per-student worker pool. Zero or negative means
	// a single worker.
	Workers int
}

// DefaultConfig returns the cohort configuration the legacy reporting
// system was tuned to. The range table and category priorities are part of
// the output contract and must match the existing renderers.
func DefaultConfig() Config {
	return Config{
		Ranges: []ModuleRange{
			{Name: RangeEarly, Modules: []int{1, 2, 3, 4, 5}},
			{Name: RangeMiddle, Modules: []int{6, 7, 8, 9, 10}},
			{Name: RangeLate, Modules: []int{11, 12, 13, 14}},
		},
		Categories: []CategoryRule{
			{Substring: "Module Quiz", Category: CategoryQuiz},
			{Substring: "Checkpoint Review", Category: CategoryExam},
			{Substring: "Interactive", Category: CategoryQuiz},
			{Substring: "Lesson Review", Category: CategoryQuiz},
		},
		Weights: ScoreWeights{
			ProgressLabs:        0.6,
			ProgressAssessments: 0.4,
			EngagementTime:      0.7,
			EngagementDays:      0.3,
			FullTimeHours:       40,
			FullStudyDays:       20,
			OverallProgress:     0.7,
			OverallEngagement:   0.3,
		},
		Workers: 4,
	}
}
