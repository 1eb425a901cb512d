package metrics

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE SCORER
// ══════════════════════════════════════════════════════════════════════════════

// CompositeScorer derives the headline summary block from already-computed
// rollups. All methods are pure functions of their inputs.
type CompositeScorer struct {
	weights ScoreWeights
}

// NewCompositeScorer creates a scorer with the given weighting constants.
func NewCompositeScorer(weights ScoreWeights) *CompositeScorer {
	return &CompositeScorer{weights: weights}
}

// Summarize computes the SummaryScore for one student from their module
// rollups and study totals.
func (s *CompositeScorer) Summarize(modules []ModuleRollup, study StudyTotals) SummaryScore {
	sum := SummaryScore{}

	scoreSum := 0.0
	for _, m := range modules {
		sum.TotalLabs += m.LabsTotal
		sum.TotalLabsCompleted += m.LabsCompleted
		sum.TotalAssessments += m.AssessmentsTotal
		sum.TotalAssessmentsCompleted += m.AssessmentsCompleted
		scoreSum += m.AssessmentsAvgScore * float64(m.AssessmentsTotal)
	}

	sum.LabsCompletionRate = safeRate(sum.TotalLabsCompleted, sum.TotalLabs)
	sum.AssessmentsCompletionRate = safeRate(sum.TotalAssessmentsCompleted, sum.TotalAssessments)
	sum.AssessmentsAvgScore = safeScoreAvg(scoreSum, sum.TotalAssessments)

	sum.ProgressScore = s.progressScore(sum)
	sum.EngagementScore = s.engagementScore(study)
	sum.OverallScore = sum.ProgressScore*s.weights.OverallProgress +
		sum.EngagementScore*s.weights.OverallEngagement

	return sum
}

// progressScore blends the two completion rates. A student with only one
// source of work is scored on that source alone rather than being dragged
// down by the absent one.
func (s *CompositeScorer) progressScore(sum SummaryScore) float64 {
	switch {
	case sum.TotalLabs > 0 && sum.TotalAssessments > 0:
		return sum.LabsCompletionRate*s.weights.ProgressLabs +
			sum.AssessmentsCompletionRate*s.weights.ProgressAssessments
	case sum.TotalLabs > 0:
		return sum.LabsCompletionRate
	case sum.TotalAssessments > 0:
		return sum.AssessmentsCompletionRate
	default:
		return 0
	}
}

// engagementScore blends study time against the full-engagement ceilings:
// FullTimeHours of study and FullStudyDays of active days each cap their
// component at 100.
func (s *CompositeScorer) engagementScore(study StudyTotals) float64 {
	timeScore := float64(study.TotalSeconds) / 3600 / s.weights.FullTimeHours * 100
	if timeScore > 100 {
		timeScore = 100
	}

	daysScore := float64(study.StudyDays) / s.weights.FullStudyDays * 100
	if daysScore > 100 {
		daysScore = 100
	}

	return timeScore*s.weights.EngagementTime + daysScore*s.weights.EngagementDays
}
