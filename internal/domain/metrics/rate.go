package metrics

// safeRate converts completed/total into a percentage, defaulting to 0
// when the denominator is 0. Every ratio in the engine goes through this
// helper or safeAvg; nothing in the pipeline may divide by a raw count.
func safeRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// safeAvg converts a running fraction sum into an average percentage,
// defaulting to 0 when the denominator is 0.
func safeAvg(sum float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return sum / float64(total) * 100
}

// safeScoreAvg averages an already-percent score sum over a count without
// the extra percentage scaling. Used when recomposing range and summary
// averages from per-module averages.
func safeScoreAvg(scoreSum float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return scoreSum / float64(total)
}
