package metrics

// ══════════════════════════════════════════════════════════════════════════════
// MODULE RANGE AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

// ModuleRangeAggregator groups per-module rollups into the named module
// ranges (early/middle/late). The range table is injected configuration;
// members the student has no rollup for contribute nothing.
type ModuleRangeAggregator struct {
	ranges []ModuleRange
}

// NewModuleRangeAggregator creates an aggregator over the given range table.
func NewModuleRangeAggregator(ranges []ModuleRange) *ModuleRangeAggregator {
	return &ModuleRangeAggregator{ranges: ranges}
}

// Aggregate recombines one student's module rollups per range. The average
// score is recomposed from the per-module averages weighted by assessment
// count, so it matches an aggregation over the raw records exactly.
func (a *ModuleRangeAggregator) Aggregate(modules []ModuleRollup) []ModuleRangeRollup {
	byModule := make(map[int]ModuleRollup, len(modules))
	for _, m := range modules {
		byModule[m.Module] = m
	}

	rollups := make([]ModuleRangeRollup, 0, len(a.ranges))
	for _, r := range a.ranges {
		rollup := ModuleRangeRollup{Range: r.Name, Modules: r.Modules}

		scoreSum := 0.0
		for _, num := range r.Modules {
			m, ok := byModule[num]
			if !ok {
				continue
			}
			rollup.LabsTotal += m.LabsTotal
			rollup.LabsCompleted += m.LabsCompleted
			rollup.AssessmentsTotal += m.AssessmentsTotal
			rollup.AssessmentsCompleted += m.AssessmentsCompleted
			scoreSum += m.AssessmentsAvgScore * float64(m.AssessmentsTotal)
		}

		rollup.LabsRate = safeRate(rollup.LabsCompleted, rollup.LabsTotal)
		rollup.AssessmentsRate = safeRate(rollup.AssessmentsCompleted, rollup.AssessmentsTotal)
		rollup.AssessmentsAvgScore = safeScoreAvg(scoreSum, rollup.AssessmentsTotal)

		rollups = append(rollups, rollup)
	}

	return rollups
}
