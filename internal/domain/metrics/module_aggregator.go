package metrics

import "sort"

// ══════════════════════════════════════════════════════════════════════════════
// MODULE AGGREGATOR
// ══════════════════════════════════════════════════════════════════════════════

// Completion thresholds. A lab counts as completed only at exactly 1.0;
// an assessment counts as completed from 0.7 up. Both come from the legacy
// reports and are part of the output contract.
const (
	labCompleteFraction     = 1.0
	assessmentPassThreshold = 0.7
)

// moduleAccum is the running state of one module during aggregation.
type moduleAccum struct {
	labsTotal     int
	labsCompleted int

	assessmentsTotal     int
	assessmentsCompleted int
	scoreSum             float64
}

// categoryAccum is the running state of one assessment category.
type categoryAccum struct {
	total     int
	completed int
	scoreSum  float64
}

// ModuleAggregator builds per-module and per-category rollups from one
// student's raw lab and assessment records. Resources whose module number
// cannot be resolved are silently skipped; they never fail the run.
type ModuleAggregator struct {
	parser *LabelParser
}

// NewModuleAggregator creates an aggregator using the given label parser.
func NewModuleAggregator(parser *LabelParser) *ModuleAggregator {
	return &ModuleAggregator{parser: parser}
}

// Aggregate processes one student's labs and assessments. Module rollups
// come back sorted by module number, category rollups by category name.
func (a *ModuleAggregator) Aggregate(labs, assessments []ResourceRecord) ([]ModuleRollup, []CategoryRollup) {
	modules := make(map[int]*moduleAccum)
	categories := make(map[Category]*categoryAccum)

	accum := func(module int) *moduleAccum {
		m, ok := modules[module]
		if !ok {
			m = &moduleAccum{}
			modules[module] = m
		}
		return m
	}

	for _, lab := range labs {
		parsed := a.parser.Parse(lab.Label)
		if parsed.Kind != KindLab || !parsed.HasModule {
			continue
		}

		m := accum(parsed.Module)
		m.labsTotal++
		if lab.Completion == labCompleteFraction {
			m.labsCompleted++
		}
	}

	for _, assessment := range assessments {
		parsed := a.parser.Parse(assessment.Label)
		if parsed.Kind != KindAssessment || !parsed.HasModule {
			continue
		}

		m := accum(parsed.Module)
		m.assessmentsTotal++
		m.scoreSum += assessment.Completion

		c, ok := categories[parsed.Category]
		if !ok {
			c = &categoryAccum{}
			categories[parsed.Category] = c
		}
		c.total++
		c.scoreSum += assessment.Completion

		if assessment.Completion >= assessmentPassThreshold {
			m.assessmentsCompleted++
			c.completed++
		}
	}

	return moduleRollups(modules), categoryRollups(categories)
}

func moduleRollups(modules map[int]*moduleAccum) []ModuleRollup {
	rollups := make([]ModuleRollup, 0, len(modules))
	for num, m := range modules {
		rollups = append(rollups, ModuleRollup{
			Module:               num,
			LabsTotal:            m.labsTotal,
			LabsCompleted:        m.labsCompleted,
			LabsRate:             safeRate(m.labsCompleted, m.labsTotal),
			AssessmentsTotal:     m.assessmentsTotal,
			AssessmentsCompleted: m.assessmentsCompleted,
			AssessmentsAvgScore:  safeAvg(m.scoreSum, m.assessmentsTotal),
			AssessmentsRate:      safeRate(m.assessmentsCompleted, m.assessmentsTotal),
		})
	}
	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Module < rollups[j].Module
	})
	return rollups
}

func categoryRollups(categories map[Category]*categoryAccum) []CategoryRollup {
	rollups := make([]CategoryRollup, 0, len(categories))
	for cat, c := range categories {
		rollups = append(rollups, CategoryRollup{
			Category:  cat,
			Total:     c.total,
			Completed: c.completed,
			AvgScore:  safeAvg(c.scoreSum, c.total),
			Rate:      safeRate(c.completed, c.total),
		})
	}
	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Category < rollups[j].Category
	})
	return rollups
}
