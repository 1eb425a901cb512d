package metrics

import (
	"sync"
	"time"

	"github.com/compita-hub/compita-metrics-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// METRICS ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine orchestrates one merge-and-score pass over a snapshot. It owns no
// I/O and no mutable state between runs; the injected Config is read-only,
// so one Engine is safe for concurrent Run calls.
type Engine struct {
	cfg Config
	log *logger.Logger

	normalizer *RecordNormalizer
	modules    *ModuleAggregator
	study      *StudyTimeAggregator
	ranges     *ModuleRangeAggregator
	scorer     *CompositeScorer
}

// NewEngine wires the pipeline components from one immutable Config.
// A nil logger disables engine logging.
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	parser := NewLabelParser(cfg.Categories)
	return &Engine{
		cfg:        cfg,
		log:        log,
		normalizer: NewRecordNormalizer(),
		modules:    NewModuleAggregator(parser),
		study:      NewStudyTimeAggregator(NewWeekBucketer(cfg.AnchorYear)),
		ranges:     NewModuleRangeAggregator(cfg.Ranges),
		scorer:     NewCompositeScorer(cfg.Weights),
	}
}

// Run merges one snapshot into the final record set, one record per
// student in the population union, sorted by normalized name. Run never
// fails: missing datasets degrade to empty lists and every student comes
// back with a complete, possibly all-zero, record.
func (e *Engine) Run(snap Snapshot) []CompositeMetricsRecord {
	start := time.Now()

	students := e.normalizer.Normalize(snap)
	records := make([]CompositeMetricsRecord, len(students))

	// Per-student work is independent; shard it across the worker pool.
	// Workers write disjoint indexes, so the only shared state is the
	// read-only configuration.
	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(students) {
		workers = len(students)
	}

	if workers <= 1 {
		for i, student := range students {
			records[i] = e.buildRecord(student)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for i := range jobs {
					records[i] = e.buildRecord(students[i])
				}
			}()
		}
		for i := range students {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	e.log.Info("metrics run complete",
		logger.Int("students", len(records)),
		logger.Int("completion_students", len(snap.Completion.Students)),
		logger.Int("study_students", len(snap.Study.Students)),
		logger.Duration("elapsed", time.Since(start)),
	)

	return records
}

// buildRecord runs the full pipeline for one student.
func (e *Engine) buildRecord(student *StudentRecord) CompositeMetricsRecord {
	modules, categories := e.modules.Aggregate(student.Labs, student.Assessments)
	weekly, studyTotals := e.study.Aggregate(student.DailyStudy)

	return CompositeMetricsRecord{
		Name:       student.Name,
		Email:      student.Email,
		Modules:    modules,
		Categories: categories,
		Weekly:     weekly,
		StudyTime:  studyTotals,
		Ranges:     e.ranges.Aggregate(modules),
		Summary:    e.scorer.Summarize(modules, studyTotals),
	}
}
