// Package metrics contains the merge-and-score engine of the CompITA
// Metrics Hub. It takes one materialized snapshot of per-student activity
// data from two independently produced sources - lab/assessment completion
// records and daily study-time logs - and merges them into one deterministic
// analytics record per student.
//
// # Pipeline
//
// Data flows one way through a fixed set of collaborators:
//
//	raw source datasets
//	    -> normalizer (identity cleanup, population union)
//	    -> module aggregator + study-time aggregator
//	    -> module-range aggregator + composite scorer
//	    -> CompositeMetricsRecord set
//
// The engine is a single-pass, synchronous, in-memory batch computation.
// It performs no I/O: loading snapshots and persisting results belong to
// the callers in internal/infrastructure and cmd.
//
// # Contract
//
// The engine never fails. A missing source dataset degrades to an empty
// list, an unparseable resource label excludes only that resource from
// per-module statistics, an undecodable date label falls back to week 1,
// and every ratio with a zero denominator is 0. The output shape is total
// regardless of input completeness, and running the engine twice over the
// same snapshot produces byte-identical serialized records.
//
// # Legacy rules
//
// Several rules are deliberately idiosyncratic and must not be "fixed":
// the calendar bucketing collapses all pre-anchor dates onto weeks 1-3,
// and the "B."-prefixed module rescue in the label parser cannot fire
// given how labels are split. Both reproduce the behavior of the reporting
// system this engine replaces; downstream renderers depend on it.
//
// # Usage
//
//	engine := metrics.NewEngine(metrics.DefaultConfig(), log)
//	records := engine.Run(metrics.Snapshot{
//	    Completion: completionDataset,
//	    Study:      studyDataset,
//	})
package metrics
