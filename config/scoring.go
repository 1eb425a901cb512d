package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
)

// ScoringConfig carries the static aggregation tables of the engine:
// module ranges, assessment-category priorities, score weights, and the
// cohort week anchor year. The compiled-in defaults reproduce the legacy
// reporting configuration; a YAML file can override them for a new cohort.
type ScoringConfig struct {
	AnchorYear int `yaml:"anchor_year"`
	Workers    int `yaml:"workers"`

	Ranges []ScoringRange `yaml:"module_ranges"`

	Categories []ScoringCategory `yaml:"assessment_categories"`

	Weights ScoringWeights `yaml:"weights"`
}

// ScoringRange is one named module range.
type ScoringRange struct {
	Name    string `yaml:"name"`
	Modules []int  `yaml:"modules"`
}

// ScoringCategory is one ordered category-priority rule.
type ScoringCategory struct {
	Substring string `yaml:"substring"`
	Category  string `yaml:"category"`
}

// ScoringWeights mirrors metrics.ScoreWeights for YAML mapping.
type ScoringWeights struct {
	ProgressLabs        float64 `yaml:"progress_labs"`
	ProgressAssessments float64 `yaml:"progress_assessments"`
	EngagementTime      float64 `yaml:"engagement_time"`
	EngagementDays      float64 `yaml:"engagement_days"`
	FullTimeHours       float64 `yaml:"full_time_hours"`
	FullStudyDays       float64 `yaml:"full_study_days"`
	OverallProgress     float64 `yaml:"overall_progress"`
	OverallEngagement   float64 `yaml:"overall_engagement"`
}

// LoadScoring returns the default scoring tables, overridden by the YAML
// file at path when one is given. An empty path means defaults only.
func LoadScoring(path string) (ScoringConfig, error) {
	cfg := defaultScoring()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ScoringConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ScoringConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// defaultScoring mirrors metrics.DefaultConfig in YAML-mappable form.
func defaultScoring() ScoringConfig {
	base := metrics.DefaultConfig()

	ranges := make([]ScoringRange, 0, len(base.Ranges))
	for _, r := range base.Ranges {
		ranges = append(ranges, ScoringRange{Name: string(r.Name), Modules: r.Modules})
	}

	categories := make([]ScoringCategory, 0, len(base.Categories))
	for _, c := range base.Categories {
		categories = append(categories, ScoringCategory{Substring: c.Substring, Category: string(c.Category)})
	}

	return ScoringConfig{
		AnchorYear: base.AnchorYear,
		Workers:    base.Workers,
		Ranges:     ranges,
		Categories: categories,
		Weights: ScoringWeights{
			ProgressLabs:        base.Weights.ProgressLabs,
			ProgressAssessments: base.Weights.ProgressAssessments,
			EngagementTime:      base.Weights.EngagementTime,
			EngagementDays:      base.Weights.EngagementDays,
			FullTimeHours:       base.Weights.FullTimeHours,
			FullStudyDays:       base.Weights.FullStudyDays,
			OverallProgress:     base.Weights.OverallProgress,
			OverallEngagement:   base.Weights.OverallEngagement,
		},
	}
}

// Validate checks the scoring tables.
func (s ScoringConfig) Validate() error {
	if len(s.Ranges) == 0 {
		return fmt.Errorf("scoring: at least one module range is required")
	}
	for _, r := range s.Ranges {
		if r.Name == "" {
			return fmt.Errorf("scoring: module range without a name")
		}
		if len(r.Modules) == 0 {
			return fmt.Errorf("scoring: module range %q has no members", r.Name)
		}
		for _, m := range r.Modules {
			if m <= 0 {
				return fmt.Errorf("scoring: module range %q has non-positive module %d", r.Name, m)
			}
		}
	}
	for _, c := range s.Categories {
		if c.Substring == "" || c.Category == "" {
			return fmt.Errorf("scoring: category rule with empty substring or category")
		}
	}
	return nil
}

// ToMetricsConfig converts the scoring tables into the engine's immutable
// configuration value.
func (s ScoringConfig) ToMetricsConfig() metrics.Config {
	ranges := make([]metrics.ModuleRange, 0, len(s.Ranges))
	for _, r := range s.Ranges {
		ranges = append(ranges, metrics.ModuleRange{
			Name:    metrics.RangeName(r.Name),
			Modules: r.Modules,
		})
	}

	categories := make([]metrics.CategoryRule, 0, len(s.Categories))
	for _, c := range s.Categories {
		categories = append(categories, metrics.CategoryRule{
			Substring: c.Substring,
			Category:  metrics.Category(c.Category),
		})
	}

	return metrics.Config{
		Ranges:     ranges,
		Categories: categories,
		Weights: metrics.ScoreWeights{
			ProgressLabs:        s.Weights.ProgressLabs,
			ProgressAssessments: s.Weights.ProgressAssessments,
			EngagementTime:      s.Weights.EngagementTime,
			EngagementDays:      s.Weights.EngagementDays,
			FullTimeHours:       s.Weights.FullTimeHours,
			FullStudyDays:       s.Weights.FullStudyDays,
			OverallProgress:     s.Weights.OverallProgress,
			OverallEngagement:   s.Weights.OverallEngagement,
		},
		AnchorYear: s.AnchorYear,
		Workers:    s.Workers,
	}
}
