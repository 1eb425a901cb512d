package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compita-hub/compita-metrics-hub/internal/domain/metrics"
)

func TestLoadScoring_Defaults(t *testing.T) {
	cfg, err := LoadScoring("")
	require.NoError(t, err)

	assert.Len(t, cfg.Ranges, 3)
	assert.Equal(t, "early", cfg.Ranges[0].Name)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Ranges[0].Modules)
	assert.Len(t, cfg.Categories, 4)
	assert.Equal(t, 0.6, cfg.Weights.ProgressLabs)
	assert.Equal(t, 0.4, cfg.Weights.ProgressAssessments)
	assert.NoError(t, cfg.Validate())
}

func TestLoadScoring_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	data := `
anchor_year: 2024
module_ranges:
  - name: early
    modules: [1, 2]
  - name: late
    modules: [3, 4]
weights:
  progress_labs: 0.5
  progress_assessments: 0.5
  engagement_time: 0.7
  engagement_days: 0.3
  full_time_hours: 40
  full_study_days: 20
  overall_progress: 0.7
  overall_engagement: 0.3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadScoring(path)
	require.NoError(t, err)

	assert.Equal(t, 2024, cfg.AnchorYear)
	assert.Len(t, cfg.Ranges, 2)
	assert.Equal(t, []int{3, 4}, cfg.Ranges[1].Modules)
	assert.Equal(t, 0.5, cfg.Weights.ProgressLabs)

	// Sections absent from the file keep their defaults.
	assert.Len(t, cfg.Categories, 4)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadScoring_MissingFile(t *testing.T) {
	_, err := LoadScoring(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScoring_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte("module_ranges: [unclosed"), 0o644))

	_, err := LoadScoring(path)
	assert.Error(t, err)
}

func TestScoringConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScoringConfig)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*ScoringConfig) {}},
		{
			name:    "no ranges",
			mutate:  func(c *ScoringConfig) { c.Ranges = nil },
			wantErr: true,
		},
		{
			name:    "unnamed range",
			mutate:  func(c *ScoringConfig) { c.Ranges[0].Name = "" },
			wantErr: true,
		},
		{
			name:    "empty range",
			mutate:  func(c *ScoringConfig) { c.Ranges[1].Modules = nil },
			wantErr: true,
		},
		{
			name:    "non-positive module",
			mutate:  func(c *ScoringConfig) { c.Ranges[0].Modules = []int{0} },
			wantErr: true,
		},
		{
			name:    "empty category rule",
			mutate:  func(c *ScoringConfig) { c.Categories[0].Substring = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultScoring()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScoringConfig_ToMetricsConfig(t *testing.T) {
	cfg := defaultScoring()
	got := cfg.ToMetricsConfig()

	assert.Equal(t, metrics.DefaultConfig(), got)
}
