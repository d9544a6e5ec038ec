package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidationConfig(t *testing.T) {
	cfg := DefaultValidationConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 252.0, cfg.Calibration.PeriodsPerYear)
	assert.Equal(t, 21, cfg.Calibration.BlockSize)
	assert.Equal(t, 252, cfg.WalkForward.TrainPeriods)
	assert.Equal(t, 63, cfg.WalkForward.TestPeriods)
	assert.Equal(t, 3, cfg.WalkForward.MinWindows)
	assert.Equal(t, 1000, cfg.Bootstrap.Iterations)
	assert.Equal(t, 0.95, cfg.Bootstrap.ConfidenceLevel)
	assert.Equal(t, 0.05, cfg.MultipleComparison.Alpha)
	assert.Equal(t, 0.5, cfg.MultipleComparison.ThresholdFloor)
	assert.False(t, cfg.DataSplit.Strict)
}

func TestLoadValidationConfigLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bootstrap:
  iterations: 250
data_split:
  strict: true
`), 0644))

	cfg, err := LoadValidationConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Bootstrap.Iterations)
	assert.True(t, cfg.DataSplit.Strict)
	// Untouched sections keep their defaults
	assert.Equal(t, 252, cfg.WalkForward.TrainPeriods)
	assert.Equal(t, 0.95, cfg.Bootstrap.ConfidenceLevel)
}

func TestLoadValidationConfigMissingFile(t *testing.T) {
	_, err := LoadValidationConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutate := []struct {
		name string
		fn   func(*ValidationConfig)
	}{
		{"zero periods per year", func(c *ValidationConfig) { c.Calibration.PeriodsPerYear = 0 }},
		{"zero block size", func(c *ValidationConfig) { c.Calibration.BlockSize = 0 }},
		{"confidence out of range", func(c *ValidationConfig) { c.Bootstrap.ConfidenceLevel = 1.0 }},
		{"zero iterations", func(c *ValidationConfig) { c.Bootstrap.Iterations = 0 }},
		{"alpha out of range", func(c *ValidationConfig) { c.MultipleComparison.Alpha = 0 }},
		{"zero train window", func(c *ValidationConfig) { c.WalkForward.TrainPeriods = 0 }},
		{"zero min windows", func(c *ValidationConfig) { c.WalkForward.MinWindows = 0 }},
		{"inverted split", func(c *ValidationConfig) { c.DataSplit.TrainEnd = c.DataSplit.TestEnd.AddDate(1, 0, 0) }},
	}
	for _, tc := range mutate {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultValidationConfig()
			tc.fn(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
