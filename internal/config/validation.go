// Package config loads the process-wide validation configuration. Loaded
// once at startup and treated as read-only for the lifetime of a run.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Calibration holds market-specific constants shared by every validator.
type Calibration struct {
	PeriodsPerYear   float64 `yaml:"periods_per_year"`  // Annualization factor (252 for daily)
	MarketVolatility float64 `yaml:"market_volatility"` // Assumed annual vol for bootstrap null generation
	BlockSize        int     `yaml:"block_size"`        // Resampling block length (~one trading month)
}

// WalkForwardConfig holds walk-forward window parameters.
type WalkForwardConfig struct {
	TrainPeriods int     `yaml:"train_periods"`  // Training window length
	TestPeriods  int     `yaml:"test_periods"`   // Testing window length
	MinWindows   int     `yaml:"min_windows"`    // Minimum full windows required
	MinOOSSharpe float64 `yaml:"min_oos_sharpe"` // Mean out-of-sample Sharpe threshold
}

// BootstrapConfig holds block-bootstrap parameters.
type BootstrapConfig struct {
	Iterations      int     `yaml:"iterations"`       // Resampling iterations
	ConfidenceLevel float64 `yaml:"confidence_level"` // CI confidence (0.95)
	MinLowerBound   float64 `yaml:"min_lower_bound"`  // CI lower bound must exceed this
	MinValidRatio   float64 `yaml:"min_valid_ratio"`  // Valid-iteration ratio below which the run is degraded
}

// MultipleComparisonConfig holds family-wise correction parameters.
type MultipleComparisonConfig struct {
	Alpha          float64 `yaml:"alpha"`           // Uncorrected per-test significance level
	ThresholdFloor float64 `yaml:"threshold_floor"` // Conservative Sharpe floor
	NullDraws      int     `yaml:"null_draws"`      // Bootstrap null series count for the empirical threshold
}

// DataSplitConfig holds the fixed calendar split and its pass criteria.
type DataSplitConfig struct {
	TrainStart     time.Time `yaml:"train_start"`
	TrainEnd       time.Time `yaml:"train_end"`      // Also validation start
	ValidationEnd  time.Time `yaml:"validation_end"` // Also test start
	TestEnd        time.Time `yaml:"test_end"`
	MinValSharpe   float64   `yaml:"min_val_sharpe"`  // Validation-period Sharpe minimum
	MinConsistency float64   `yaml:"min_consistency"` // Cross-period consistency minimum
	MinDegradation float64   `yaml:"min_degradation"` // Validation/train Sharpe ratio minimum
	MeanEpsilon    float64   `yaml:"mean_epsilon"`    // Mean Sharpe at or below this forces consistency to 0
	Strict         bool      `yaml:"strict"`          // Reject reports that cannot be date-filtered
}

// BaselineConfig holds baseline comparison parameters.
type BaselineConfig struct {
	MinImprovement float64 `yaml:"min_improvement"` // Sharpe margin over the best-beaten baseline
	TopN           int     `yaml:"top_n"`           // Constituents in the equal-weight basket
	UniversePath   string  `yaml:"universe_path"`   // Universe definition yaml
}

// ValidationConfig is the full configuration surface read at process start.
type ValidationConfig struct {
	Calibration        Calibration              `yaml:"calibration"`
	WalkForward        WalkForwardConfig        `yaml:"walk_forward"`
	Bootstrap          BootstrapConfig          `yaml:"bootstrap"`
	MultipleComparison MultipleComparisonConfig `yaml:"multiple_comparison"`
	DataSplit          DataSplitConfig          `yaml:"data_split"`
	Baseline           BaselineConfig           `yaml:"baseline"`
}

// DefaultValidationConfig returns production defaults matching the
// documented thresholds.
func DefaultValidationConfig() ValidationConfig {
	cfg := ValidationConfig{
		Calibration: Calibration{
			PeriodsPerYear:   252.0,
			MarketVolatility: 0.16, // ~16% annual, broad equity index
			BlockSize:        21,   // One trading month
		},
		WalkForward: WalkForwardConfig{
			TrainPeriods: 252,
			TestPeriods:  63,
			MinWindows:   3,
			MinOOSSharpe: 0.5,
		},
		Bootstrap: BootstrapConfig{
			Iterations:      1000,
			ConfidenceLevel: 0.95,
			MinLowerBound:   0.5,
			MinValidRatio:   0.90,
		},
		MultipleComparison: MultipleComparisonConfig{
			Alpha:          0.05,
			ThresholdFloor: 0.5,
			NullDraws:      500,
		},
		Baseline: BaselineConfig{
			MinImprovement: 0.5,
			TopN:           10,
			UniversePath:   "config/universe.yaml",
		},
	}

	// Default calendar split: 4y train, 1y validation, 1y test.
	cfg.DataSplit = DataSplitConfig{
		TrainStart:     time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		TrainEnd:       time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidationEnd:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		TestEnd:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MinValSharpe:   1.0,
		MinConsistency: 0.6,
		MinDegradation: 0.7,
		MeanEpsilon:    0.1,
		Strict:         false,
	}

	return cfg
}

// LoadValidationConfig reads the validation config from a yaml file,
// layering file values over defaults.
func LoadValidationConfig(path string) (ValidationConfig, error) {
	cfg := DefaultValidationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read validation config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse validation YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid validation config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a meaningful run.
func (c ValidationConfig) Validate() error {
	if c.Calibration.PeriodsPerYear <= 0 {
		return fmt.Errorf("periods_per_year must be positive, got %.1f", c.Calibration.PeriodsPerYear)
	}
	if c.Calibration.BlockSize < 1 {
		return fmt.Errorf("block_size must be >= 1, got %d", c.Calibration.BlockSize)
	}
	if c.Bootstrap.ConfidenceLevel <= 0 || c.Bootstrap.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence_level must be in (0, 1), got %.3f", c.Bootstrap.ConfidenceLevel)
	}
	if c.Bootstrap.Iterations < 1 {
		return fmt.Errorf("bootstrap iterations must be >= 1, got %d", c.Bootstrap.Iterations)
	}
	if c.MultipleComparison.Alpha <= 0 || c.MultipleComparison.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %.3f", c.MultipleComparison.Alpha)
	}
	if c.WalkForward.TrainPeriods < 1 || c.WalkForward.TestPeriods < 1 {
		return fmt.Errorf("walk-forward windows must be positive (train=%d, test=%d)",
			c.WalkForward.TrainPeriods, c.WalkForward.TestPeriods)
	}
	if c.WalkForward.MinWindows < 1 {
		return fmt.Errorf("min_windows must be >= 1, got %d", c.WalkForward.MinWindows)
	}
	ds := c.DataSplit
	if !ds.TrainStart.Before(ds.TrainEnd) || !ds.TrainEnd.Before(ds.ValidationEnd) || !ds.ValidationEnd.Before(ds.TestEnd) {
		return fmt.Errorf("data split boundaries must be strictly increasing")
	}
	return nil
}
