package validation

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/stratvalid/internal/config"
	"github.com/sawpanic/stratvalid/internal/returns"
)

// BootstrapValidator estimates a confidence interval for the Sharpe ratio
// via block bootstrap. Contiguous blocks preserve the serial
// autocorrelation real return series carry; i.i.d. resampling would
// destroy it and understate the interval width.
type BootstrapValidator struct {
	cfg config.BootstrapConfig
	cal config.Calibration

	mu    sync.Mutex
	seeds *rand.Rand // Guarded; only derives per-call generators
}

// NewBootstrapValidator creates a validator seeded from the clock.
func NewBootstrapValidator(cfg config.BootstrapConfig, cal config.Calibration) *BootstrapValidator {
	return &BootstrapValidator{
		cfg:   cfg,
		cal:   cal,
		seeds: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededBootstrapValidator creates a validator with a fixed seed for
// reproducible runs.
func NewSeededBootstrapValidator(cfg config.BootstrapConfig, cal config.Calibration, seed int64) *BootstrapValidator {
	return &BootstrapValidator{cfg: cfg, cal: cal, seeds: rand.New(rand.NewSource(seed))}
}

// newRNG derives a generator private to one Estimate call. Batch workers
// share a validator, and math/rand generators are not safe for concurrent
// use.
func (b *BootstrapValidator) newRNG() *rand.Rand {
	b.mu.Lock()
	defer b.mu.Unlock()
	return rand.New(rand.NewSource(b.seeds.Int63()))
}

// BootstrapResult holds the CI estimate and its quality indicators.
type BootstrapResult struct {
	PointEstimate   float64 `json:"point_estimate"`
	CILower         float64 `json:"ci_lower"`
	CIUpper         float64 `json:"ci_upper"`
	ConfidenceLevel float64 `json:"confidence_level"`
	Iterations      int     `json:"iterations"`
	ValidIterations int     `json:"valid_iterations"`
	Degraded        bool    `json:"degraded"` // Too few valid iterations; CI is low-confidence
}

// resampleBlocks draws contiguous blocks with replacement until the
// resample reaches the source length. Blocks near the series end wrap
// circularly so every start index is drawable.
func resampleBlocks(rng *rand.Rand, source []float64, blockSize int) []float64 {
	n := len(source)
	if blockSize > n {
		blockSize = n
	}
	out := make([]float64, 0, n+blockSize)
	for len(out) < n {
		start := rng.Intn(n)
		for i := 0; i < blockSize; i++ {
			out = append(out, source[(start+i)%n])
		}
	}
	return out[:n]
}

// Estimate runs the block bootstrap for the Sharpe ratio.
func (b *BootstrapValidator) Estimate(series *returns.Series) (*BootstrapResult, error) {
	values := series.Values()
	if len(values) < b.cal.BlockSize {
		return nil, &InsufficientDataError{Have: len(values), Need: b.cal.BlockSize, What: "block bootstrap"}
	}

	point := returns.Sharpe(values, b.cal.PeriodsPerYear)
	rng := b.newRNG()

	stats := make([]float64, 0, b.cfg.Iterations)
	for i := 0; i < b.cfg.Iterations; i++ {
		resample := resampleBlocks(rng, values, b.cal.BlockSize)
		std := returns.Stdev(resample)
		if std == 0 {
			// Zero-variance denominator; discard this iteration
			continue
		}
		s := returns.Mean(resample) / std * math.Sqrt(b.cal.PeriodsPerYear)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		stats = append(stats, s)
	}

	validRatio := float64(len(stats)) / float64(b.cfg.Iterations)
	degraded := validRatio < b.cfg.MinValidRatio

	result := &BootstrapResult{
		PointEstimate:   point,
		ConfidenceLevel: b.cfg.ConfidenceLevel,
		Iterations:      b.cfg.Iterations,
		ValidIterations: len(stats),
		Degraded:        degraded,
	}

	if len(stats) == 0 {
		return nil, fmt.Errorf("block bootstrap produced no valid iterations out of %d", b.cfg.Iterations)
	}

	tail := (1.0 - b.cfg.ConfidenceLevel) / 2.0
	result.CILower = returns.Percentile(stats, tail)
	result.CIUpper = returns.Percentile(stats, 1.0-tail)

	if degraded {
		log.Warn().
			Int("valid", len(stats)).
			Int("total", b.cfg.Iterations).
			Float64("min_valid_ratio", b.cfg.MinValidRatio).
			Msg("bootstrap degraded: too many non-finite iterations discarded")
	}

	return result, nil
}

// Validate renders a verdict: the CI must exclude zero AND the lower bound
// must exceed the configured minimum. Both conditions, not either. A
// degraded bootstrap is reported on the verdict rather than hidden inside
// a CI computed from too few samples.
func (b *BootstrapValidator) Validate(strategyID string, series *returns.Series) (Verdict, error) {
	result, err := b.Estimate(series)
	if err != nil {
		return Verdict{}, err
	}

	excludesZero := result.CILower > 0 || result.CIUpper < 0
	passed := excludesZero && result.CILower > b.cfg.MinLowerBound

	diagnostic := fmt.Sprintf("Sharpe %.3f, %.0f%% CI [%.3f, %.3f] from %d/%d valid iterations",
		result.PointEstimate, result.ConfidenceLevel*100,
		result.CILower, result.CIUpper, result.ValidIterations, result.Iterations)

	var warnings []string
	if result.Degraded {
		warnings = append(warnings, WarnDegradedBootstrap)
		diagnostic += " [DEGRADED: CI is low-confidence]"
		// A degraded bootstrap cannot certify significance
		passed = false
	}

	return Verdict{
		StrategyID: strategyID,
		Validator:  ValidatorBootstrap,
		Passed:     passed,
		Statistic:  result.CILower,
		Threshold:  b.cfg.MinLowerBound,
		NPeriods:   series.Len(),
		Diagnostic: diagnostic,
		Warnings:   warnings,
		Timestamp:  time.Now().UTC(),
	}, nil
}
