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

// MultipleComparisonCorrector computes the Sharpe threshold a strategy
// must clear when N candidates are tested simultaneously, bounding the
// family-wise error rate Bonferroni-style. Testing more candidates never
// lowers the bar.
type MultipleComparisonCorrector struct {
	cfg config.MultipleComparisonConfig
	cal config.Calibration

	mu    sync.Mutex
	seeds *rand.Rand // Guarded; only derives per-call generators
}

// NewMultipleComparisonCorrector creates a corrector seeded from the clock.
func NewMultipleComparisonCorrector(cfg config.MultipleComparisonConfig, cal config.Calibration) *MultipleComparisonCorrector {
	return &MultipleComparisonCorrector{
		cfg:   cfg,
		cal:   cal,
		seeds: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededMultipleComparisonCorrector fixes the null-draw seed for
// reproducible thresholds.
func NewSeededMultipleComparisonCorrector(cfg config.MultipleComparisonConfig, cal config.Calibration, seed int64) *MultipleComparisonCorrector {
	return &MultipleComparisonCorrector{cfg: cfg, cal: cal, seeds: rand.New(rand.NewSource(seed))}
}

func (m *MultipleComparisonCorrector) newRNG() *rand.Rand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return rand.New(rand.NewSource(m.seeds.Int63()))
}

// CorrectionResult reports both threshold derivations. Enforced is the
// threshold that governs: the clamped parametric one, raised to the
// bootstrap one when the two diverge enough to distrust normality.
type CorrectionResult struct {
	NStrategies         int     `json:"n_strategies"`
	NPeriods            int     `json:"n_periods"`
	AdjustedAlpha       float64 `json:"adjusted_alpha"`
	ParametricThreshold float64 `json:"parametric_threshold"`
	BootstrapThreshold  float64 `json:"bootstrap_threshold"`
	Enforced            float64 `json:"enforced_threshold"`
	Diverged            bool    `json:"diverged"` // Order-of-magnitude disagreement between derivations
}

// ParametricThreshold computes the Bonferroni-adjusted annualized Sharpe
// threshold: alpha/N converted to a two-tailed Z-score, scaled by
// sqrt(periodsPerYear/T), clamped to the conservative floor. The floor
// exists because the normal-sampling derivation is unreliable for
// fat-tailed, regime-shifting markets.
func (m *MultipleComparisonCorrector) ParametricThreshold(nStrategies, nPeriods int) (float64, error) {
	if nStrategies < 1 {
		return 0, fmt.Errorf("need at least one strategy, got %d", nStrategies)
	}
	if nPeriods < 2 {
		return 0, &InsufficientDataError{Have: nPeriods, Need: 2, What: "multiple-comparison correction"}
	}

	adjustedAlpha := m.cfg.Alpha / float64(nStrategies)
	z := twoTailedZ(adjustedAlpha)
	threshold := z * math.Sqrt(m.cal.PeriodsPerYear/float64(nPeriods))

	if threshold < m.cfg.ThresholdFloor {
		threshold = m.cfg.ThresholdFloor
	}
	return threshold, nil
}

// BootstrapThreshold derives the empirical (1 - alpha/N) percentile
// annualized Sharpe across independent zero-skill return series at the
// calibrated market volatility. Used to audit the parametric derivation.
func (m *MultipleComparisonCorrector) BootstrapThreshold(nStrategies, nPeriods int) (float64, error) {
	if nStrategies < 1 {
		return 0, fmt.Errorf("need at least one strategy, got %d", nStrategies)
	}
	if nPeriods < 2 {
		return 0, &InsufficientDataError{Have: nPeriods, Need: 2, What: "bootstrap null threshold"}
	}

	rng := m.newRNG()
	dailyVol := m.cal.MarketVolatility / math.Sqrt(m.cal.PeriodsPerYear)

	// Every draw is a fresh zero-mean series. Resampling one fixed
	// realization would center the whole null distribution on that
	// realization's Sharpe instead of zero.
	draw := make([]float64, nPeriods)
	sharpes := make([]float64, 0, m.cfg.NullDraws)
	for i := 0; i < m.cfg.NullDraws; i++ {
		for j := range draw {
			draw[j] = dailyVol * rng.NormFloat64()
		}
		s := returns.Sharpe(draw, m.cal.PeriodsPerYear)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		sharpes = append(sharpes, s)
	}
	if len(sharpes) == 0 {
		return 0, fmt.Errorf("null-threshold bootstrap produced no valid draws")
	}

	adjustedAlpha := m.cfg.Alpha / float64(nStrategies)
	return returns.Percentile(sharpes, 1.0-adjustedAlpha), nil
}

// Correct computes both thresholds and resolves the one to enforce.
func (m *MultipleComparisonCorrector) Correct(nStrategies, nPeriods int) (*CorrectionResult, error) {
	parametric, err := m.ParametricThreshold(nStrategies, nPeriods)
	if err != nil {
		return nil, err
	}
	bootstrap, err := m.BootstrapThreshold(nStrategies, nPeriods)
	if err != nil {
		return nil, err
	}

	result := &CorrectionResult{
		NStrategies:         nStrategies,
		NPeriods:            nPeriods,
		AdjustedAlpha:       m.cfg.Alpha / float64(nStrategies),
		ParametricThreshold: parametric,
		BootstrapThreshold:  bootstrap,
		Enforced:            parametric,
	}

	// Order-of-magnitude disagreement means the normality assumption is
	// failing; the stricter threshold governs.
	if parametric > 0 && bootstrap > 0 {
		ratio := bootstrap / parametric
		if ratio >= 10.0 || ratio <= 0.1 {
			result.Diverged = true
			if bootstrap > result.Enforced {
				result.Enforced = bootstrap
			}
			log.Warn().
				Float64("parametric", parametric).
				Float64("bootstrap", bootstrap).
				Float64("enforced", result.Enforced).
				Msg("significance thresholds diverge by an order of magnitude; normality assumption suspect")
		}
	}

	return result, nil
}

// Validate renders a batch-level verdict for one strategy's Sharpe against
// the corrected threshold.
func (m *MultipleComparisonCorrector) Validate(strategyID string, sharpe float64, nStrategies, nPeriods int) (Verdict, error) {
	result, err := m.Correct(nStrategies, nPeriods)
	if err != nil {
		return Verdict{}, err
	}
	return m.verdict(strategyID, sharpe, result), nil
}

// verdict renders one strategy's verdict from an already-computed
// correction, so every survivor of a batch faces the identical bar.
func (m *MultipleComparisonCorrector) verdict(strategyID string, sharpe float64, result *CorrectionResult) Verdict {
	var warnings []string
	diagnostic := fmt.Sprintf("N=%d candidates, adjusted alpha %.5f, parametric %.3f / bootstrap %.3f, enforced %.3f",
		result.NStrategies, result.AdjustedAlpha,
		result.ParametricThreshold, result.BootstrapThreshold, result.Enforced)
	if result.Diverged {
		warnings = append(warnings, WarnAssumptionDivergence)
		diagnostic += " [thresholds diverged; stricter governs]"
	}

	return Verdict{
		StrategyID: strategyID,
		Validator:  ValidatorMultipleComparison,
		Passed:     sharpe > result.Enforced,
		Statistic:  sharpe,
		Threshold:  result.Enforced,
		NPeriods:   result.NPeriods,
		Diagnostic: diagnostic,
		Warnings:   warnings,
		Timestamp:  time.Now().UTC(),
	}
}

// twoTailedZ converts a two-tailed significance level to its Z-score:
// P(|Z| > z) = alpha.
func twoTailedZ(alpha float64) float64 {
	if alpha <= 0 {
		return math.Inf(1)
	}
	if alpha >= 1 {
		return 0
	}
	return math.Sqrt2 * math.Erfinv(1.0-alpha)
}
