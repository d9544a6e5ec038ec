package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/stratvalid/internal/config"
	"github.com/sawpanic/stratvalid/internal/report"
	"github.com/sawpanic/stratvalid/internal/returns"
)

// DataSplitValidator evaluates a strategy across fixed train/validation/
// test calendar periods and scores cross-period consistency. Period
// extraction goes through the report's filtering capability; a report that
// cannot be filtered is either rejected (strict) or answered with
// whole-period data plus an explicit warning (default), never silently.
type DataSplitValidator struct {
	cfg config.DataSplitConfig
	cal config.Calibration
}

// NewDataSplitValidator creates a validator from configuration.
func NewDataSplitValidator(cfg config.DataSplitConfig, cal config.Calibration) *DataSplitValidator {
	return &DataSplitValidator{cfg: cfg, cal: cal}
}

// SplitResult holds the per-period metrics and derived scores.
type SplitResult struct {
	Train      returns.Metrics `json:"train"`
	Validation returns.Metrics `json:"validation"`
	Test       returns.Metrics `json:"test"`

	Consistency float64 `json:"consistency"` // 1 - stdev/mean of period Sharpes, clamped [0,1]
	Degradation float64 `json:"degradation"` // Validation Sharpe / train Sharpe

	Unfiltered bool `json:"unfiltered"` // Whole-period data was reused across periods (leakage)
}

// ConsistencyScore computes 1 - (stdev/mean) of the period Sharpes,
// clamped to [0, 1]. When the mean is at or below epsilon the score is
// forced to 0: a strategy that loses money consistently has low relative
// dispersion around a negative mean and would otherwise score as "robust".
func ConsistencyScore(sharpes []float64, epsilon float64) float64 {
	if len(sharpes) == 0 {
		return 0
	}
	mean := returns.Mean(sharpes)
	if mean <= epsilon {
		return 0
	}
	score := 1.0 - returns.Stdev(sharpes)/mean
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// periodMetrics extracts metrics for one calendar period through the
// report's filtering capability.
func (d *DataSplitValidator) periodMetrics(rep report.Report, from, to time.Time) (returns.Metrics, bool, error) {
	restricted, err := report.Restrict(rep, from, to, d.cfg.Strict)
	if err != nil {
		return returns.Metrics{}, false, err
	}

	// Restrict hands the same report back only in the non-strict
	// unsupported-filtering case.
	unfiltered := restricted == rep

	series, err := restricted.Returns()
	if err == nil {
		return returns.ComputeMetrics(series, d.cal.PeriodsPerYear), unfiltered, nil
	}
	if sm, ok := restricted.(report.StaticMetricsProvider); ok {
		return sm.StaticMetrics(), unfiltered, nil
	}
	return returns.Metrics{}, false, fmt.Errorf("period metrics for %s: %w", rep.StrategyID(), err)
}

// Evaluate extracts per-period metrics and derives the split scores.
func (d *DataSplitValidator) Evaluate(rep report.Report) (*SplitResult, error) {
	type period struct {
		name     string
		from, to time.Time
	}
	periods := []period{
		{"train", d.cfg.TrainStart, d.cfg.TrainEnd},
		{"validation", d.cfg.TrainEnd, d.cfg.ValidationEnd},
		{"test", d.cfg.ValidationEnd, d.cfg.TestEnd},
	}

	metrics := make([]returns.Metrics, len(periods))
	anyUnfiltered := false
	for i, p := range periods {
		m, unfiltered, err := d.periodMetrics(rep, p.from, p.to)
		if err != nil {
			return nil, fmt.Errorf("%s period: %w", p.name, err)
		}
		if unfiltered {
			anyUnfiltered = true
			log.Warn().
				Str("strategy_id", rep.StrategyID()).
				Str("period", p.name).
				Msg("data split period evaluated on whole-period data; cross-period scores are meaningless")
		}
		metrics[i] = m
	}

	sharpes := []float64{metrics[0].SharpeRatio, metrics[1].SharpeRatio, metrics[2].SharpeRatio}

	degradation := 0.0
	if metrics[0].SharpeRatio != 0 {
		degradation = metrics[1].SharpeRatio / metrics[0].SharpeRatio
	}

	return &SplitResult{
		Train:       metrics[0],
		Validation:  metrics[1],
		Test:        metrics[2],
		Consistency: ConsistencyScore(sharpes, d.cfg.MeanEpsilon),
		Degradation: degradation,
		Unfiltered:  anyUnfiltered,
	}, nil
}

// Validate renders the pass/fail verdict. The already-computed consistency
// score is checked first and short-circuits the remaining criteria, so a
// clearly inconsistent strategy costs nothing further.
func (d *DataSplitValidator) Validate(strategyID string, rep report.Report) (Verdict, error) {
	result, err := d.Evaluate(rep)
	if err != nil {
		return Verdict{}, err
	}

	var warnings []string
	if result.Unfiltered {
		warnings = append(warnings, WarnUnfilteredReport)
	}

	verdict := Verdict{
		StrategyID: strategyID,
		Validator:  ValidatorDataSplit,
		NPeriods:   result.Train.NPeriods + result.Validation.NPeriods + result.Test.NPeriods,
		Warnings:   warnings,
		Timestamp:  time.Now().UTC(),
	}

	var failures []string

	// Cheap check first: consistency short-circuits the rest.
	if result.Consistency < d.cfg.MinConsistency {
		verdict.Passed = false
		verdict.Statistic = result.Consistency
		verdict.Threshold = d.cfg.MinConsistency
		verdict.Diagnostic = fmt.Sprintf("consistency %.3f < %.3f (period Sharpes %.2f/%.2f/%.2f)",
			result.Consistency, d.cfg.MinConsistency,
			result.Train.SharpeRatio, result.Validation.SharpeRatio, result.Test.SharpeRatio)
		return verdict, nil
	}

	if result.Validation.SharpeRatio < d.cfg.MinValSharpe {
		failures = append(failures, fmt.Sprintf("validation Sharpe %.3f < %.3f",
			result.Validation.SharpeRatio, d.cfg.MinValSharpe))
	}
	if result.Degradation < d.cfg.MinDegradation {
		failures = append(failures, fmt.Sprintf("degradation ratio %.3f < %.3f",
			result.Degradation, d.cfg.MinDegradation))
	}

	verdict.Passed = len(failures) == 0
	verdict.Statistic = result.Validation.SharpeRatio
	verdict.Threshold = d.cfg.MinValSharpe
	if verdict.Passed {
		verdict.Diagnostic = fmt.Sprintf("consistency %.3f, degradation %.3f, period Sharpes %.2f/%.2f/%.2f",
			result.Consistency, result.Degradation,
			result.Train.SharpeRatio, result.Validation.SharpeRatio, result.Test.SharpeRatio)
	} else {
		verdict.Diagnostic = strings.Join(failures, "; ")
	}
	return verdict, nil
}
