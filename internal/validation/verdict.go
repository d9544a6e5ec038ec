// Package validation implements the statistical validation framework: five
// validators that decide whether a candidate strategy's backtest
// performance looks like genuine skill rather than noise, overfitting, or
// multiple-comparison luck, plus the orchestrator that composes them.
package validation

import (
	"fmt"
	"time"
)

// Validator names as they appear in verdicts and telemetry labels.
const (
	ValidatorWalkForward        = "walk_forward"
	ValidatorBootstrap          = "bootstrap"
	ValidatorMultipleComparison = "multiple_comparison"
	ValidatorDataSplit          = "data_split"
	ValidatorBaseline           = "baseline"
)

// Verdict is the immutable record one validator produces for one strategy.
// Statistic and Threshold describe a threshold comparison
// (statistic > threshold passes); they are never p-values.
type Verdict struct {
	StrategyID string    `json:"strategy_id"`
	Validator  string    `json:"validator_name"`
	Passed     bool      `json:"passed"`
	Statistic  float64   `json:"statistic_value"`
	Threshold  float64   `json:"threshold_value"`
	NPeriods   int       `json:"n_periods"`
	Diagnostic string    `json:"diagnostic_message"`
	Warnings   []string  `json:"warnings,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// AggregateVerdict is the orchestrator's final decision for one strategy.
type AggregateVerdict struct {
	StrategyID    string    `json:"strategy_id"`
	RunID         string    `json:"run_id"`
	OverallPassed bool      `json:"overall_passed"`
	Verdicts      []Verdict `json:"verdicts"`
	Error         string    `json:"error,omitempty"` // Fatal error that aborted this strategy, if any
	Timestamp     time.Time `json:"timestamp"`
}

// Summary renders a one-line human-readable outcome.
func (v Verdict) Summary() string {
	status := "FAIL"
	if v.Passed {
		status = "PASS"
	}
	return fmt.Sprintf("%s %s: statistic %.3f vs threshold %.3f over %d periods (%s)",
		status, v.Validator, v.Statistic, v.Threshold, v.NPeriods, v.Diagnostic)
}

// FailedValidators lists the validators that rejected the strategy.
func (a AggregateVerdict) FailedValidators() []string {
	var failed []string
	for _, v := range a.Verdicts {
		if !v.Passed {
			failed = append(failed, v.Validator)
		}
	}
	return failed
}
