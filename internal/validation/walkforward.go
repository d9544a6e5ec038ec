package validation

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/stratvalid/internal/config"
	"github.com/sawpanic/stratvalid/internal/returns"
)

// WalkForwardAnalyzer rolls non-overlapping train/test windows across the
// series to test out-of-sample stability. The critical invariant: the next
// window starts exactly where the previous window's test slice ended, so
// no training window ever re-includes a prior test slice. Advancing by an
// independent step size is how look-ahead bias sneaks in.
type WalkForwardAnalyzer struct {
	cfg config.WalkForwardConfig
	cal config.Calibration
}

// NewWalkForwardAnalyzer creates an analyzer from configuration.
func NewWalkForwardAnalyzer(cfg config.WalkForwardConfig, cal config.Calibration) *WalkForwardAnalyzer {
	return &WalkForwardAnalyzer{cfg: cfg, cal: cal}
}

// Window is one train/test pair over half-open index ranges.
type Window struct {
	TrainStart int `json:"train_start"` // Inclusive
	TrainEnd   int `json:"train_end"`   // Exclusive; also the test start
	TestEnd    int `json:"test_end"`    // Exclusive

	TrainMetrics returns.Metrics `json:"train_metrics"`
	TestMetrics  returns.Metrics `json:"test_metrics"`
}

// WalkForwardResult aggregates the per-window evaluations.
type WalkForwardResult struct {
	Windows         []Window `json:"windows"`
	MeanOOSSharpe   float64  `json:"mean_oos_sharpe"`
	MedianOOSSharpe float64  `json:"median_oos_sharpe"`
}

// Analyze evaluates every full walk-forward window. A trailing window whose
// test slice would overrun the series end is dropped entirely; partial
// windows are rejected, not evaluated.
func (a *WalkForwardAnalyzer) Analyze(series *returns.Series) (*WalkForwardResult, error) {
	trainLen := a.cfg.TrainPeriods
	testLen := a.cfg.TestPeriods
	total := series.Len()
	windowLen := trainLen + testLen

	if total < windowLen {
		return nil, &InsufficientDataError{Have: total, Need: windowLen, What: "walk-forward window"}
	}

	var windows []Window
	for pos := 0; pos+windowLen <= total; pos = pos + windowLen {
		trainSlice, err := series.SliceIdx(pos, pos+trainLen)
		if err != nil {
			return nil, fmt.Errorf("train slice at %d: %w", pos, err)
		}
		testSlice, err := series.SliceIdx(pos+trainLen, pos+windowLen)
		if err != nil {
			return nil, fmt.Errorf("test slice at %d: %w", pos+trainLen, err)
		}

		windows = append(windows, Window{
			TrainStart:   pos,
			TrainEnd:     pos + trainLen,
			TestEnd:      pos + windowLen,
			TrainMetrics: returns.ComputeMetrics(trainSlice, a.cal.PeriodsPerYear),
			TestMetrics:  returns.ComputeMetrics(testSlice, a.cal.PeriodsPerYear),
		})
	}

	if len(windows) < a.cfg.MinWindows {
		return nil, &InsufficientDataError{
			Have: total,
			Need: a.cfg.MinWindows * windowLen,
			What: fmt.Sprintf("walk-forward (%d windows generated, %d required)", len(windows), a.cfg.MinWindows),
		}
	}

	oosSharpes := make([]float64, len(windows))
	for i, w := range windows {
		oosSharpes[i] = w.TestMetrics.SharpeRatio
	}

	result := &WalkForwardResult{
		Windows:         windows,
		MeanOOSSharpe:   returns.Mean(oosSharpes),
		MedianOOSSharpe: returns.Percentile(oosSharpes, 0.5),
	}

	log.Debug().
		Int("windows", len(windows)).
		Float64("mean_oos_sharpe", result.MeanOOSSharpe).
		Msg("walk-forward analysis complete")

	return result, nil
}

// Validate runs the analysis and renders a verdict against the configured
// minimum mean out-of-sample Sharpe.
func (a *WalkForwardAnalyzer) Validate(strategyID string, series *returns.Series) (Verdict, error) {
	result, err := a.Analyze(series)
	if err != nil {
		return Verdict{}, err
	}

	passed := result.MeanOOSSharpe > a.cfg.MinOOSSharpe
	return Verdict{
		StrategyID: strategyID,
		Validator:  ValidatorWalkForward,
		Passed:     passed,
		Statistic:  result.MeanOOSSharpe,
		Threshold:  a.cfg.MinOOSSharpe,
		NPeriods:   series.Len(),
		Diagnostic: fmt.Sprintf("%d windows, mean OOS Sharpe %.3f, median %.3f",
			len(result.Windows), result.MeanOOSSharpe, result.MedianOOSSharpe),
		Timestamp: time.Now().UTC(),
	}, nil
}
