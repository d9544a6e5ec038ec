package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/stratvalid/internal/config"
	"github.com/sawpanic/stratvalid/internal/report"
	"github.com/sawpanic/stratvalid/internal/returns"
	"github.com/sawpanic/stratvalid/internal/telemetry"
)

// Orchestrator composes the five validators. Per strategy it runs the
// cheapest checks first and short-circuits on the first hard failure;
// every check that ran is recorded on the aggregate verdict for
// diagnosability. The multiple-comparison correction runs once across the
// full batch, since its N is the number of candidates tested together.
type Orchestrator struct {
	cfg config.ValidationConfig

	dataSplit   *DataSplitValidator
	walkForward *WalkForwardAnalyzer
	bootstrap   *BootstrapValidator
	baseline    *BaselineComparator
	multiComp   *MultipleComparisonCorrector

	// Progress receives per-strategy completion events; nil disables it.
	Progress func(event ProgressEvent)

	// Workers bounds batch parallelism; <= 0 means sequential.
	Workers int
}

// ProgressEvent describes one completed strategy within a batch.
type ProgressEvent struct {
	RunID      string    `json:"run_id"`
	StrategyID string    `json:"strategy_id"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Passed     bool      `json:"passed"`
	Timestamp  time.Time `json:"timestamp"`
}

// BatchResult is the outcome of validating a batch of candidates.
type BatchResult struct {
	RunID     string             `json:"run_id"`
	Verdicts  []AggregateVerdict `json:"verdicts"`
	Passed    int                `json:"passed"`
	Failed    int                `json:"failed"`
	Errored   int                `json:"errored"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
}

// NewOrchestrator builds the validator pipeline from configuration and
// the baseline comparator's collaborators.
func NewOrchestrator(cfg config.ValidationConfig, baseline *BaselineComparator) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		dataSplit:   NewDataSplitValidator(cfg.DataSplit, cfg.Calibration),
		walkForward: NewWalkForwardAnalyzer(cfg.WalkForward, cfg.Calibration),
		bootstrap:   NewBootstrapValidator(cfg.Bootstrap, cfg.Calibration),
		baseline:    baseline,
		multiComp:   NewMultipleComparisonCorrector(cfg.MultipleComparison, cfg.Calibration),
	}
}

// Reseed swaps the stochastic validators for seeded instances so a run
// can be reproduced exactly.
func (o *Orchestrator) Reseed(seed int64) {
	o.bootstrap = NewSeededBootstrapValidator(o.cfg.Bootstrap, o.cfg.Calibration, seed)
	o.multiComp = NewSeededMultipleComparisonCorrector(o.cfg.MultipleComparison, o.cfg.Calibration, seed)
}

// ValidateStrategy runs the per-strategy validators in ascending cost
// order. The returned aggregate holds every verdict produced before the
// short-circuit. A fatal error aborts only this strategy.
func (o *Orchestrator) ValidateStrategy(ctx context.Context, runID string, rep report.Report) AggregateVerdict {
	agg := AggregateVerdict{
		StrategyID: rep.StrategyID(),
		RunID:      runID,
		Timestamp:  time.Now().UTC(),
	}

	record := func(v Verdict) bool {
		agg.Verdicts = append(agg.Verdicts, v)
		telemetry.RecordVerdict(v.Validator, v.Passed)
		return v.Passed
	}
	abort := func(stage string, err error) AggregateVerdict {
		agg.OverallPassed = false
		agg.Error = fmt.Sprintf("%s: %v", stage, err)
		log.Error().Err(err).Str("strategy_id", agg.StrategyID).Str("stage", stage).
			Msg("strategy validation aborted")
		return agg
	}

	// Stage 1: data split (its consistency pre-check short-circuits
	// internally before the expensive criteria).
	v, err := o.dataSplit.Validate(rep.StrategyID(), rep)
	if err != nil {
		return abort("data_split", err)
	}
	if !record(v) {
		return agg
	}

	series, err := rep.Returns()
	if err != nil {
		return abort("returns", err)
	}

	// Stage 2: walk-forward.
	v, err = o.walkForward.Validate(rep.StrategyID(), series)
	if err != nil {
		return abort("walk_forward", err)
	}
	if !record(v) {
		return agg
	}

	// Stage 3: bootstrap CI.
	v, err = o.bootstrap.Validate(rep.StrategyID(), series)
	if err != nil {
		return abort("bootstrap", err)
	}
	for _, w := range v.Warnings {
		if w == WarnDegradedBootstrap {
			telemetry.DegradedBootstraps.Inc()
		}
	}
	if !record(v) {
		return agg
	}

	// Stage 4: baseline comparison.
	v, err = o.baseline.Validate(ctx, rep.StrategyID(), series)
	if err != nil {
		return abort("baseline", err)
	}
	if !record(v) {
		return agg
	}

	agg.OverallPassed = true
	return agg
}

// ValidateBatch validates every report, then applies the
// multiple-comparison correction with N equal to the batch size to each
// strategy that survived the per-strategy validators. Fatal errors abort
// individual strategies, never the batch.
func (o *Orchestrator) ValidateBatch(ctx context.Context, reports []report.Report) (*BatchResult, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	start := time.Now()
	result := &BatchResult{
		RunID:     uuid.NewString(),
		Verdicts:  make([]AggregateVerdict, len(reports)),
		StartedAt: start.UTC(),
	}

	workers := o.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(reports) {
		workers = len(reports)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				agg := o.ValidateStrategy(ctx, result.RunID, reports[i])
				result.Verdicts[i] = agg
				if o.Progress != nil {
					o.Progress(ProgressEvent{
						RunID:      result.RunID,
						StrategyID: agg.StrategyID,
						Index:      i,
						Total:      len(reports),
						Passed:     agg.OverallPassed,
						Timestamp:  time.Now().UTC(),
					})
				}
			}
		}()
	}
	for i := range reports {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Batch-level stage: multiple-comparison correction over N candidates.
	// One correction per distinct series length; survivors with identical
	// inputs must face the identical enforced threshold.
	nStrategies := len(reports)
	corrections := make(map[int]*CorrectionResult)
	for i := range result.Verdicts {
		agg := &result.Verdicts[i]
		if !agg.OverallPassed {
			continue
		}
		series, err := reports[i].Returns()
		if err != nil {
			agg.OverallPassed = false
			agg.Error = fmt.Sprintf("multiple_comparison: %v", err)
			continue
		}
		correction, ok := corrections[series.Len()]
		if !ok {
			correction, err = o.multiComp.Correct(nStrategies, series.Len())
			if err != nil {
				agg.OverallPassed = false
				agg.Error = fmt.Sprintf("multiple_comparison: %v", err)
				continue
			}
			corrections[series.Len()] = correction
		}
		sharpe := returns.Sharpe(series.Values(), o.cfg.Calibration.PeriodsPerYear)
		v := o.multiComp.verdict(agg.StrategyID, sharpe, correction)
		agg.Verdicts = append(agg.Verdicts, v)
		telemetry.RecordVerdict(v.Validator, v.Passed)
		agg.OverallPassed = v.Passed
	}

	for _, agg := range result.Verdicts {
		switch {
		case agg.Error != "":
			result.Errored++
		case agg.OverallPassed:
			result.Passed++
		default:
			result.Failed++
		}
		telemetry.RecordStrategy(agg.OverallPassed)
	}

	result.Duration = time.Since(start)
	telemetry.BatchDuration.Observe(result.Duration.Seconds())

	log.Info().
		Str("run_id", result.RunID).
		Int("strategies", len(reports)).
		Int("passed", result.Passed).
		Int("failed", result.Failed).
		Int("errored", result.Errored).
		Dur("duration", result.Duration).
		Msg("batch validation complete")

	return result, nil
}
