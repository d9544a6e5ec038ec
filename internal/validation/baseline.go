package validation

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/stratvalid/internal/config"
	"github.com/sawpanic/stratvalid/internal/returns"
	"github.com/sawpanic/stratvalid/internal/telemetry"
	"github.com/sawpanic/stratvalid/internal/universe"
	"github.com/sawpanic/stratvalid/internal/validation/baselinecache"
)

// Baseline strategy kinds.
const (
	BaselineBuyAndHold  = "buy_and_hold"
	BaselineEqualWeight = "equal_weight"
	BaselineRiskParity  = "risk_parity"
)

// BaselineComparator computes reference-strategy performance over the
// universe and compares a candidate's Sharpe against each. Computation is
// deterministic given (universe snapshot, period, kind) and cached under a
// content hash of those inputs.
type BaselineComparator struct {
	cfg    config.BaselineConfig
	cal    config.Calibration
	uni    *universe.Universe
	source universe.PriceSource
	cache  baselinecache.Store

	mu sync.Mutex // Serializes cache refills; concurrent reads go through the store

	hits   atomic.Int64
	misses atomic.Int64
}

// NewBaselineComparator wires the comparator to its universe, price source
// and cache store.
func NewBaselineComparator(cfg config.BaselineConfig, cal config.Calibration, uni *universe.Universe, source universe.PriceSource, cache baselinecache.Store) *BaselineComparator {
	return &BaselineComparator{cfg: cfg, cal: cal, uni: uni, source: source, cache: cache}
}

// CacheHits reports observed cache hits (for tests and diagnostics).
func (b *BaselineComparator) CacheHits() int64 { return b.hits.Load() }

// CacheMisses reports observed cache misses.
func (b *BaselineComparator) CacheMisses() int64 { return b.misses.Load() }

// BaselineMetrics pairs a baseline kind with its computed metrics.
type BaselineMetrics struct {
	Kind    string          `json:"kind"`
	Metrics returns.Metrics `json:"metrics"`
}

// Baselines returns metrics for every reference strategy over [from, to),
// serving from the cache where possible.
func (b *BaselineComparator) Baselines(ctx context.Context, from, to time.Time) ([]BaselineMetrics, error) {
	kinds := []string{BaselineBuyAndHold, BaselineEqualWeight, BaselineRiskParity}
	out := make([]BaselineMetrics, 0, len(kinds))
	for _, kind := range kinds {
		m, err := b.baseline(ctx, kind, from, to)
		if err != nil {
			return nil, fmt.Errorf("baseline %s: %w", kind, err)
		}
		out = append(out, BaselineMetrics{Kind: kind, Metrics: m})
	}
	return out, nil
}

func (b *BaselineComparator) baseline(ctx context.Context, kind string, from, to time.Time) (returns.Metrics, error) {
	key := baselinecache.Key(b.source.Fingerprint(), from, to, kind)

	entry, found, err := b.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("baseline cache read failed; recomputing")
	}
	if found {
		b.hits.Add(1)
		telemetry.RecordCache(true)
		return entry.Metrics, nil
	}
	b.misses.Add(1)
	telemetry.RecordCache(false)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Another worker may have refilled while we waited for the lock.
	if entry, found, err = b.cache.Get(ctx, key); err == nil && found {
		return entry.Metrics, nil
	}

	series, err := b.compute(kind, from, to)
	if err != nil {
		return returns.Metrics{}, err
	}
	metrics := returns.ComputeMetrics(series, b.cal.PeriodsPerYear)

	if err := b.cache.Set(ctx, key, baselinecache.Entry{Metrics: metrics, CachedAt: time.Now().UTC()}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("baseline cache write failed")
	}
	return metrics, nil
}

// compute builds the baseline return series from the universe data.
func (b *BaselineComparator) compute(kind string, from, to time.Time) (*returns.Series, error) {
	switch kind {
	case BaselineBuyAndHold:
		return b.source.SymbolReturns(b.uni.IndexSymbol, from, to)

	case BaselineEqualWeight:
		symbols := b.uni.TopN(b.cfg.TopN)
		weights := make([]float64, len(symbols))
		for i := range weights {
			weights[i] = 1.0 / float64(len(symbols))
		}
		return b.basket(symbols, weights, from, to)

	case BaselineRiskParity:
		symbols := b.uni.TopN(b.cfg.TopN)
		weights := make([]float64, len(symbols))
		sum := 0.0
		for i, sym := range symbols {
			series, err := b.source.SymbolReturns(sym, from, to)
			if err != nil {
				return nil, err
			}
			vol := returns.Stdev(series.Values())
			if vol <= 0 {
				vol = math.SmallestNonzeroFloat64
			}
			weights[i] = 1.0 / vol
			sum += weights[i]
		}
		for i := range weights {
			weights[i] /= sum
		}
		return b.basket(symbols, weights, from, to)

	default:
		return nil, fmt.Errorf("unknown baseline kind %q", kind)
	}
}

// basket combines constituent series into one weighted return series.
// Constituents must share the same period grid; the universe source
// guarantees that for a single snapshot.
func (b *BaselineComparator) basket(symbols []string, weights []float64, from, to time.Time) (*returns.Series, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty basket")
	}

	var timestamps []time.Time
	var combined []float64
	for i, sym := range symbols {
		series, err := b.source.SymbolReturns(sym, from, to)
		if err != nil {
			return nil, err
		}
		if combined == nil {
			timestamps = make([]time.Time, series.Len())
			combined = make([]float64, series.Len())
			for j := 0; j < series.Len(); j++ {
				timestamps[j], _ = series.At(j)
			}
		}
		if series.Len() != len(combined) {
			return nil, fmt.Errorf("constituent %s has %d periods, basket grid has %d",
				sym, series.Len(), len(combined))
		}
		for j := 0; j < series.Len(); j++ {
			_, v := series.At(j)
			combined[j] += weights[i] * v
		}
	}
	return returns.NewSeries(timestamps, combined)
}

// Validate compares the candidate's Sharpe against every baseline. The
// candidate passes when it beats at least one baseline by more than the
// minimum improvement margin. Baseline win rates ride along as a
// non-blocking diagnostic.
func (b *BaselineComparator) Validate(ctx context.Context, strategyID string, series *returns.Series) (Verdict, error) {
	baselines, err := b.Baselines(ctx, series.Start(), series.End().Add(24*time.Hour))
	if err != nil {
		return Verdict{}, err
	}

	candidate := returns.Sharpe(series.Values(), b.cal.PeriodsPerYear)

	bestBeaten := math.Inf(-1)
	lowestBar := math.Inf(1)
	passed := false
	detail := ""
	for _, bl := range baselines {
		bar := bl.Metrics.SharpeRatio + b.cfg.MinImprovement
		if bar < lowestBar {
			lowestBar = bar
		}
		if candidate > bar {
			passed = true
			if bl.Metrics.SharpeRatio > bestBeaten {
				bestBeaten = bl.Metrics.SharpeRatio
			}
		}
		detail += fmt.Sprintf(" %s=%.2f(win%%=%.0f)", bl.Kind, bl.Metrics.SharpeRatio, bl.Metrics.WinRate*100)
	}

	return Verdict{
		StrategyID: strategyID,
		Validator:  ValidatorBaseline,
		Passed:     passed,
		Statistic:  candidate,
		Threshold:  lowestBar,
		NPeriods:   series.Len(),
		Diagnostic: fmt.Sprintf("candidate Sharpe %.3f vs baselines%s (margin %.2f)", candidate, detail, b.cfg.MinImprovement),
		Timestamp:  time.Now().UTC(),
	}, nil
}
