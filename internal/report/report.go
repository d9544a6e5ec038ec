// Package report defines the backtest report consumed by the validators.
// A report is produced by the external backtest engine; validators only
// ever read it. Sub-period access is a capability, not a guarantee: a
// report that cannot be restricted to a calendar range must surface that
// as an explicit error, never by silently answering with whole-period data.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/stratvalid/internal/returns"
)

// ErrUnsupportedFiltering indicates a report that cannot be restricted to
// a calendar sub-period. In strict mode this is fatal; in default mode the
// caller receives whole-period data plus a loud warning.
var ErrUnsupportedFiltering = errors.New("report does not support date filtering")

// Report is the minimal surface every backtest report exposes.
type Report interface {
	// StrategyID attributes the report to the strategy that produced it.
	StrategyID() string
	// Returns derives the full-period return series.
	Returns() (*returns.Series, error)
}

// DateFilterable is the optional capability of restricting a report to a
// calendar sub-period [from, to).
type DateFilterable interface {
	Report
	FilterDates(from, to time.Time) (Report, error)
}

// SeriesReport wraps a raw return series as a Report. It is date-filterable
// by slicing the series directly.
type SeriesReport struct {
	strategyID string
	series     *returns.Series
}

// NewSeriesReport builds a SeriesReport around an existing series.
func NewSeriesReport(strategyID string, series *returns.Series) *SeriesReport {
	return &SeriesReport{strategyID: strategyID, series: series}
}

func (r *SeriesReport) StrategyID() string { return r.strategyID }

func (r *SeriesReport) Returns() (*returns.Series, error) {
	return r.series, nil
}

// FilterDates slices the underlying series to [from, to).
func (r *SeriesReport) FilterDates(from, to time.Time) (Report, error) {
	sub, err := r.series.SliceRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", r.strategyID, err)
	}
	return &SeriesReport{strategyID: r.strategyID, series: sub}, nil
}

// Restrict resolves the filtering capability of rep for [from, to).
// Capability order: DateFilterable first, then the raw-series path. When
// neither applies the behavior depends on strict: strict=true returns
// ErrUnsupportedFiltering, strict=false returns the unfiltered report and
// emits a deprecation-style warning so the data leak stays observable.
func Restrict(rep Report, from, to time.Time, strict bool) (Report, error) {
	if f, ok := rep.(DateFilterable); ok {
		return f.FilterDates(from, to)
	}

	// Raw-series fallback: rebuild a sliceable report from the series.
	if series, err := rep.Returns(); err == nil && series != nil {
		sub, serr := series.SliceRange(from, to)
		if serr == nil {
			return &SeriesReport{strategyID: rep.StrategyID(), series: sub}, nil
		}
		return nil, fmt.Errorf("restrict %s to [%s, %s): %w",
			rep.StrategyID(), from.Format("2006-01-02"), to.Format("2006-01-02"), serr)
	}

	if strict {
		return nil, fmt.Errorf("restrict %s: %w", rep.StrategyID(), ErrUnsupportedFiltering)
	}

	log.Warn().
		Str("strategy_id", rep.StrategyID()).
		Time("from", from).
		Time("to", to).
		Msg("DEPRECATED: report lacks date filtering; returning WHOLE-PERIOD data for a sub-period request (data leakage risk, enable strict mode to reject)")

	return rep, nil
}
