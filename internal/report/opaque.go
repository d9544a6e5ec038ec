package report

import (
	"errors"

	"github.com/sawpanic/stratvalid/internal/returns"
)

// ErrNoReturnSeries indicates a report that cannot derive a return series.
var ErrNoReturnSeries = errors.New("report has no derivable return series")

// StaticMetricsProvider is the capability of exposing precomputed
// whole-period metrics. Opaque engine reports that carry summary numbers
// but no return series implement this.
type StaticMetricsProvider interface {
	StaticMetrics() returns.Metrics
}

// OpaqueReport is a report that exposes only precomputed whole-period
// metrics: no return series, no date filtering. It exists as a first-class
// representation of the "unsupported" capability case so that callers hit
// the explicit error path instead of a disguised fallback.
type OpaqueReport struct {
	strategyID string
	metrics    returns.Metrics
}

// NewOpaqueReport wraps precomputed metrics as a report.
func NewOpaqueReport(strategyID string, metrics returns.Metrics) *OpaqueReport {
	return &OpaqueReport{strategyID: strategyID, metrics: metrics}
}

func (r *OpaqueReport) StrategyID() string { return r.strategyID }

func (r *OpaqueReport) Returns() (*returns.Series, error) {
	return nil, ErrNoReturnSeries
}

func (r *OpaqueReport) StaticMetrics() returns.Metrics { return r.metrics }
