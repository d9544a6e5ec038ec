package validation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sawpanic/stratvalid/internal/config"
	"github.com/sawpanic/stratvalid/internal/returns"
)

// sharpeValues builds n daily returns alternating around a mean chosen so
// the realized annualized Sharpe lands on target (spread 1%).
func sharpeValues(target float64, n int) []float64 {
	const spread = 0.01
	mean := target * spread / math.Sqrt(252)
	vs := make([]float64, n)
	for i := range vs {
		d := spread
		if i%2 == 1 {
			d = -spread
		}
		vs[i] = mean + d
	}
	return vs
}

// dailySeries wraps values in consecutive calendar-day timestamps.
func dailySeries(t *testing.T, start time.Time, values []float64) *returns.Series {
	t.Helper()
	ts := make([]time.Time, len(values))
	for i := range ts {
		ts[i] = start.AddDate(0, 0, i)
	}
	s, err := returns.NewSeries(ts, values)
	require.NoError(t, err)
	return s
}

func sharpeSeries(t *testing.T, target float64, n int) *returns.Series {
	t.Helper()
	return dailySeries(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), sharpeValues(target, n))
}

func testCalibration() config.Calibration {
	return config.Calibration{PeriodsPerYear: 252, MarketVolatility: 0.16, BlockSize: 21}
}
