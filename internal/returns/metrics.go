package returns

import (
	"math"
	"sort"
)

// Metrics contains the performance statistics derived from a return series.
// Computed fresh per period request; never cached across date ranges.
type Metrics struct {
	SharpeRatio  float64 `json:"sharpe_ratio"`  // Annualized Sharpe ratio
	AnnualReturn float64 `json:"annual_return"` // Annualized compound return
	MaxDrawdown  float64 `json:"max_drawdown"`  // Peak-to-trough drawdown (0.0-1.0)
	WinRate      float64 `json:"win_rate"`      // Fraction of positive-return periods
	NPeriods     int     `json:"n_periods"`     // Number of periods in the window
}

// ComputeMetrics derives Metrics from a series using the given annualization
// factor (periods per year, e.g. 252 for daily data).
func ComputeMetrics(s *Series, periodsPerYear float64) Metrics {
	values := s.values
	n := len(values)
	if n == 0 {
		return Metrics{}
	}

	mean := Mean(values)
	std := Stdev(values)

	sharpe := 0.0
	if std > 0 {
		sharpe = mean / std * math.Sqrt(periodsPerYear)
	}

	// Compound growth, annualized by period count
	equity := 1.0
	peak := 1.0
	maxDD := 0.0
	wins := 0
	for _, r := range values {
		equity *= 1.0 + r
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			dd := (peak - equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
		if r > 0 {
			wins++
		}
	}

	annualReturn := 0.0
	if equity > 0 {
		annualReturn = math.Pow(equity, periodsPerYear/float64(n)) - 1.0
	} else {
		annualReturn = -1.0
	}

	return Metrics{
		SharpeRatio:  sharpe,
		AnnualReturn: annualReturn,
		MaxDrawdown:  maxDD,
		WinRate:      float64(wins) / float64(n),
		NPeriods:     n,
	}
}

// Sharpe computes the annualized Sharpe ratio of raw return values.
// Returns 0 when the standard deviation is zero.
func Sharpe(values []float64, periodsPerYear float64) float64 {
	if len(values) == 0 {
		return 0
	}
	std := Stdev(values)
	if std == 0 {
		return 0
	}
	return Mean(values) / std * math.Sqrt(periodsPerYear)
}

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Stdev returns the sample standard deviation of values.
func Stdev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Percentile returns the p-th percentile (0.0-1.0) of values using linear
// interpolation between closest ranks. The input is not modified.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
