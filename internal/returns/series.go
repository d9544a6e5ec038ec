// Package returns provides the time-indexed return series and the
// performance metrics derived from it. Every validator consumes these
// types read-only; a series is immutable once built.
package returns

import (
	"fmt"
	"time"
)

// Series is an ordered sequence of periodic returns at a fixed frequency.
// Invariant: strictly increasing timestamps, no duplicate periods.
type Series struct {
	timestamps []time.Time
	values     []float64
}

// NewSeries builds a Series after validating the timestamp invariant.
// The input slices are copied; callers cannot mutate the series afterwards.
func NewSeries(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("series length mismatch: %d timestamps vs %d values", len(timestamps), len(values))
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, fmt.Errorf("timestamp ordering violation at index %d: %s !> %s",
				i, timestamps[i].Format(time.RFC3339), timestamps[i-1].Format(time.RFC3339))
		}
	}

	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)
	vs := make([]float64, len(values))
	copy(vs, values)

	return &Series{timestamps: ts, values: vs}, nil
}

// Len returns the number of periods in the series.
func (s *Series) Len() int {
	return len(s.values)
}

// At returns the timestamp and return value at index i.
func (s *Series) At(i int) (time.Time, float64) {
	return s.timestamps[i], s.values[i]
}

// Values returns a copy of the return values.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Start returns the timestamp of the first period.
func (s *Series) Start() time.Time {
	if len(s.timestamps) == 0 {
		return time.Time{}
	}
	return s.timestamps[0]
}

// End returns the timestamp of the last period.
func (s *Series) End() time.Time {
	if len(s.timestamps) == 0 {
		return time.Time{}
	}
	return s.timestamps[len(s.timestamps)-1]
}

// SliceIdx returns a sub-series over the half-open index range [start, end).
// The underlying arrays are shared; the series stays immutable so sharing
// is safe.
func (s *Series) SliceIdx(start, end int) (*Series, error) {
	if start < 0 || end > len(s.values) || start >= end {
		return nil, fmt.Errorf("invalid slice [%d, %d) for series of %d periods", start, end, len(s.values))
	}
	return &Series{
		timestamps: s.timestamps[start:end],
		values:     s.values[start:end],
	}, nil
}

// SliceRange returns the sub-series of periods with timestamps in
// [from, to). Uses binary search over the ordered timestamps.
func (s *Series) SliceRange(from, to time.Time) (*Series, error) {
	start := s.lowerBound(from)
	end := s.lowerBound(to)
	if start >= end {
		return nil, fmt.Errorf("no periods in range [%s, %s)",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return s.SliceIdx(start, end)
}

// lowerBound returns the first index i where timestamps[i] >= target.
func (s *Series) lowerBound(target time.Time) int {
	low, high := 0, len(s.timestamps)
	for low < high {
		mid := (low + high) / 2
		if s.timestamps[mid].Before(target) {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}
