package returns

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewSeriesRejectsUnorderedTimestamps(t *testing.T) {
	cases := []struct {
		name string
		ts   []time.Time
	}{
		{"decreasing", []time.Time{day(1), day(0)}},
		{"duplicate", []time.Time{day(0), day(0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSeries(tc.ts, make([]float64, len(tc.ts))); err == nil {
				t.Fatalf("expected ordering violation, got nil")
			}
		})
	}
}

func TestNewSeriesRejectsLengthMismatch(t *testing.T) {
	if _, err := NewSeries([]time.Time{day(0)}, []float64{0.1, 0.2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestNewSeriesCopiesInput(t *testing.T) {
	ts := []time.Time{day(0), day(1)}
	vs := []float64{0.01, 0.02}
	s, err := NewSeries(ts, vs)
	if err != nil {
		t.Fatal(err)
	}

	vs[0] = 99.0
	if _, v := s.At(0); v != 0.01 {
		t.Fatalf("series mutated through caller slice: got %v", v)
	}
}

func TestSliceIdxHalfOpen(t *testing.T) {
	ts := make([]time.Time, 10)
	vs := make([]float64, 10)
	for i := range ts {
		ts[i] = day(i)
		vs[i] = float64(i)
	}
	s, _ := NewSeries(ts, vs)

	sub, err := s.SliceIdx(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 3 {
		t.Fatalf("expected 3 periods, got %d", sub.Len())
	}
	if _, v := sub.At(0); v != 2 {
		t.Fatalf("expected first value 2, got %v", v)
	}
	if _, v := sub.At(2); v != 4 {
		t.Fatalf("expected last value 4 (end exclusive), got %v", v)
	}

	for _, bad := range [][2]int{{-1, 3}, {3, 3}, {5, 2}, {0, 11}} {
		if _, err := s.SliceIdx(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for slice [%d, %d)", bad[0], bad[1])
		}
	}
}

func TestSliceRange(t *testing.T) {
	ts := make([]time.Time, 10)
	vs := make([]float64, 10)
	for i := range ts {
		ts[i] = day(i)
		vs[i] = float64(i)
	}
	s, _ := NewSeries(ts, vs)

	sub, err := s.SliceRange(day(3), day(7))
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 4 {
		t.Fatalf("expected 4 periods in [day3, day7), got %d", sub.Len())
	}
	if !sub.Start().Equal(day(3)) || !sub.End().Equal(day(6)) {
		t.Fatalf("wrong bounds: [%s, %s]", sub.Start(), sub.End())
	}

	if _, err := s.SliceRange(day(20), day(30)); err == nil {
		t.Fatal("expected error for empty range")
	}
}
