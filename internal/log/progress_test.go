package log

import (
	"testing"
	"time"
)

func TestProgressLoggerCounts(t *testing.T) {
	p := NewProgressLogger("test", 3)
	p.Increment("a")
	p.Increment("b")
	p.Increment("c")

	if p.current != 3 {
		t.Fatalf("expected 3 completed items, got %d", p.current)
	}
	if p.lastUpdate.IsZero() {
		t.Fatal("final increment must always log")
	}
}

func TestProgressLoggerRateLimits(t *testing.T) {
	p := NewProgressLogger("test", 100)
	p.minGap = time.Hour

	p.Increment("a")
	first := p.lastUpdate
	p.Increment("b")
	if !p.lastUpdate.Equal(first) {
		t.Fatal("second increment within the gap must not log")
	}
}
