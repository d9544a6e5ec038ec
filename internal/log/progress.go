// Package log provides batch progress feedback for long validation runs.
package log

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ProgressLogger emits rate-limited progress lines for a batch run.
type ProgressLogger struct {
	mu         sync.Mutex
	name       string
	total      int
	current    int
	startTime  time.Time
	lastUpdate time.Time
	minGap     time.Duration
}

// NewProgressLogger creates a progress logger for a batch of total items.
func NewProgressLogger(name string, total int) *ProgressLogger {
	return &ProgressLogger{
		name:      name,
		total:     total,
		startTime: time.Now(),
		minGap:    500 * time.Millisecond,
	}
}

// Increment records one completed item and logs when enough time has
// passed since the last line (the final item always logs).
func (p *ProgressLogger) Increment(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	now := time.Now()
	if p.current < p.total && now.Sub(p.lastUpdate) < p.minGap {
		return
	}
	p.lastUpdate = now

	elapsed := now.Sub(p.startTime)
	var eta time.Duration
	if p.current > 0 {
		eta = time.Duration(float64(elapsed) / float64(p.current) * float64(p.total-p.current))
	}

	log.Info().
		Str("task", p.name).
		Str("item", label).
		Int("done", p.current).
		Int("total", p.total).
		Dur("elapsed", elapsed.Round(time.Millisecond)).
		Dur("eta", eta.Round(time.Millisecond)).
		Msg("progress")
}
