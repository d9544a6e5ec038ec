// Package telemetry exposes the framework's prometheus collectors:
// validation outcomes per validator, baseline cache traffic, degraded
// bootstrap runs, and batch durations. Served by the monitor's /metrics
// endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationsTotal counts verdicts by validator and outcome.
	ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratvalid",
		Name:      "validations_total",
		Help:      "Validator verdicts by validator name and outcome",
	}, []string{"validator", "outcome"})

	// StrategiesTotal counts strategies by final aggregate outcome.
	StrategiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratvalid",
		Name:      "strategies_total",
		Help:      "Strategies by aggregate validation outcome",
	}, []string{"outcome"})

	// BaselineCacheOps counts baseline cache hits and misses.
	BaselineCacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratvalid",
		Name:      "baseline_cache_ops_total",
		Help:      "Baseline cache operations by result (hit/miss)",
	}, []string{"result"})

	// DegradedBootstraps counts bootstrap runs flagged low-confidence.
	DegradedBootstraps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stratvalid",
		Name:      "degraded_bootstraps_total",
		Help:      "Bootstrap runs with too many discarded iterations",
	})

	// BatchDuration observes full batch validation wall time.
	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stratvalid",
		Name:      "batch_duration_seconds",
		Help:      "Wall time of full batch validation runs",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)

// RecordVerdict increments the per-validator outcome counter.
func RecordVerdict(validator string, passed bool) {
	outcome := "fail"
	if passed {
		outcome = "pass"
	}
	ValidationsTotal.WithLabelValues(validator, outcome).Inc()
}

// RecordStrategy increments the aggregate outcome counter.
func RecordStrategy(passed bool) {
	outcome := "fail"
	if passed {
		outcome = "pass"
	}
	StrategiesTotal.WithLabelValues(outcome).Inc()
}

// RecordCache increments the cache hit/miss counter.
func RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	BaselineCacheOps.WithLabelValues(result).Inc()
}
