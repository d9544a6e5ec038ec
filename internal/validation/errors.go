package validation

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is fatal for the current strategy: the series is too
// short for the requested window scheme. Never retried.
var ErrInsufficientData = errors.New("insufficient data for requested window scheme")

// InsufficientDataError wraps ErrInsufficientData with the sizes involved.
type InsufficientDataError struct {
	Have int // Periods available
	Need int // Periods required
	What string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: have %d periods, need %d", e.What, e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// Warning messages attached to verdicts. Warnings never abort a run; they
// travel on the verdict diagnostic so batch runs complete with individual
// strategies flagged for review.
const (
	// WarnDegradedBootstrap: too many bootstrap iterations produced
	// non-finite statistics; the CI is low-confidence.
	WarnDegradedBootstrap = "degraded_bootstrap"
	// WarnAssumptionDivergence: parametric and bootstrap significance
	// thresholds diverge by an order of magnitude; normality is suspect
	// and the stricter threshold governs.
	WarnAssumptionDivergence = "assumption_divergence"
	// WarnUnfilteredReport: a sub-period request was answered with
	// whole-period data because the report cannot be date-filtered.
	WarnUnfilteredReport = "unfiltered_report"
)
