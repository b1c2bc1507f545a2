package validate

import (
	"github.com/amp-labs/amp-tablecheck/errors"
)

// ErrValidationFailed is matched by the error returned when a run with
// WithRaiseOnError finds error-severity violations.
var ErrValidationFailed = errors.ErrValidationFailed

// FailedError carries the report of a failed run. Its message lists every
// error-severity violation; warnings are left out.
type FailedError struct {
	Report *Report
}

func (e *FailedError) Error() string {
	return ErrValidationFailed.Error() + ":\n" + e.Report.ErrorSummary()
}

func (e *FailedError) Unwrap() error {
	return ErrValidationFailed
}
