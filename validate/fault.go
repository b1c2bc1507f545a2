package validate

import (
	"fmt"

	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/predicate"
	"github.com/amp-labs/amp-tablecheck/table"
)

// recovered turns a recovered panic value into an error wrapping
// ErrCallbackPanic.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", errors.ErrCallbackPanic, err)
	}

	return fmt.Errorf("%w: %v", errors.ErrCallbackPanic, r)
}

// guard runs fn and reports a panic as an error instead of unwinding
// through the validator.
func guard[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T

			out, err = zero, recovered(r)
		}
	}()

	return fn()
}

func testElement(fn predicate.Element, v table.Value) (bool, error) {
	return guard(func() (bool, error) { return fn.Test(v) })
}

func testSeries(fn predicate.Series, values []table.Value) ([]bool, error) {
	return guard(func() ([]bool, error) { return fn.TestSeries(values) })
}
