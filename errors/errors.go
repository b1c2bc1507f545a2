// Package errors holds the sentinel errors shared across tablecheck and a
// small helper for accumulating several failures into one error.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongType is returned when an argument is nil or not of a usable type.
	ErrWrongType = errors.New("wrong type")

	// ErrValidationFailed is the sentinel wrapped by the error returned from a
	// validation run that was asked to fail on error-severity violations.
	ErrValidationFailed = errors.New("data validation failed")

	// ErrInvalidSchema is returned when a schema is internally inconsistent
	// or cannot be decoded.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrUnsupportedFormat is returned for file formats or encodings that no
	// reader or codec handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCallbackPanic is returned when a user supplied predicate panics.
	ErrCallbackPanic = errors.New("callback panicked")

	// ErrUnknownPredicate is returned when a schema references a predicate
	// name that is not registered.
	ErrUnknownPredicate = errors.New("unknown predicate")
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// It provides methods to add errors, check for errors, and retrieve them as a single combined error.
// Use this when you need to collect errors from multiple operations and return them together.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are automatically ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Addf formats and appends an error. Use %w to keep a sentinel in the chain.
func (c *Collection) Addf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Errorf(format, args...)) //nolint:err113
}

// Clear removes all errors from the collection, resetting it to an empty state.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// GetError returns the collected errors as a single error.
// Returns nil if the collection is empty, the single error if there's only one,
// or a joined error (using errors.Join) if there are multiple errors.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}

// Wrap returns nil when the collection is empty and otherwise the combined
// error wrapped by sentinel, so callers can test with errors.Is.
func (c *Collection) Wrap(sentinel error) error {
	err := c.GetError()
	if err == nil {
		return nil
	}

	if errors.Is(err, sentinel) {
		return err
	}

	return fmt.Errorf("%w: %w", sentinel, err)
}
