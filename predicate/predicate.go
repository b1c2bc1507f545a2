// Package predicate provides the user supplied checks that a schema can
// attach to a column: element predicates that judge one value at a time,
// and series predicates that judge a whole column and answer with a mask.
//
// Predicates come from three places: Go functions wrapped with Func,
// FuncErr or SeriesFunc; named built-ins looked up in a Registry; and Go
// source interpreted at runtime (see Compile), which lets schema files
// carry their own checks.
package predicate

import (
	"errors"
	"fmt"

	"github.com/amp-labs/amp-tablecheck/table"
)

// ErrNotBoolean is returned when a predicate produces something other than
// a boolean.
var ErrNotBoolean = errors.New("predicate did not return a boolean")

// Element judges a single non-null value.
type Element interface {
	Name() string
	Test(v table.Value) (bool, error)
}

// Series judges a whole column. The result must hold one entry per input
// value, true meaning the value passes.
type Series interface {
	Name() string
	TestSeries(values []table.Value) ([]bool, error)
}

type elementFunc struct {
	name string
	fn   func(table.Value) (bool, error)
}

func (e elementFunc) Name() string { return e.name }

func (e elementFunc) Test(v table.Value) (bool, error) { return e.fn(v) }

// Func wraps a plain boolean function.
func Func(name string, fn func(table.Value) bool) Element { //nolint:ireturn
	return elementFunc{name: name, fn: func(v table.Value) (bool, error) {
		return fn(v), nil
	}}
}

// FuncErr wraps a function that may fail. A returned error is reported as
// a callback failure rather than as a failing value.
func FuncErr(name string, fn func(table.Value) (bool, error)) Element { //nolint:ireturn
	return elementFunc{name: name, fn: fn}
}

// Dynamic wraps a function whose outcome is only known to be boolean at
// runtime. Any non-boolean result yields ErrNotBoolean.
func Dynamic(name string, fn func(any) any) Element { //nolint:ireturn
	return elementFunc{name: name, fn: func(v table.Value) (bool, error) {
		return asBool(fn(v.Raw()))
	}}
}

func asBool(out any) (bool, error) {
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T (%v)", ErrNotBoolean, out, out)
	}

	return b, nil
}

type seriesFunc struct {
	name string
	fn   func([]table.Value) ([]bool, error)
}

func (s seriesFunc) Name() string { return s.name }

func (s seriesFunc) TestSeries(values []table.Value) ([]bool, error) { return s.fn(values) }

// SeriesFunc wraps a whole-column function.
func SeriesFunc(name string, fn func([]table.Value) ([]bool, error)) Series { //nolint:ireturn
	return seriesFunc{name: name, fn: fn}
}

// Raw unwraps values to plain Go values (nil for null), which is the shape
// interpreted predicates receive.
func Raw(values []table.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Raw()
	}

	return out
}
