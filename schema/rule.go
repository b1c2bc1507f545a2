package schema

import (
	"slices"
)

// ColumnRule declares the constraints on one column. Every field is
// optional and the zero value imposes nothing beyond "nullable".
type ColumnRule struct {
	// ExpectedType is checked against the column's storage kind.
	ExpectedType ExpectedType

	// Required makes a missing column a violation.
	Required bool
	// Nullable defaults to true when nil.
	Nullable *bool
	// Unique forbids repeated non-null values.
	Unique bool

	// MinValue and MaxValue bound numeric or datetime columns. They accept
	// Go numbers, time.Time and date strings.
	MinValue any
	MaxValue any
	// StrictMin selects > instead of >= and StrictMax < instead of <=.
	StrictMin bool
	StrictMax bool

	// MinLength and MaxLength bound the character count of text values.
	MinLength *int
	MaxLength *int

	// AllowedValues restricts the column to a fixed set of scalars.
	AllowedValues []any

	// RegexPattern must match each whole value.
	RegexPattern string
	// DisallowedRegexPattern must not match anywhere in a value.
	DisallowedRegexPattern string

	CustomFunction       ElementFunc
	CustomFunctionSeries SeriesFunc

	// TrimWhitespace strips surrounding whitespace before string checks.
	TrimWhitespace bool
	// NormalizeUnicode applies NFC before string checks, so that composed
	// and decomposed forms count and match the same.
	NormalizeUnicode bool

	// Severity of this column's violations. Empty means error.
	Severity Severity
}

// IsNullable resolves the Nullable default.
func (r ColumnRule) IsNullable() bool {
	return r.Nullable == nil || *r.Nullable
}

// EffectiveSeverity resolves the Severity default.
func (r ColumnRule) EffectiveSeverity() Severity {
	if r.Severity == "" {
		return SeverityError
	}

	return r.Severity
}

// clone copies the rule so later changes to the caller's slices and
// pointers cannot reach the schema.
func (r ColumnRule) clone() ColumnRule {
	out := r
	out.Nullable = clonePtr(r.Nullable)
	out.MinLength = clonePtr(r.MinLength)
	out.MaxLength = clonePtr(r.MaxLength)
	out.AllowedValues = slices.Clone(r.AllowedValues)

	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

// Bool returns a pointer to b, for ColumnRule.Nullable.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n, for ColumnRule.MinLength and MaxLength.
func Int(n int) *int {
	return &n
}
