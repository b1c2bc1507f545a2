package schema

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/predicate"
)

// ErrInvalidSchema is returned when rules are inconsistent or cannot be decoded.
var ErrInvalidSchema = errors.ErrInvalidSchema

// ElementFunc is a per-value custom check attached to a column.
type ElementFunc = predicate.Element

// SeriesFunc is a whole-column custom check attached to a column.
type SeriesFunc = predicate.Series

// ExpectedType is the logical type a column is declared to hold.
type ExpectedType string

const (
	// TypeAny leaves the column's representation unchecked.
	TypeAny      ExpectedType = ""
	TypeText     ExpectedType = "text"
	TypeInteger  ExpectedType = "integer"
	TypeFloat    ExpectedType = "float"
	TypeBoolean  ExpectedType = "boolean"
	TypeDatetime ExpectedType = "datetime"
)

var typeAliases = map[string]ExpectedType{ //nolint:gochecknoglobals
	"":          TypeAny,
	"any":       TypeAny,
	"text":      TypeText,
	"str":       TypeText,
	"string":    TypeText,
	"integer":   TypeInteger,
	"int":       TypeInteger,
	"float":     TypeFloat,
	"double":    TypeFloat,
	"boolean":   TypeBoolean,
	"bool":      TypeBoolean,
	"datetime":  TypeDatetime,
	"date":      TypeDatetime,
	"timestamp": TypeDatetime,
}

// ParseExpectedType accepts the canonical names and a few common aliases
// (str, int, bool, date, ...), case-insensitively.
func ParseExpectedType(s string) (ExpectedType, error) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return TypeAny, fmt.Errorf("%w: unknown expected_type %q", ErrInvalidSchema, s)
	}

	return t, nil
}

// Valid reports whether t is one of the defined types.
func (t ExpectedType) Valid() bool {
	switch t {
	case TypeAny, TypeText, TypeInteger, TypeFloat, TypeBoolean, TypeDatetime:
		return true
	default:
		return false
	}
}

func (t ExpectedType) String() string {
	if t == TypeAny {
		return "any"
	}

	return string(t)
}

// Numeric reports whether t admits value bounds of numeric kind.
func (t ExpectedType) Numeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Severity classifies a violation. Only errors make a table invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ParseSeverity accepts "error" and "warning" ("warn" too). The empty
// string means error.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	default:
		return SeverityError, fmt.Errorf("%w: unknown severity %q", ErrInvalidSchema, s)
	}
}
