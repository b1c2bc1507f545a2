package validate

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
)

// CheckType names the rule a violation was raised by.
type CheckType string

const (
	CheckRequiredColumn         CheckType = "required_column"
	CheckDataType               CheckType = "data_type"
	CheckNullability            CheckType = "nullability"
	CheckUniqueness             CheckType = "uniqueness"
	CheckMinLength              CheckType = "string_min_length"
	CheckMaxLength              CheckType = "string_max_length"
	CheckRegexPattern           CheckType = "regex_pattern"
	CheckDisallowedRegexPattern CheckType = "disallowed_regex_pattern"
	CheckMinValue               CheckType = "min_value"
	CheckMaxValue               CheckType = "max_value"
	CheckAllowedValues          CheckType = "allowed_values"
	CheckCustomFunction         CheckType = "custom_function"
	CheckCustomFunctionSeries   CheckType = "custom_function_series"
	CheckDuplicateRows          CheckType = "duplicate_rows"
)

// TableLevel is the column name used for violations about the whole table.
const TableLevel = "DataFrame-Level"

type Severity = schema.Severity

const (
	SeverityError   = schema.SeverityError
	SeverityWarning = schema.SeverityWarning
)

// Violation is one finding. Sample holds up to a few offending values as
// plain Go values; it never references the validated table.
type Violation struct {
	Column   string    `json:"column"`
	Type     CheckType `json:"validation_type"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Sample   []any     `json:"offending_sample,omitempty"`
}

// String renders the violation as a single report line:
//
//	- Column 'age': [min_value] values must be >= 0 (Sample: [-1])
func (v Violation) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "- Column '%s': [%s] %s", v.Column, v.Type, v.Message)

	if len(v.Sample) > 0 {
		sb.WriteString(" (Sample: ")
		sb.WriteString(formatList(v.Sample))
		sb.WriteString(")")
	}

	return sb.String()
}

func (v Violation) IsError() bool {
	return v.Severity != SeverityWarning
}

// formatList renders values the way messages quote them: strings quoted,
// everything else in its cell form.
func formatList(xs []any) string {
	parts := make([]string, len(xs))

	for i, x := range xs {
		if s, ok := x.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)

			continue
		}

		parts[i] = table.Of(x).String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func formatValues(values []table.Value) string {
	return formatList(rawValues(values))
}

func rawValues(values []table.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Raw()
	}

	return out
}

func head[T any](xs []T, n int) []T {
	if len(xs) <= n {
		return xs
	}

	return xs[:n]
}
