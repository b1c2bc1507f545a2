package validate

import (
	"strings"
)

// Report is the outcome of one validation run. It is complete when
// returned and is not modified afterwards.
type Report struct {
	// Violations in check order, then column order.
	Violations []Violation `json:"violations"`
	// Valid is true when no violation has error severity.
	Valid bool `json:"is_valid"`

	Rows         int    `json:"rows"`
	Columns      int    `json:"columns"`
	SchemaDigest string `json:"schema_digest,omitempty"`
}

func newReport(violations []Violation) *Report {
	r := &Report{Violations: violations, Valid: true}

	for _, v := range violations {
		if v.IsError() {
			r.Valid = false

			break
		}
	}

	if r.Violations == nil {
		r.Violations = []Violation{}
	}

	return r
}

func (r *Report) IsValid() bool {
	return r.Valid
}

// Errors returns the error-severity violations.
func (r *Report) Errors() []Violation {
	return r.filter(Violation.IsError)
}

// Warnings returns the warning-severity violations.
func (r *Report) Warnings() []Violation {
	return r.filter(func(v Violation) bool { return !v.IsError() })
}

func (r *Report) filter(keep func(Violation) bool) []Violation {
	var out []Violation

	for _, v := range r.Violations {
		if keep(v) {
			out = append(out, v)
		}
	}

	return out
}

// ByColumn groups violations by column. Table-level findings are keyed by
// TableLevel.
func (r *Report) ByColumn() map[string][]Violation {
	out := make(map[string][]Violation)
	for _, v := range r.Violations {
		out[v.Column] = append(out[v.Column], v)
	}

	return out
}

// Counts returns the number of violations per check type.
func (r *Report) Counts() map[CheckType]int {
	out := make(map[CheckType]int)
	for _, v := range r.Violations {
		out[v.Type]++
	}

	return out
}

// Summary renders every violation, one per line.
func (r *Report) Summary() string {
	return summarize(r.Violations)
}

// ErrorSummary renders the error-severity violations only. This is the
// text carried by FailedError.
func (r *Report) ErrorSummary() string {
	return summarize(r.Errors())
}

func summarize(vs []Violation) string {
	lines := make([]string, len(vs))
	for i, v := range vs {
		lines[i] = v.String()
	}

	return strings.Join(lines, "\n")
}

// Outcome describes the verdict in words, as used in log lines.
func (r *Report) Outcome() string {
	switch {
	case !r.Valid:
		return "failed"
	case len(r.Violations) > 0:
		return "passed with warnings"
	default:
		return "passed"
	}
}
