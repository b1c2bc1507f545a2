package validate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return newReport([]Violation{
		{Column: "age", Type: CheckMinValue, Message: "values must be >= 0", Severity: SeverityError, Sample: []any{int64(-1)}},
		{Column: "email", Type: CheckRegexPattern, Message: "bad email", Severity: SeverityWarning, Sample: []any{"x"}},
		{Column: TableLevel, Type: CheckDuplicateRows, Message: "found 2 duplicate rows in the table", Severity: SeverityError},
		{Column: "age", Type: CheckMaxValue, Message: "values must be <= 120", Severity: SeverityError},
	})
}

func TestViolationString(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    Violation
		want string
	}{
		{
			name: "without sample",
			v:    Violation{Column: TableLevel, Type: CheckDuplicateRows, Message: "found 1 duplicate rows in the table"},
			want: "- Column 'DataFrame-Level': [duplicate_rows] found 1 duplicate rows in the table",
		},
		{
			name: "mixed sample",
			v:    Violation{Column: "c", Type: CheckCustomFunction, Message: "m", Sample: []any{"a b", int64(2), 1.5, true, when}},
			want: `- Column 'c': [custom_function] m (Sample: ["a b", 2, 1.5, true, 2024-05-01T12:00:00Z])`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestReportViews(t *testing.T) {
	t.Parallel()

	r := sampleReport()

	assert.False(t, r.IsValid())
	assert.Len(t, r.Errors(), 3)
	assert.Len(t, r.Warnings(), 1)
	assert.Equal(t, "failed", r.Outcome())

	byColumn := r.ByColumn()
	assert.Len(t, byColumn["age"], 2)
	assert.Len(t, byColumn[TableLevel], 1)

	assert.Equal(t, map[CheckType]int{
		CheckMinValue:      1,
		CheckMaxValue:      1,
		CheckRegexPattern:  1,
		CheckDuplicateRows: 1,
	}, r.Counts())

	assert.Equal(t, "- Column 'age': [min_value] values must be >= 0 (Sample: [-1])\n"+
		"- Column 'DataFrame-Level': [duplicate_rows] found 2 duplicate rows in the table\n"+
		"- Column 'age': [max_value] values must be <= 120", r.ErrorSummary())
	assert.Contains(t, r.Summary(), "bad email")
}

func TestReportJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleReport())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, false, decoded["is_valid"])

	violations, ok := decoded["violations"].([]any)
	require.True(t, ok)
	require.Len(t, violations, 4)

	first, ok := violations[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "age", first["column"])
	assert.Equal(t, "min_value", first["validation_type"])
	assert.Equal(t, "error", first["severity"])
	assert.Equal(t, []any{-1.0}, first["offending_sample"])

	last, ok := violations[3].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, last, "offending_sample")
}

func TestEmptyReport(t *testing.T) {
	t.Parallel()

	r := newReport(nil)
	assert.True(t, r.IsValid())
	assert.NotNil(t, r.Violations)
	assert.Empty(t, r.Summary())
	assert.Nil(t, r.Errors())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"violations":[]`)
}
