package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/validate"
	"github.com/amp-labs/amp-tablecheck/xform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *validate.Report {
	return &validate.Report{
		Violations: []validate.Violation{
			{
				Column:   "age",
				Type:     validate.CheckMinValue,
				Message:  "values must be >= 0",
				Severity: validate.SeverityError,
				Sample:   []any{int64(-1)},
			},
			{
				Column:   "name",
				Type:     validate.CheckMaxLength,
				Message:  "string length exceeds the maximum 5",
				Severity: validate.SeverityWarning,
			},
		},
		Valid:   false,
		Rows:    4,
		Columns: 1,
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"text": FormatText, " JSON ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.ErrorIs(t, err, errors.ErrUnsupportedFormat)
	require.ErrorIs(t, err, xform.ErrInvalidChoice)
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		report *validate.Report
		want   []string
	}{
		{
			name:   "failed",
			report: sampleReport(),
			want: []string{
				"✗ validation failed",
				"4 rows · 1 column · 1 error, 1 warning",
				"ERROR Column 'age': [min_value] values must be >= 0 (Sample: [-1])",
				"WARN  Column 'name': [string_max_length] string length exceeds the maximum 5",
			},
		},
		{
			name: "warnings only",
			report: &validate.Report{
				Violations: sampleReport().Violations[1:],
				Valid:      true,
				Rows:       1,
				Columns:    2,
			},
			want: []string{"! validation passed with warnings", "1 row · 2 columns · 0 errors, 1 warning"},
		},
		{
			name:   "passed",
			report: &validate.Report{Violations: []validate.Violation{}, Valid: true},
			want:   []string{"✓ validation passed", "0 rows · 0 columns · no violations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			require.NoError(t, Render(&buf, tt.report, FormatText))

			out := buf.String()
			for _, line := range tt.want {
				assert.Contains(t, out, line)
			}

			// A buffer is not a terminal, so no escape sequences.
			assert.NotContains(t, out, "\x1b[")
		})
	}
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, Render(&buf, sampleReport(), FormatJSON))

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, false, decoded["is_valid"])
	assert.InDelta(t, 4, decoded["rows"], 0)

	violations, ok := decoded["violations"].([]any)
	require.True(t, ok)
	require.Len(t, violations, 2)

	first, ok := violations[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "min_value", first["validation_type"])
	assert.Equal(t, "error", first["severity"])
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \""))
}

func TestRenderUnknownFormat(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Render(&bytes.Buffer{}, sampleReport(), Format("xml")), errors.ErrUnsupportedFormat)
}
