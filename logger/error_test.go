//nolint:err113 // Test file uses errors.New() for creating test errors
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateError_NilError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, AnnotateError(nil, "key", "value"))
}

func TestAnnotateError_Attributes(t *testing.T) {
	t.Parallel()

	baseErr := errors.New("schema file unreadable")
	annotated := AnnotateError(baseErr, "schema_path", "rules.yaml", "line", 4)

	require.ErrorIs(t, annotated, baseErr)
	assert.Equal(t, "schema file unreadable", annotated.Error())

	attrs := ErrorAttrs(annotated)
	require.Len(t, attrs, 2)
	assert.Equal(t, "schema_path", attrs[0].Key)
	assert.Equal(t, "rules.yaml", attrs[0].Value.String())
	assert.Equal(t, int64(4), attrs[1].Value.Int64())
}

func TestAnnotateError_SurvivesWrapping(t *testing.T) {
	t.Parallel()

	inner := AnnotateError(errors.New("boom"), "column", "age")
	wrapped := fmt.Errorf("loading table: %w", inner)

	attrs := ErrorAttrs(wrapped)
	require.Len(t, attrs, 1)
	assert.Equal(t, "column", attrs[0].Key)
	assert.Nil(t, ErrorAttrs(errors.New("plain")))
}

func TestAnnotateError_NestedLayersAccumulate(t *testing.T) {
	t.Parallel()

	inner := AnnotateError(errors.New("bad byte"), "encoding", "utf-8")
	outer := AnnotateError(fmt.Errorf("reading table: %w", inner), "path", "data.csv.gz")

	attrs := ErrorAttrs(outer)
	require.Len(t, attrs, 2)
	assert.Equal(t, "path", attrs[0].Key)
	assert.Equal(t, "encoding", attrs[1].Key)
}

func TestSlogErrorLogger_ExpandsAnnotations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected map[string]any
	}{
		{
			name: "annotated error",
			err:  AnnotateError(errors.New("bad rule"), "column", "age"),
			expected: map[string]any{
				"error":  "bad rule",
				"column": "age",
			},
		},
		{
			name: "plain error is kept",
			err:  errors.New("plain failure"),
			expected: map[string]any{
				"error": "plain failure",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			handler := &slogErrorLogger{inner: slog.NewJSONHandler(&buf, nil)}
			slog.New(handler).Error("failed", "error", tt.err, "other", "x")

			got := map[string]any{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

			for k, v := range tt.expected {
				assert.Equal(t, v, got[k], k)
			}

			assert.Equal(t, "x", got["other"])
		})
	}
}

func TestSlogErrorLogger_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := &slogErrorLogger{inner: slog.NewTextHandler(&buf, nil)}
	l := slog.New(handler).With("run_id", "r1").WithGroup("check")
	l.Error("failed", "error", AnnotateError(errors.New("x"), "column", "email"))

	assert.Contains(t, buf.String(), "run_id=r1")
	assert.Contains(t, buf.String(), "check.column=email")
}
