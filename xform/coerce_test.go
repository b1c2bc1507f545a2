package xform_test

import (
	"testing"
	"time"

	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/xform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat64Of(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected float64
		wantErr  bool
	}{
		{"int", 3, 3, false},
		{"int8", int8(-2), -2, false},
		{"float32", float32(0.5), 0.5, false},
		{"bool", true, 1, false},
		{"numeric string", " 2.5 ", 2.5, false},
		{"bad string", "abc", 0, true},
		{"nan string", "nan", 0, true},
		{"time", time.Now(), 0, true},
		{"null", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := xform.Float64Of(table.Of(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, xform.ErrNotCoercible)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.expected, f, 1e-12)
		})
	}
}

func TestInt64Of(t *testing.T) {
	t.Parallel()

	i, err := xform.Int64Of(table.Of(2.0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), i)

	_, err = xform.Int64Of(table.Of(2.5))
	require.ErrorIs(t, err, xform.ErrNotCoercible)

	i, err = xform.Int64Of(table.Of("17"))
	require.NoError(t, err)
	assert.Equal(t, int64(17), i)
}

func TestBoolOf(t *testing.T) {
	t.Parallel()

	b, err := xform.BoolOf(table.Of("false"))
	require.NoError(t, err)
	assert.False(t, b)

	b, err = xform.BoolOf(table.Of(1))
	require.NoError(t, err)
	assert.True(t, b)

	_, err = xform.BoolOf(table.Of(2))
	require.ErrorIs(t, err, xform.ErrNotCoercible)
}

func TestTimeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		expected time.Time
		wantErr  bool
	}{
		{"date", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"datetime", "2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), false},
		{"rfc3339", "2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), false},
		{"us style", "01/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"time value", time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC), time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "not a date", time.Time{}, true},
		{"integer", 1700000000, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts, err := xform.TimeOf(table.Of(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, xform.ErrNotCoercible)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(ts), "got %s", ts)
		})
	}
}

func TestStringOf(t *testing.T) {
	t.Parallel()

	assert.Empty(t, xform.StringOf(table.Null()))
	assert.Equal(t, "1.5", xform.StringOf(table.Of(1.5)))
	assert.Equal(t, "100000000", xform.StringOf(table.Of(1e8)))
	assert.Equal(t, "12", xform.StringOf(table.Of(12)))
}

func TestLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sample   any
		input    any
		expected any
		wantErr  bool
	}{
		{"string to int", 1, "5", int64(5), false},
		{"int to string", "a", 5, "5", false},
		{"float to int", 1, 2.0, int64(2), false},
		{"string to float", 1.5, "2.5", 2.5, false},
		{"string to bool", true, "false", false, false},
		{"bad int", 1, "x", "x", true},
		{"object sample keeps input", []int{1}, "x", "x", false},
		{"null stays null", 1, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := xform.Like(table.Of(tt.sample), table.Of(tt.input))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.expected, got.Raw())
		})
	}
}
