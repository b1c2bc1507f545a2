package predicate

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tcerrors "github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapters(t *testing.T) {
	t.Parallel()

	even := Func("even", func(v table.Value) bool {
		i, ok := v.Raw().(int64)

		return ok && i%2 == 0
	})

	ok, err := even.Test(table.Of(4))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "even", even.Name())

	failing := FuncErr("failing", func(table.Value) (bool, error) {
		return false, errors.New("lookup service down") //nolint:err113
	})
	_, err = failing.Test(table.Of(1))
	require.Error(t, err)

	dyn := Dynamic("dyn", func(v any) any { return v })
	_, err = dyn.Test(table.Of("yes"))
	require.ErrorIs(t, err, ErrNotBoolean)

	b, err := dyn.Test(table.Of(true))
	require.NoError(t, err)
	assert.True(t, b)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Element("positive")
	require.ErrorIs(t, err, tcerrors.ErrUnknownPredicate)

	r.Register(Func("z2", func(table.Value) bool { return true }))
	r.Register(Func("z10", func(table.Value) bool { return true }))
	r.RegisterSeries(SeriesFunc("all", func(v []table.Value) ([]bool, error) {
		return make([]bool, len(v)), nil
	}))

	elements, series := r.Names()
	assert.Equal(t, []string{"z2", "z10"}, elements)
	assert.Equal(t, []string{"all"}, series)

	_, err = r.Series("missing")
	require.ErrorIs(t, err, tcerrors.ErrUnknownPredicate)
}

func TestBuiltins(t *testing.T) { //nolint:funlen
	t.Parallel()

	r := Default()

	tests := []struct {
		name    string
		value   any
		want    bool
		wantErr bool
	}{
		{"non_empty", "  ", false, false},
		{"non_empty", "x", true, false},
		{"non_empty", 0, true, false},
		{"positive", 3, true, false},
		{"positive", 0, false, false},
		{"positive", "abc", false, true},
		{"non_negative", 0.0, true, false},
		{"non_negative", -0.5, false, false},
		{"is_email", "ann@example.com", true, false},
		{"is_email", "ann@example", false, false},
		{"is_email", 42, false, false},
		{"no_future_dates", "2001-01-01", true, false},
		{"no_future_dates", time.Now().Add(48 * time.Hour), false, false},
		{"no_future_dates", "soon", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pred, err := r.Element(tt.name)
			require.NoError(t, err)

			got, err := pred.Test(table.Of(tt.value))
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%v", tt.value)
		})
	}
}

func TestMonotonicIncreasing(t *testing.T) {
	t.Parallel()

	series, err := Default().Series("monotonic_increasing")
	require.NoError(t, err)

	mask, err := series.TestSeries(table.Values(1, nil, 3, 2, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, false, true, true}, mask)

	_, err = series.TestSeries(table.Values(1, "x"))
	require.Error(t, err)

	days := table.Values(dates(t, "2024-01-02", "2024-01-01")...)
	mask, err = series.TestSeries(days)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, mask)

	// Beyond the range an int64 nanosecond count can hold.
	far := table.Values(dates(t, "1500-01-01", "2400-01-01", "1000-01-01")...)
	mask, err = series.TestSeries(far)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, mask)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		value   any
		want    bool
		wantErr error
	}{
		{
			name: "bool result without package clause",
			src: `import "strings"

func Check(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, "SKU-")
}`,
			value: "SKU-1",
			want:  true,
		},
		{
			name: "explicit package with error result",
			src: `package rules

func Check(v interface{}) (bool, error) {
	n, ok := v.(int64)
	return ok && n < 10, nil
}`,
			value: int64(12),
			want:  false,
		},
		{
			name: "dynamic result that is not boolean",
			src: `func Check(v interface{}) interface{} {
	return "maybe"
}`,
			value:   "x",
			wantErr: ErrNotBoolean,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			script, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.src, script.Source())

			got, err := script.Test(table.Of(tt.value))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	_, err := Compile(`func Check(v interface{}) bool { return undefinedThing }`)
	require.ErrorIs(t, err, ErrScript)

	_, err = Compile(`func Other(v interface{}) bool { return true }`)
	require.ErrorIs(t, err, ErrScript)

	_, err = Compile(`func Check(v string) bool { return true }`)
	require.ErrorIs(t, err, ErrScript)
}

func TestCompileRestrictsImports(t *testing.T) {
	t.Parallel()

	for _, pkg := range []string{"os", "os/exec", "net/http", "io/ioutil"} {
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()

			src := fmt.Sprintf("import _ %q\n\nfunc Check(v interface{}) bool { return true }", pkg)

			_, err := Compile(src)
			require.ErrorIs(t, err, ErrScript)
		})
	}

	script, err := Compile(`import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

func Check(v interface{}) bool {
	fmt.Println("ignored")
	s := strconv.Itoa(utf8.RuneLen('x'))
	return s == "1"
}`)
	require.NoError(t, err)

	ok, err := script.Test(table.Of("x"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompileSeries(t *testing.T) {
	t.Parallel()

	script, err := CompileSeries(`func CheckSeries(values []interface{}) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v != nil
	}
	return out
}`)
	require.NoError(t, err)

	mask, err := script.TestSeries(table.Values("a", nil))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, mask)
}

func dates(t *testing.T, xs ...string) []any {
	t.Helper()

	out := make([]any, len(xs))

	for i, s := range xs {
		d, err := time.Parse(time.DateOnly, s)
		require.NoError(t, err)

		out[i] = d
	}

	return out
}
