package xform

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/amp-labs/amp-tablecheck/table"
)

// ErrNotCoercible is returned when a cell cannot be read as the requested type.
var ErrNotCoercible = errors.New("value is not coercible")

// TimeLayouts are tried in order by ParseTime.
var TimeLayouts = []string{ //nolint:gochecknoglobals
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

func notCoercible(v table.Value, target string) error {
	return fmt.Errorf("%w: %s %q to %s", ErrNotCoercible, v.Kind(), v.String(), target)
}

// ParseTime parses s against each of TimeLayouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q is not a recognized date or time", ErrNotCoercible, s)
}

// Float64Of reads a cell as a float. Integers, floats and booleans convert
// directly; strings are trimmed and parsed.
func Float64Of(v table.Value) (float64, error) {
	switch x := v.Raw().(type) {
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}

		return 0, nil
	case string:
		f, err := Float64(strings.TrimSpace(x))
		if err != nil || math.IsNaN(f) {
			return 0, notCoercible(v, "float")
		}

		return f, nil
	default:
		return 0, notCoercible(v, "float")
	}
}

// Int64Of reads a cell as an integer. Floats must be integral.
func Int64Of(v table.Value) (int64, error) {
	switch x := v.Raw().(type) {
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float32, float64:
		f, _ := Float64Of(v)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, notCoercible(v, "integer")
		}

		return int64(f), nil
	case string:
		i, err := Int64(strings.TrimSpace(x))
		if err != nil {
			return 0, notCoercible(v, "integer")
		}

		return i, nil
	default:
		return 0, notCoercible(v, "integer")
	}
}

// BoolOf reads a cell as a boolean. Integers 0 and 1 and the strings
// accepted by Bool are allowed.
func BoolOf(v table.Value) (bool, error) {
	switch x := v.Raw().(type) {
	case bool:
		return x, nil
	case string:
		b, err := Bool(strings.TrimSpace(x))
		if err != nil {
			return false, notCoercible(v, "boolean")
		}

		return b, nil
	default:
		if i, err := Int64Of(v); err == nil && (i == 0 || i == 1) {
			return i == 1, nil
		}

		return false, notCoercible(v, "boolean")
	}
}

// TimeOf reads a cell as a point in time. Only datetimes and strings in one
// of TimeLayouts are accepted; numbers are not treated as epochs.
func TimeOf(v table.Value) (time.Time, error) {
	switch x := v.Raw().(type) {
	case time.Time:
		return x, nil
	case string:
		t, err := ParseTime(x)
		if err != nil {
			return time.Time{}, notCoercible(v, "datetime")
		}

		return t, nil
	default:
		return time.Time{}, notCoercible(v, "datetime")
	}
}

// StringOf renders a cell as text. Null renders as the empty string.
func StringOf(v table.Value) string {
	if v.IsNull() {
		return ""
	}

	return v.String()
}

// Like converts v to the kind of sample, the way a set of allowed values
// dictates how a column is read before comparison. Nulls stay null.
func Like(sample, v table.Value) (table.Value, error) {
	if v.IsNull() {
		return v, nil
	}

	switch k := sample.Kind(); {
	case k.IsInteger():
		i, err := Int64Of(v)
		if err != nil {
			return v, err
		}

		return table.Of(i), nil
	case k.IsFloat():
		f, err := Float64Of(v)
		if err != nil {
			return v, err
		}

		return table.Of(f), nil
	case k == table.KindBool:
		b, err := BoolOf(v)
		if err != nil {
			return v, err
		}

		return table.Of(b), nil
	case k == table.KindDatetime:
		t, err := TimeOf(v)
		if err != nil {
			return v, err
		}

		return table.Of(t), nil
	case k == table.KindString:
		return table.Of(StringOf(v)), nil
	default:
		return v, nil
	}
}
