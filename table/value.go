package table

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is a single cell. The zero Value is null.
//
// Values are normalized on construction: Go's platform sized int becomes
// int64, unsigned integers widen to int64 (or float64 when they overflow),
// NaN becomes null and *time.Time is dereferenced. Anything that is not a
// string, bool, number or time is kept as an opaque object.
type Value struct {
	raw any
}

// Null returns the missing value.
func Null() Value {
	return Value{}
}

// Of wraps a Go value as a cell.
func Of(v any) Value { //nolint:cyclop,funlen
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string, bool, int8, int16, int32, int64:
		return Value{raw: x}
	case int:
		return Value{raw: int64(x)}
	case uint8:
		return Value{raw: int64(x)}
	case uint16:
		return Value{raw: int64(x)}
	case uint32:
		return Value{raw: int64(x)}
	case uint:
		return ofUint(uint64(x))
	case uint64:
		return ofUint(x)
	case float32:
		if math.IsNaN(float64(x)) {
			return Value{}
		}

		return Value{raw: x}
	case float64:
		if math.IsNaN(x) {
			return Value{}
		}

		return Value{raw: x}
	case time.Time:
		return Value{raw: x}
	case *time.Time:
		if x == nil {
			return Value{}
		}

		return Value{raw: *x}
	case *string:
		if x == nil {
			return Value{}
		}

		return Value{raw: *x}
	default:
		return Value{raw: v}
	}
}

func ofUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Value{raw: float64(u)}
	}

	return Value{raw: int64(u)} //nolint:gosec
}

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool {
	return v.raw == nil
}

// Raw returns the normalized Go value, or nil for null.
func (v Value) Raw() any {
	return v.raw
}

// Kind returns the representation of this individual cell.
func (v Value) Kind() Kind {
	switch v.raw.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case bool:
		return KindBool
	case time.Time:
		return KindDatetime
	default:
		return KindObject
	}
}

func (v Value) String() string {
	switch x := v.raw.(type) {
	case nil:
		return "<null>"
	case string:
		return x
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

type (
	nullKey   struct{}
	timeKey   struct {
		sec  int64
		nsec int
	}
	objectKey string
)

// Key returns a comparable representation used for equality, set membership
// and uniqueness. Integers of every width share a key space, and a float
// with an integral value shares the key of the equal integer, so 1 and 1.0
// compare equal.
func (v Value) Key() any { //nolint:ireturn
	switch x := v.raw.(type) {
	case nil:
		return nullKey{}
	case string, bool:
		return x
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return floatKey(float64(x))
	case float64:
		return floatKey(x)
	case time.Time:
		return timeKey{sec: x.Unix(), nsec: x.Nanosecond()}
	default:
		return objectKey(fmt.Sprintf("%T:%v", x, x))
	}
}

func floatKey(f float64) any { //nolint:ireturn
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}

	return f
}

// Equal compares two cells by Key. Two nulls are equal.
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

// Values wraps each element with Of.
func Values(xs ...any) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Of(x)
	}

	return out
}
