package predicate

import (
	"cmp"
	"regexp"
	"strings"
	"time"

	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/xform"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// now is swapped in tests.
var now = time.Now //nolint:gochecknoglobals

func registerBuiltins(r *Registry) {
	r.Register(Func("non_empty", nonEmpty))
	r.Register(FuncErr("positive", func(v table.Value) (bool, error) {
		f, err := xform.Float64Of(v)

		return f > 0, err
	}))
	r.Register(FuncErr("non_negative", func(v table.Value) (bool, error) {
		f, err := xform.Float64Of(v)

		return f >= 0, err
	}))
	r.Register(Func("is_email", func(v table.Value) bool {
		s, ok := v.Raw().(string)

		return ok && emailPattern.MatchString(strings.TrimSpace(s))
	}))
	r.Register(FuncErr("no_future_dates", func(v table.Value) (bool, error) {
		t, err := xform.TimeOf(v)
		if err != nil {
			return false, err
		}

		return !t.After(now()), nil
	}))
	r.RegisterSeries(SeriesFunc("monotonic_increasing", monotonicIncreasing))
}

func nonEmpty(v table.Value) bool {
	if s, ok := v.Raw().(string); ok {
		return strings.TrimSpace(s) != ""
	}

	return !v.IsNull()
}

// monotonicIncreasing flags each non-null value that is smaller than the
// last non-null value before it. Nulls are skipped and always pass.
// Values are compared as times when they read as times, else as numbers.
func monotonicIncreasing(values []table.Value) ([]bool, error) {
	mask := make([]bool, len(values))

	var (
		prev    orderKey
		started bool
	)

	for i, v := range values {
		if v.IsNull() {
			mask[i] = true

			continue
		}

		cur, err := orderKeyOf(v)
		if err != nil {
			return nil, err
		}

		order := cur.compare(prev)
		mask[i] = !started || order >= 0

		if !started || order > 0 {
			prev = cur
		}

		started = true
	}

	return mask, nil
}

// orderKey holds either a time or a number. Times order before numbers so
// a mixed column still has a total order.
type orderKey struct {
	isTime bool
	t      time.Time
	f      float64
}

func orderKeyOf(v table.Value) (orderKey, error) {
	if v.Kind() == table.KindDatetime {
		t, _ := xform.TimeOf(v)

		return orderKey{isTime: true, t: t}, nil
	}

	f, err := xform.Float64Of(v)
	if err != nil {
		return orderKey{}, err
	}

	return orderKey{f: f}, nil
}

func (k orderKey) compare(other orderKey) int {
	switch {
	case k.isTime && other.isTime:
		return k.t.Compare(other.t)
	case k.isTime:
		return -1
	case other.isTime:
		return 1
	default:
		return cmp.Compare(k.f, other.f)
	}
}
