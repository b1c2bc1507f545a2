package validate

import (
	"cmp"

	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/xform"
)

func checkRange(r *run, sink *collector, col *schema.Column) {
	switch col.Rule().ExpectedType {
	case schema.TypeAny, schema.TypeInteger, schema.TypeFloat, schema.TypeDatetime:
	default:
		return
	}

	lo, hi := col.Min(), col.Max()
	if lo.IsNull() && hi.IsNull() {
		return
	}

	c, ok := r.column(sink, col)
	if !ok {
		return
	}

	values, _ := c.NonNull()
	rule := col.Rule()

	var (
		below, above []table.Value
		skipped      int
	)

	for _, v := range values {
		if !lo.IsNull() {
			n, err := compareTo(v, lo)
			if err != nil {
				skipped++

				continue
			}

			if n < 0 || (n == 0 && rule.StrictMin) {
				below = append(below, v)
			}
		}

		if !hi.IsNull() {
			n, err := compareTo(v, hi)
			if err != nil {
				skipped++

				continue
			}

			if n > 0 || (n == 0 && rule.StrictMax) {
				above = append(above, v)
			}
		}
	}

	if skipped > 0 {
		r.uncoercible.Add(int64(skipped))
		logger.Get(r.ctx).Debug("range check skipped values that are not comparable",
			"column", col.Name(), "skipped", skipped)
	}

	if len(below) > 0 {
		sink.add(col, CheckMinValue, below, "values must be %s %s", minOperator(rule.StrictMin), lo)
	}

	if len(above) > 0 {
		sink.add(col, CheckMaxValue, above, "values must be %s %s", maxOperator(rule.StrictMax), hi)
	}
}

func minOperator(strict bool) string {
	if strict {
		return ">"
	}

	return ">="
}

func maxOperator(strict bool) string {
	if strict {
		return "<"
	}

	return "<="
}

// compareTo coerces v to the bound's domain and compares. Integers are
// compared exactly; any other number goes through float64. An error means
// v cannot be coerced and is left out of the check.
func compareTo(v, bound table.Value) (int, error) {
	if bound.Kind() == table.KindDatetime {
		t, err := xform.TimeOf(v)
		if err != nil {
			return 0, err
		}

		b, _ := xform.TimeOf(bound)

		return t.Compare(b), nil
	}

	if v.Kind().IsInteger() && bound.Kind().IsInteger() {
		a, _ := xform.Int64Of(v)
		b, _ := xform.Int64Of(bound)

		return cmp.Compare(a, b), nil
	}

	if v.Kind() == table.KindBool || v.Kind() == table.KindDatetime {
		return 0, xform.ErrNotCoercible
	}

	f, err := xform.Float64Of(v)
	if err != nil {
		return 0, err
	}

	b, _ := xform.Float64Of(bound)

	return cmp.Compare(f, b), nil
}
