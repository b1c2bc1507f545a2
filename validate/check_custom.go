package validate

import (
	"errors"

	"github.com/amp-labs/amp-tablecheck/predicate"
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
)

func checkCustom(r *run, sink *collector, col *schema.Column) {
	rule := col.Rule()
	if rule.CustomFunction == nil && rule.CustomFunctionSeries == nil {
		return
	}

	c, ok := r.column(sink, col)
	if !ok {
		return
	}

	if rule.CustomFunction != nil {
		checkElementFunc(sink, col, rule.CustomFunction, c)
	}

	if rule.CustomFunctionSeries != nil {
		checkSeriesFunc(sink, col, rule.CustomFunctionSeries, c)
	}
}

// checkElementFunc applies fn to each non-null value. The first callback
// failure ends the check with a single violation.
func checkElementFunc(sink *collector, col *schema.Column, fn predicate.Element, c table.Column) {
	values, _ := c.NonNull()

	var failed []table.Value

	for _, v := range values {
		ok, err := testElement(fn, v)

		switch {
		case errors.Is(err, predicate.ErrNotBoolean):
			sink.add(col, CheckCustomFunction, nil,
				"custom function '%s' did not return a boolean for every value: %v", fn.Name(), err)

			return
		case err != nil:
			sink.add(col, CheckCustomFunction, nil, "error running custom function '%s': %v", fn.Name(), err)

			return
		case !ok:
			failed = append(failed, v)
		}
	}

	if len(failed) > 0 {
		sink.add(col, CheckCustomFunction, failed, "values failed custom function '%s'", fn.Name())
	}
}

// checkSeriesFunc calls fn once with the whole column, nulls included. The
// mask must have one entry per row; false entries at null positions are
// ignored.
func checkSeriesFunc(sink *collector, col *schema.Column, fn predicate.Series, c table.Column) {
	values := c.Values()

	mask, err := testSeries(fn, values)
	if err != nil {
		sink.add(col, CheckCustomFunctionSeries, nil,
			"error running custom series function '%s': %v", fn.Name(), err)

		return
	}

	if len(mask) != len(values) {
		sink.add(col, CheckCustomFunctionSeries, nil,
			"custom series function '%s' must return one boolean per row, got %d for %d rows",
			fn.Name(), len(mask), len(values))

		return
	}

	var failed []table.Value

	for i, ok := range mask {
		if !ok && !values[i].IsNull() {
			failed = append(failed, values[i])
		}
	}

	if len(failed) > 0 {
		sink.add(col, CheckCustomFunctionSeries, failed, "custom series function '%s' failed", fn.Name())
	}
}
