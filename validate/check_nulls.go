package validate

import (
	"github.com/amp-labs/amp-tablecheck/schema"
)

func checkNulls(r *run, sink *collector, col *schema.Column) {
	if col.Rule().IsNullable() {
		return
	}

	c, ok := r.column(sink, col)
	if !ok {
		return
	}

	nulls := c.NullCount()
	if nulls == 0 {
		return
	}

	var pct float64
	if c.Len() > 0 {
		pct = float64(nulls) / float64(c.Len()) * 100 //nolint:mnd
	}

	sink.add(col, CheckNullability, nil, "null values are not allowed, found %d (%.2f%%) null values", nulls, pct)
}
