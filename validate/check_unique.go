package validate

import (
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
)

func checkUnique(r *run, sink *collector, col *schema.Column) {
	if !col.Rule().Unique {
		return
	}

	c, ok := r.column(sink, col)
	if !ok {
		return
	}

	values, _ := c.NonNull()
	dups := duplicatedValues(values)

	if len(dups) == 0 {
		return
	}

	sink.add(col, CheckUniqueness, dups, "values must be unique, found duplicates: %s",
		formatValues(head(dups, messageLimit)))
}

// duplicatedValues returns each value that occurs more than once, as it
// first appears and in the order of first appearance.
func duplicatedValues(values []table.Value) []table.Value {
	counts := make(map[any]int, len(values))

	var firsts []table.Value

	for _, v := range values {
		k := v.Key()
		if counts[k] == 0 {
			firsts = append(firsts, v)
		}

		counts[k]++
	}

	var dups []table.Value

	for _, v := range firsts {
		if counts[v.Key()] > 1 {
			dups = append(dups, v)
		}
	}

	return dups
}
