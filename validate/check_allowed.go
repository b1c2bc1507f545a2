package validate

import (
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/xform"
)

func checkAllowed(r *run, sink *collector, col *schema.Column) {
	allowed := col.Allowed()
	if allowed == nil {
		return
	}

	c, ok := r.column(sink, col)
	if !ok {
		return
	}

	values, _ := c.NonNull()
	if len(values) == 0 {
		return
	}

	set := make(map[any]struct{}, len(allowed))
	for _, a := range allowed {
		set[a.Key()] = struct{}{}
	}

	keys := allowedKeys(allowed, values)
	seen := make(map[any]struct{}, len(values))

	var disallowed []table.Value

	for i, v := range values {
		k := keys[i]
		if _, ok := set[k]; ok {
			continue
		}

		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}
		disallowed = append(disallowed, v)
	}

	if len(disallowed) == 0 {
		return
	}

	sink.add(col, CheckAllowedValues, disallowed, "found values that are not allowed: %s. Allowed: %s",
		formatValues(head(disallowed, messageLimit)), formatValues(head(allowed, allowedLimit)))
}

// allowedKeys reads the column the way the allowed set is typed: every
// value is converted to the kind of the first allowed value. If any single
// conversion fails the raw values are compared instead.
func allowedKeys(allowed, values []table.Value) []any {
	keys := make([]any, len(values))

	if len(allowed) > 0 {
		sample := allowed[0]
		converted := true

		for i, v := range values {
			like, err := xform.Like(sample, v)
			if err != nil {
				converted = false

				break
			}

			keys[i] = like.Key()
		}

		if converted {
			return keys
		}
	}

	for i, v := range values {
		keys[i] = v.Key()
	}

	return keys
}
