package validate

import (
	"slices"
	"strings"

	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
)

// acceptedKinds lists the column representations each expected type admits.
var acceptedKinds = map[schema.ExpectedType][]table.Kind{ //nolint:gochecknoglobals
	schema.TypeText:     {table.KindString, table.KindObject},
	schema.TypeInteger:  {table.KindInt64, table.KindInt32, table.KindInt16, table.KindInt8},
	schema.TypeFloat:    {table.KindFloat64, table.KindFloat32},
	schema.TypeBoolean:  {table.KindBool},
	schema.TypeDatetime: {table.KindDatetime},
}

func checkType(r *run, sink *collector, col *schema.Column) {
	expected := col.Rule().ExpectedType
	if expected == schema.TypeAny {
		return
	}

	c, ok := r.column(sink, col)
	if !ok {
		return
	}

	// A column without a single value carries no type information.
	if c.Kind() == table.KindNull || c.NullCount() == c.Len() {
		return
	}

	accepted := acceptedKinds[expected]
	if slices.Contains(accepted, c.Kind()) {
		return
	}

	names := make([]string, len(accepted))
	for i, k := range accepted {
		names[i] = k.String()
	}

	sink.add(col, CheckDataType, nil, "expected one of [%s] (for %s), found '%s'",
		strings.Join(names, ", "), expected, c.Kind())
}
