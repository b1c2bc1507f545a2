package table

import "slices"

// Column is a named, ordered sequence of cells with a single storage Kind.
// Columns are immutable once built.
type Column struct {
	name   string
	kind   Kind
	values []Value
}

// NewColumn builds a column and infers its kind from the non-null cells.
// A column with no non-null cells has KindNull. A column whose cells
// disagree on kind is KindObject.
func NewColumn(name string, values []Value) Column {
	return Column{
		name:   name,
		kind:   InferKind(values),
		values: slices.Clone(values),
	}
}

// NewTypedColumn builds a column with an explicit storage kind. This is how
// readers that carry a declared schema (Arrow, Parquet, SQL) preserve the
// declared type even when every cell is null.
func NewTypedColumn(name string, kind Kind, values []Value) Column {
	return Column{
		name:   name,
		kind:   kind,
		values: slices.Clone(values),
	}
}

// Col is a convenience constructor: Col("age", 1, 2, nil).
func Col(name string, values ...any) Column {
	return NewColumn(name, Values(values...))
}

// InferKind returns the common kind of the non-null values.
func InferKind(values []Value) Kind {
	kind := KindNull

	for _, v := range values {
		k := v.Kind()
		if k == KindNull {
			continue
		}

		switch kind {
		case KindNull:
			kind = k
		case k:
		default:
			return KindObject
		}
	}

	return kind
}

func (c Column) Name() string { return c.name }

func (c Column) Kind() Kind { return c.kind }

func (c Column) Len() int { return len(c.values) }

// Value returns the i-th cell. It panics if i is out of range, like a slice.
func (c Column) Value(i int) Value { return c.values[i] }

// Values returns a copy of the cells.
func (c Column) Values() []Value { return slices.Clone(c.values) }

// NullCount counts the missing cells.
func (c Column) NullCount() int {
	n := 0

	for _, v := range c.values {
		if v.IsNull() {
			n++
		}
	}

	return n
}

// NonNull returns the non-null cells along with their row positions.
func (c Column) NonNull() ([]Value, []int) {
	vals := make([]Value, 0, len(c.values))
	rows := make([]int, 0, len(c.values))

	for i, v := range c.values {
		if !v.IsNull() {
			vals = append(vals, v)
			rows = append(rows, i)
		}
	}

	return vals, rows
}
