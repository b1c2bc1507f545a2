package table

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrLengthMismatch is returned when the columns of a frame differ in length.
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Table is the read-only view the validation engine needs. Any columnar
// source can be validated by implementing it.
type Table interface {
	// ColumnNames returns the column labels in table order.
	ColumnNames() []string
	// RowCount returns the number of rows.
	RowCount() int
	// Column looks up a column by label.
	Column(name string) (Column, bool)
}

// Frame is the in-memory Table implementation.
type Frame struct {
	names []string
	cols  map[string]Column
	rows  int
}

var _ Table = (*Frame)(nil)

// NewFrame assembles a frame from columns of equal length.
func NewFrame(cols ...Column) (*Frame, error) {
	f := &Frame{
		names: make([]string, 0, len(cols)),
		cols:  make(map[string]Column, len(cols)),
	}

	for i, c := range cols {
		if _, dup := f.cols[c.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.name)
		}

		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d",
				ErrLengthMismatch, c.name, c.Len(), f.rows)
		}

		f.names = append(f.names, c.name)
		f.cols[c.name] = c
	}

	return f, nil
}

// MustFrame is NewFrame that panics on error. Intended for tests and
// static fixtures.
func MustFrame(cols ...Column) *Frame {
	f, err := NewFrame(cols...)
	if err != nil {
		panic(err)
	}

	return f
}

// FromRecords builds a frame from row-major data. Each row must have exactly
// len(names) cells.
func FromRecords(names []string, rows [][]any) (*Frame, error) {
	columns := make([][]Value, len(names))
	for i := range columns {
		columns[i] = make([]Value, len(rows))
	}

	for r, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d",
				ErrLengthMismatch, r, len(row), len(names))
		}

		for c, cell := range row {
			columns[c][r] = Of(cell)
		}
	}

	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = NewColumn(name, columns[i])
	}

	return NewFrame(cols...)
}

func (f *Frame) ColumnNames() []string {
	return slices.Clone(f.names)
}

func (f *Frame) RowCount() int {
	return f.rows
}

func (f *Frame) Column(name string) (Column, bool) {
	c, ok := f.cols[name]

	return c, ok
}

// WithColumn returns a new frame with col appended, or replacing the column
// of the same name in place.
func (f *Frame) WithColumn(col Column) (*Frame, error) {
	cols := make([]Column, 0, len(f.names)+1)
	replaced := false

	for _, name := range f.names {
		if name == col.name {
			cols = append(cols, col)
			replaced = true
		} else {
			cols = append(cols, f.cols[name])
		}
	}

	if !replaced {
		cols = append(cols, col)
	}

	return NewFrame(cols...)
}

// Row returns the cells of row i in column order.
func (f *Frame) Row(i int) Row {
	return RowOf(f, i)
}

// RowOf reads row i of any Table in column order.
func RowOf(t Table, i int) Row {
	names := t.ColumnNames()
	row := make(Row, len(names))

	for c, name := range names {
		col, _ := t.Column(name)
		row[c] = col.Value(i)
	}

	return row
}
