package validate

import (
	"context"

	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
	"go.uber.org/atomic"
)

// run is the state shared by the checks of one Validate call. The table and
// schema are only read.
type run struct {
	ctx    context.Context //nolint:containedctx
	table  table.Table
	schema *schema.Schema
	access *accessor
	opts   options

	// uncoercible counts values the range check had to skip.
	uncoercible atomic.Int64
	// checks counts finished check jobs.
	checks atomic.Int64
}

func newRun(ctx context.Context, t table.Table, s *schema.Schema, opts options) *run {
	return &run{
		ctx:    ctx,
		table:  t,
		schema: s,
		access: newAccessor(t),
		opts:   opts,
	}
}

func (r *run) column(sink *collector, col *schema.Column) (table.Column, bool) {
	return r.access.column(sink, col)
}

// columnCheck is applied to every schema column in turn.
type columnCheck struct {
	name  string
	apply func(r *run, sink *collector, col *schema.Column)
}

// columnChecks in the order they appear in reports.
var columnChecks = []columnCheck{ //nolint:gochecknoglobals
	{name: "type", apply: checkType},
	{name: "nullability", apply: checkNulls},
	{name: "uniqueness", apply: checkUnique},
	{name: "strings", apply: checkStrings},
	{name: "range", apply: checkRange},
	{name: "allowed_values", apply: checkAllowed},
	{name: "custom_functions", apply: checkCustom},
}

// checkRequired reports each required column missing from the table.
// Later checks asking for the same column stay silent.
func checkRequired(r *run, sink *collector) {
	for _, name := range r.schema.Columns() {
		col, _ := r.schema.Column(name)
		if col.Rule().Required {
			r.column(sink, col)
		}
	}
}
