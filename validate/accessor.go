package validate

import (
	"sync"

	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
)

// accessor hands columns to the checks. A missing column is reported once
// per run, and only when its rule marks it as required; every other caller
// just learns that the column is absent.
type accessor struct {
	table table.Table

	mu       sync.Mutex
	reported map[string]struct{}
}

func newAccessor(t table.Table) *accessor {
	return &accessor{
		table:    t,
		reported: make(map[string]struct{}),
	}
}

// column returns the column for a schema entry. Columns are immutable
// snapshots, so checks cannot alter the table through them.
func (a *accessor) column(sink *collector, col *schema.Column) (table.Column, bool) {
	c, ok := a.table.Column(col.Name())
	if ok {
		return c, true
	}

	if !col.Rule().Required {
		return table.Column{}, false
	}

	a.mu.Lock()
	_, seen := a.reported[col.Name()]
	a.reported[col.Name()] = struct{}{}
	a.mu.Unlock()

	if !seen {
		sink.add(col, CheckRequiredColumn, nil, "required column '%s' not found", col.Name())
	}

	return table.Column{}, false
}
