package validate

import (
	"fmt"

	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
)

// collector gathers the violations of a single check job. Each job owns
// one, so jobs running in parallel never share a slice; the run merges
// them in job order.
type collector struct {
	sampleSize int
	violations []Violation
}

func newCollector(sampleSize int) *collector {
	return &collector{sampleSize: sampleSize}
}

// add records a violation for a schema column, using the column's
// severity. Only the first sampleSize offending values are kept.
func (c *collector) add(col *schema.Column, typ CheckType, sample []table.Value, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Column:   col.Name(),
		Type:     typ,
		Message:  fmt.Sprintf(format, args...),
		Severity: col.Rule().EffectiveSeverity(),
		Sample:   c.sample(sample),
	})
}

// addTable records a table-level violation, which is always an error.
func (c *collector) addTable(typ CheckType, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Column:   TableLevel,
		Type:     typ,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	})
}

func (c *collector) sample(values []table.Value) []any {
	if len(values) == 0 {
		return nil
	}

	return rawValues(head(values, c.sampleSize))
}
