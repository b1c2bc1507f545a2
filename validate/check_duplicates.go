package validate

import (
	"github.com/amp-labs/amp-tablecheck/hashing"
	"github.com/amp-labs/amp-tablecheck/table"
)

// checkDuplicates reports rows that repeat an earlier row across every
// column of the table, whether or not the schema mentions the columns.
func checkDuplicates(r *run, sink *collector) error {
	n, err := countDuplicateRows(r.table)
	if err != nil {
		return err
	}

	if n > 0 {
		sink.addTable(CheckDuplicateRows, "found %d duplicate rows in the table", n)
	}

	return nil
}

// countDuplicateRows buckets rows by hash and confirms matches cell by
// cell, so a hash collision never counts as a duplicate.
func countDuplicateRows(t table.Table) (int, error) {
	names := t.ColumnNames()
	if len(names) == 0 {
		return 0, nil
	}

	cols := make([]table.Column, len(names))
	for i, name := range names {
		cols[i], _ = t.Column(name)
	}

	buckets := make(map[uint64][]table.Row)
	dups := 0

	for i := range t.RowCount() {
		row := make(table.Row, len(cols))
		for j, c := range cols {
			row[j] = c.Value(i)
		}

		sum, err := hashing.XXH3(row)
		if err != nil {
			return 0, err
		}

		if containsRow(buckets[sum], row) {
			dups++

			continue
		}

		buckets[sum] = append(buckets[sum], row)
	}

	return dups, nil
}

func containsRow(rows []table.Row, row table.Row) bool {
	for _, other := range rows {
		if other.Equal(row) {
			return true
		}
	}

	return false
}
