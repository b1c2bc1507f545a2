package tableio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/should"
	"github.com/amp-labs/amp-tablecheck/table"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// FromRows drains a result set into a Frame. Byte slices are read as
// strings. A column with no non-null values falls back to the kind implied
// by its declared database type. The caller still owns rows.
func FromRows(rows *sql.Rows) (*table.Frame, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	columns := make([][]table.Value, len(types))
	dest := make([]any, len(types))
	ptrs := make([]any, len(types))

	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, cell := range dest {
			if b, ok := cell.([]byte); ok {
				cell = string(b)
			}

			columns[i] = append(columns[i], table.Of(cell))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	cols := make([]table.Column, len(types))
	for i, ct := range types {
		kind := table.InferKind(columns[i])
		if kind == table.KindNull {
			kind = declaredKind(ct.DatabaseTypeName())
		}

		cols[i] = table.NewTypedColumn(ct.Name(), kind, columns[i])
	}

	return table.NewFrame(cols...)
}

func declaredKind(dbType string) table.Kind {
	t := strings.ToUpper(dbType)

	switch {
	case strings.Contains(t, "INT"):
		return table.KindInt64
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return table.KindFloat64
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"), strings.Contains(t, "CLOB"):
		return table.KindString
	case strings.Contains(t, "BOOL"):
		return table.KindBool
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return table.KindDatetime
	default:
		return table.KindNull
	}
}

// QuerySQLite runs query against the SQLite database at path, opened read
// only, and returns the result as a Frame. Errors carry the database path
// and query as log attributes.
func QuerySQLite(ctx context.Context, path, query string, args ...any) (*table.Frame, error) {
	ctx = logger.WithSubsystem(ctx, subsystem)

	frame, err := querySQLite(ctx, path, query, args)
	if err != nil {
		return nil, logger.AnnotateError(err, "sqlite_path", path, "query", query)
	}

	return frame, nil
}

func querySQLite(ctx context.Context, path, query string, args []any) (frame *table.Frame, err error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	defer func() {
		err = errors.Join(err, db.Close())
	}()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer should.Close(ctx, rows, "closing result set")

	frame, err = FromRows(rows)
	if err != nil {
		return nil, err
	}

	logger.Get(ctx).Debug("read sqlite table",
		"path", path,
		"rows", frame.RowCount(),
		"columns", len(frame.ColumnNames()))

	return frame, nil
}
