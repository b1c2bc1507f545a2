package tableio

import (
	"context"
	"fmt"
	"os"

	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/should"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ReadParquet reads every row group of a Parquet file into a Frame.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker) (*table.Frame, error) {
	ctx = logger.WithSubsystem(ctx, subsystem)

	tbl, err := pqarrow.ReadTable(ctx, r, nil, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet: %w", err)
	}
	defer tbl.Release()

	frame, err := FromArrow(tbl)
	if err != nil {
		return nil, err
	}

	logger.Get(ctx).Debug("read parquet table",
		"rows", frame.RowCount(),
		"columns", len(frame.ColumnNames()))

	return frame, nil
}

// ReadParquetFile opens path and reads it with ReadParquet. Errors carry
// the path as a log attribute.
func ReadParquetFile(ctx context.Context, path string) (*table.Frame, error) {
	ctx = logger.WithSubsystem(ctx, subsystem)

	frame, err := readParquetFile(ctx, path)
	if err != nil {
		return nil, logger.AnnotateError(err, "path", path)
	}

	return frame, nil
}

func readParquetFile(ctx context.Context, path string) (*table.Frame, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer should.Close(ctx, f, "closing parquet file")

	return ReadParquet(ctx, f)
}
