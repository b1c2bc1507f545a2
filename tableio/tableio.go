// Package tableio loads tables for validation from files and databases.
//
// Supported sources:
//
//   - Delimited text (.csv, .tsv, .txt), optionally compressed with gzip,
//     zstd, brotli or lz4, in any encoding chardet can recognize.
//   - Parquet files, through Apache Arrow.
//   - Arrow tables already in memory.
//   - database/sql result sets, with a SQLite convenience wrapper.
//
// Every reader returns a *table.Frame, which the validate package consumes.
package tableio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/should"
	"github.com/amp-labs/amp-tablecheck/table"
)

const subsystem = "tableio"

// OpenFile reads the table at path, choosing a reader from the file
// extension after any compression extension is removed. CSV options only
// apply to delimited text; .tsv files default to a tab delimiter.
//
// Errors carry the path and compression as log attributes (see
// logger.AnnotateError).
func OpenFile(ctx context.Context, path string, opts ...CSVOption) (*table.Frame, error) {
	ctx = logger.WithSubsystem(ctx, subsystem)

	frame, err := openFile(ctx, path, opts)
	if err != nil {
		return nil, logger.AnnotateError(err,
			"path", path,
			"compression", string(DetectCompression(path, nil)))
	}

	return frame, nil
}

func openFile(ctx context.Context, path string, opts []CSVOption) (*table.Frame, error) {
	name := StripCompressionExt(path)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".parquet", ".pq":
		if name != path {
			return nil, fmt.Errorf("%w: compressed parquet file %q", errors.ErrUnsupportedFormat, path)
		}

		return readParquetFile(ctx, path)
	case ".csv", ".tsv", ".txt":
		if ext == ".tsv" {
			opts = append([]CSVOption{WithDelimiter('\t')}, opts...)
		}

		return readDelimitedFile(ctx, path, opts)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, path)
	}
}

func readDelimitedFile(ctx context.Context, path string, opts []CSVOption) (*table.Frame, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}

	rc, err := Decompress(f, path)
	if err != nil {
		should.Close(ctx, f, "closing data file")

		return nil, err
	}
	defer should.Close(ctx, rc, "closing data file")

	frame, err := ReadCSV(ctx, rc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return frame, nil
}
