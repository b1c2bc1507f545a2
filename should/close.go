// Package should holds cleanup helpers for calls that should succeed but
// whose failure the caller cannot act on, such as closing a file that was
// only read. Failures are logged instead of returned, which keeps defer
// statements short.
package should

import (
	"context"
	"io"

	"github.com/amp-labs/amp-tablecheck/logger"
)

// Close closes closer and logs msg at error level if that fails. A nil
// closer is ignored.
//
// Example:
//
//	defer should.Close(ctx, f, "closing parquet file")
func Close(ctx context.Context, closer io.Closer, msg string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		logger.Get(ctx).Error(msg, "error", err)
	}
}
