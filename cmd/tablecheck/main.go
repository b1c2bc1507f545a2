// Command tablecheck validates tabular data files against a declarative
// schema.
//
// Exit codes: 0 when the table is valid, 1 when it has error-severity
// violations, 2 for usage errors and input that could not be loaded.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/amp-labs/amp-tablecheck/shutdown"
)

func main() {
	ctx, stop := shutdown.SetupHandler(context.Background())

	shutdown.BeforeShutdown(func() {
		slog.Warn("interrupted, abandoning the current run")
	})

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
