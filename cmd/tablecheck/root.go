package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/amp-labs/amp-tablecheck/build"
	"github.com/amp-labs/amp-tablecheck/config"
	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/telemetry"
	"github.com/spf13/cobra"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitUsage   = 2

	appName = "tablecheck"

	telemetryFlushTimeout = 5 * time.Second
)

// exitError carries the process exit code. err may be nil when there is
// nothing to add to what was already printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}

	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg       config.Config
	providers *telemetry.Providers
	log       *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Validate tabular data against a declarative schema",
		Long: `tablecheck checks CSV, Parquet and SQLite tables against a schema of
per-column rules (type, nullability, uniqueness, string length, patterns,
value ranges, allowed values and custom predicates) and reports every
violation it finds.

Settings are read from the environment (and a .env file): TABLECHECK_*
for the engine, LOG_* for logging and OTEL_* for OpenTelemetry export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd.Context()); err != nil {
				return err
			}

			cmd.SetContext(a.logContext(cmd.Context(), cmd.Name()))

			return nil
		},
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(newValidateCmd(a), newSchemaCmd(a), newVersionCmd(a))

	return root
}

// setup loads configuration, starts telemetry export and configures
// logging to stderr, with the OTLP log bridge attached when enabled.
func (a *app) setup(ctx context.Context) error {
	a.cfg = config.Load(ctx)

	if a.cfg.Telemetry.ServiceVersion == "dev" {
		a.cfg.Telemetry.ServiceVersion = build.Current().Version
	}

	providers, err := telemetry.Initialize(ctx, a.cfg.Telemetry)
	if err != nil {
		return usageError(err)
	}

	a.providers = providers

	a.log = logger.ConfigureLogging(ctx, appName,
		logger.WithOutput(a.stderr),
		logger.WithExtraHandler(providers.LogHandler))

	return nil
}

// logContext pins this invocation's logger into ctx and names the
// subcommand as the logging subsystem.
func (a *app) logContext(ctx context.Context, command string) context.Context {
	if a.log != nil {
		ctx = logger.WithLogger(ctx, a.log)
	}

	return logger.WithSubsystem(ctx, appName+"."+command)
}

func (a *app) close() {
	if a.providers == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
	defer cancel()

	if err := a.providers.Shutdown(ctx); err != nil {
		fmt.Fprintf(a.stderr, "failed to flush telemetry: %v\n", err) //nolint:errcheck
	}
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitValid
	}

	var exit *exitError
	if !errors.As(err, &exit) {
		// Flag and argument errors come straight from cobra.
		exit = usageError(err).(*exitError)
	}

	if exit.err != nil {
		// Annotated load errors carry their path, format and encoding into
		// the debug log.
		if a.log != nil {
			logger.Get(a.logContext(ctx, "run")).Debug("command failed", "error", exit.err)
		}

		fmt.Fprintf(stderr, "Error: %v\n", exit.err) //nolint:errcheck
	}

	return exit.code
}
