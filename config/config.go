// Package config reads tablecheck's settings from the environment.
//
// Every setting is an environment variable read through a typed Reader, so
// parsing, defaults and validation are declared next to the key. A context
// may carry overrides (see WithOverride) which take precedence over the
// process environment; tests rely on this to stay hermetic.
package config

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amp-labs/amp-tablecheck/xform"
	"github.com/joho/godotenv"
)

const (
	KeyConcurrency    = "TABLECHECK_CONCURRENCY"
	KeySampleSize     = "TABLECHECK_SAMPLE_SIZE"
	KeyRaiseOnError   = "TABLECHECK_RAISE_ON_ERROR"
	KeyNullTokens     = "TABLECHECK_NULL_TOKENS"
	KeyOtelEnabled    = "OTEL_ENABLED"
	KeyOtelService    = "OTEL_SERVICE_NAME"
	KeyServiceVersion = "OTEL_SERVICE_VERSION"
	KeyOtelTraces     = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
	KeyOtelLogs       = "OTEL_EXPORTER_OTLP_LOGS_ENDPOINT"
	KeyOtelTimeout    = "OTEL_EXPORTER_OTLP_TIMEOUT"

	DefaultConcurrency = 1
	DefaultSampleSize  = 3
	DefaultServiceName = "tablecheck"
	DefaultOtelTimeout = 10 * time.Second
)

// Config is the resolved set of engine and telemetry settings.
type Config struct {
	// Concurrency is the number of workers used for column level checks.
	// 1 runs everything on the calling goroutine.
	Concurrency int
	// SampleSize caps the offending values attached to each violation.
	SampleSize int
	// RaiseOnError makes a failed run return an error alongside the report.
	RaiseOnError bool
	// NullTokens is the comma-separated list of CSV cell texts read as
	// null. Nil when unset, which keeps the reader's defaults.
	NullTokens []string

	Telemetry Telemetry
}

// Telemetry holds the OpenTelemetry export settings.
type Telemetry struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	TracesEndpoint string
	LogsEndpoint   string
	Timeout        time.Duration
}

var dotenvOnce sync.Once

// LoadDotEnv loads a .env file from the working directory into the process
// environment, once. Variables that are already set are left alone, and a
// missing file is not an error.
func LoadDotEnv(files ...string) {
	dotenvOnce.Do(func() {
		if err := godotenv.Load(files...); err != nil {
			slog.Debug("no .env file loaded", "error", err)
		}
	})
}

// Load resolves the configuration. Malformed values are logged and replaced
// by their defaults rather than failing the run.
func Load(ctx context.Context) Config {
	LoadDotEnv()

	return Config{
		Concurrency: Int(ctx, KeyConcurrency,
			Default(DefaultConcurrency), Validate(xform.Positive[int])).
			ValueOrElse(DefaultConcurrency),
		SampleSize: Int(ctx, KeySampleSize,
			Default(DefaultSampleSize), Validate(xform.Positive[int])).
			ValueOrElse(DefaultSampleSize),
		RaiseOnError: Bool(ctx, KeyRaiseOnError, Default(false)).ValueOrElse(false),
		NullTokens:   Map(String(ctx, KeyNullTokens), xform.SplitString(",")).ValueOrElse(nil),
		Telemetry: Telemetry{
			Enabled:        Bool(ctx, KeyOtelEnabled, Default(false)).ValueOrElse(false),
			ServiceName:    String(ctx, KeyOtelService, Default(DefaultServiceName)).ValueOrElse(DefaultServiceName),
			ServiceVersion: String(ctx, KeyServiceVersion, Default("dev")).ValueOrElse("dev"),
			TracesEndpoint: String(ctx, KeyOtelTraces).ValueOrElse(""),
			LogsEndpoint:   String(ctx, KeyOtelLogs).ValueOrElse(""),
			Timeout: Duration(ctx, KeyOtelTimeout,
				Default(DefaultOtelTimeout), Validate(xform.Positive[time.Duration])).
				ValueOrElse(DefaultOtelTimeout),
		},
	}
}
