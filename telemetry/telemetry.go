// Package telemetry sets up OpenTelemetry export for traces and logs.
// Validation runs emit spans through the global tracer provider, and the
// log handler returned here can be fanned in next to the regular slog
// output (see logger.WithExtraHandler).
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amp-labs/amp-tablecheck/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Providers holds whatever Initialize started. The zero value is valid and
// does nothing.
type Providers struct {
	// LogHandler forwards slog records to the OTLP log exporter. Nil when
	// log export is off.
	LogHandler slog.Handler

	tracer *sdktrace.TracerProvider
	logger *sdklog.LoggerProvider
}

// Initialize starts trace and log export as configured. Export is opt-in:
// with cfg.Enabled false, or with no endpoint for a signal, that signal is
// left on the no-op default.
func Initialize(ctx context.Context, cfg config.Telemetry) (*Providers, error) {
	p := &Providers{}

	if !cfg.Enabled {
		slog.Debug("OpenTelemetry export is disabled")

		return p, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.TracesEndpoint == "" {
		slog.Warn("OpenTelemetry traces endpoint not configured, tracing will be disabled")
	} else if err := p.startTraces(ctx, cfg, res); err != nil {
		return nil, err
	}

	if cfg.LogsEndpoint == "" {
		slog.Warn("OpenTelemetry logs endpoint not configured, log export will be disabled")
	} else if err := p.startLogs(ctx, cfg, res); err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}

	slog.Info("OpenTelemetry initialized",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"traces", cfg.TracesEndpoint,
		"logs", cfg.LogsEndpoint,
	)

	return p, nil
}

func (p *Providers) startTraces(ctx context.Context, cfg config.Telemetry, res *resource.Resource) error {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.TracesEndpoint),
		otlptracehttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	p.tracer = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(p.tracer)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return nil
}

func (p *Providers) startLogs(ctx context.Context, cfg config.Telemetry, res *resource.Resource) error {
	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(cfg.LogsEndpoint),
		otlploghttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	p.logger = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	p.LogHandler = otelslog.NewHandler(cfg.ServiceName,
		otelslog.WithLoggerProvider(p.logger),
		otelslog.WithVersion(cfg.ServiceVersion),
	)

	return nil
}

// Shutdown flushes and stops every started provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error

	if p.tracer != nil {
		errs = append(errs, p.tracer.Shutdown(ctx))
	}

	if p.logger != nil {
		errs = append(errs, p.logger.Shutdown(ctx))
	}

	return errors.Join(errs...)
}
