package validate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amp-labs/amp-tablecheck/validate"

// startSpan opens the span covering one run. Without a configured tracer
// provider the global no-op provider is used.
func startSpan(ctx context.Context, runID string, rows, columns int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "validate.table",
		trace.WithAttributes(
			attribute.String("tablecheck.run_id", runID),
			attribute.Int("tablecheck.rows", rows),
			attribute.Int("tablecheck.columns", columns),
		))
}

func endSpan(span trace.Span, report *Report, err error) {
	defer span.End()

	if report != nil {
		span.SetAttributes(
			attribute.Int("tablecheck.violations", len(report.Violations)),
			attribute.Bool("tablecheck.valid", report.Valid),
		)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
