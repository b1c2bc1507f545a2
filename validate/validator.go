package validate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/google/uuid"
)

// Validator applies schemas to tables. It holds only options, so one
// Validator may run any number of validations concurrently.
type Validator struct {
	opts options
}

// New returns a Validator with config.DefaultConcurrency workers and
// config.DefaultSampleSize samples per violation, adjusted by opts.
func New(opts ...Option) *Validator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Validator{opts: o}
}

// Validate is New(opts...).Validate(ctx, t, s).
func Validate(ctx context.Context, t table.Table, s *schema.Schema, opts ...Option) (*Report, error) {
	return New(opts...).Validate(ctx, t, s)
}

// Validate checks t against s and returns the report. The returned error
// is nil for a finished run unless raise-on-error is set and the table is
// invalid, in which case the report is returned together with a
// *FailedError.
func (v *Validator) Validate(ctx context.Context, t table.Table, s *schema.Schema) (*Report, error) {
	if isNilTable(t) {
		return nil, fmt.Errorf("%w: table is nil", errors.ErrWrongType)
	}

	if s == nil {
		return nil, fmt.Errorf("%w: schema is nil", errors.ErrInvalidSchema)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	rows, columns := t.RowCount(), len(t.ColumnNames())
	digest := s.Digest()

	ctx = logger.With(ctx, "run_id", runID)
	ctx, span := startSpan(ctx, runID, rows, columns)
	log := logger.Get(ctx)

	log.Info("starting table validation", "rows", rows, "columns", columns, "schema", digest)

	started := time.Now()

	report, err := v.run(ctx, t, s)
	if err != nil {
		endSpan(span, nil, err)

		return nil, err
	}

	report.Rows = rows
	report.Columns = columns
	report.SchemaDigest = digest

	for _, violation := range report.Violations {
		logViolation(ctx, log, violation)
	}

	recordRun(report, float64(time.Since(started).Milliseconds()))

	log.Info("table validation "+report.Outcome(),
		"violations", len(report.Violations),
		"errors", len(report.Errors()),
		"warnings", len(report.Warnings()))

	if v.opts.raiseOnError && !report.Valid {
		failed := &FailedError{Report: report}

		log.Error("table validation failed with errors", "summary", report.ErrorSummary())
		endSpan(span, report, failed)

		return report, failed
	}

	endSpan(span, report, nil)

	return report, nil
}

// run executes the checks: required columns first, then every column
// check over every schema column, then duplicate rows.
func (v *Validator) run(ctx context.Context, t table.Table, s *schema.Schema) (*Report, error) {
	r := newRun(ctx, t, s, v.opts)

	required := newCollector(v.opts.sampleSize)
	checkRequired(r, required)

	names := s.Columns()
	jobs := make([]job, 0, len(columnChecks)*len(names)+1)

	for _, check := range columnChecks {
		for _, name := range names {
			col, _ := s.Column(name)

			jobs = append(jobs, job{
				check:  check.name,
				column: name,
				fn: func(sink *collector) error {
					check.apply(r, sink, col)

					return nil
				},
			})
		}
	}

	jobs = append(jobs, job{
		check:  "duplicate_rows",
		column: TableLevel,
		fn: func(sink *collector) error {
			return checkDuplicates(r, sink)
		},
	})

	results, err := r.execute(jobs)
	if err != nil {
		return nil, err
	}

	violations := required.violations
	for _, vs := range results {
		violations = append(violations, vs...)
	}

	logger.Get(ctx).Debug("checks completed",
		"jobs", r.checks.Load(), "uncoercible_values", r.uncoercible.Load())

	return newReport(violations), nil
}

func logViolation(ctx context.Context, log *slog.Logger, v Violation) {
	level := slog.LevelError
	if !v.IsError() {
		level = slog.LevelWarn
	}

	args := []any{"column", v.Column, "check_type", string(v.Type), "message", v.Message}
	if len(v.Sample) > 0 {
		args = append(args, "sample", formatList(v.Sample))
	}

	log.Log(ctx, level, "rule violated", args...)
}

func isNilTable(t table.Table) bool {
	if t == nil {
		return true
	}

	f, ok := t.(*table.Frame)

	return ok && f == nil
}
