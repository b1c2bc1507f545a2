package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// AnnotateError attaches slog key-value pairs to err. When the error is
// later logged through a handler installed by ConfigureLogging, the pairs
// are lifted out of the error and logged as ordinary attributes. The
// annotation survives wrapping with %w.
//
// Example:
//
//	sch, err := schema.LoadFile(path, registry)
//	if err != nil {
//	    return logger.AnnotateError(err, "schema_path", path)
//	}
//
// Returns nil if err is nil.
func AnnotateError(err error, args ...any) error {
	if err == nil {
		return nil
	}

	r := slog.NewRecord(time.Now(), slog.LevelDebug, "", 0)
	r.Add(args...)

	attrs := make([]slog.Attr, 0, r.NumAttrs())

	r.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)

		return true
	})

	return &slogError{
		err:   err,
		attrs: attrs,
	}
}

type slogError struct {
	err   error
	attrs []slog.Attr
}

func (s *slogError) Error() string {
	return s.err.Error()
}

func (s *slogError) Unwrap() error {
	return s.err
}

var _ error = (*slogError)(nil)

// ErrorAttrs returns the attributes attached to err, and to the errors it
// wraps, by AnnotateError. Outer annotations come first.
func ErrorAttrs(err error) []slog.Attr {
	var attrs []slog.Attr

	for {
		var se *slogError
		if !errors.As(err, &se) {
			return attrs
		}

		attrs = append(attrs, se.attrs...)
		err = se.err
	}
}

// slogErrorLogger decorates a handler so that attributes carried by
// annotated errors are expanded into the record.
type slogErrorLogger struct {
	inner slog.Handler
}

var _ slog.Handler = (*slogErrorLogger)(nil)

func (s *slogErrorLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return s.inner.Enabled(ctx, level)
}

func (s *slogErrorLogger) Handle(ctx context.Context, record slog.Record) error {
	var (
		attrs    []slog.Attr
		extra    []slog.Attr
		expanded bool
	)

	record.Attrs(func(attr slog.Attr) bool {
		if err, ok := attr.Value.Any().(error); ok {
			if annotated := ErrorAttrs(err); annotated != nil {
				extra = append(extra, annotated...)
				expanded = true
			}
		}

		attrs = append(attrs, attr)

		return true
	})

	if !expanded {
		return s.inner.Handle(ctx, record)
	}

	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	r.AddAttrs(attrs...)
	r.AddAttrs(extra...)

	return s.inner.Handle(ctx, r)
}

func (s *slogErrorLogger) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &slogErrorLogger{inner: s.inner.WithAttrs(attrs)}
}

func (s *slogErrorLogger) WithGroup(name string) slog.Handler {
	return &slogErrorLogger{inner: s.inner.WithGroup(name)}
}
