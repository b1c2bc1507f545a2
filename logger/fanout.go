package logger

import (
	"context"
	"errors"
	"log/slog"
)

// Fanout is a slog.Handler that forwards each record to every handler
// that is enabled for its level.
type Fanout struct {
	handlers []slog.Handler
}

var _ slog.Handler = (*Fanout)(nil)

// NewFanout returns a handler delivering to all of hs. Nil handlers are skipped.
func NewFanout(hs ...slog.Handler) *Fanout {
	out := make([]slog.Handler, 0, len(hs))

	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}

	return &Fanout{handlers: out}
}

func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// Handle delivers a clone of the record to each enabled handler and joins
// their errors.
func (f *Fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}

		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		out[i] = h.WithAttrs(attrs)
	}

	return &Fanout{handlers: out}
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		out[i] = h.WithGroup(name)
	}

	return &Fanout{handlers: out}
}
