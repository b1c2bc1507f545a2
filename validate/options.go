package validate

import (
	"github.com/amp-labs/amp-tablecheck/config"
)

const (
	// messageLimit caps the values quoted in uniqueness and allowed value
	// messages.
	messageLimit = 5
	// allowedLimit caps the allowed set quoted in allowed value messages.
	allowedLimit = 10
)

type options struct {
	raiseOnError bool
	concurrency  int
	sampleSize   int
}

func defaultOptions() options {
	return options{
		concurrency: config.DefaultConcurrency,
		sampleSize:  config.DefaultSampleSize,
	}
}

// Option configures a Validator.
type Option func(*options)

// WithRaiseOnError makes Validate return a *FailedError alongside the
// report when any error-severity violation is found.
func WithRaiseOnError(raise bool) Option {
	return func(o *options) {
		o.raiseOnError = raise
	}
}

// WithConcurrency runs per-column checks on n workers. Values below 2 run
// everything on the calling goroutine. The report is the same either way.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = max(n, 1)
	}
}

// WithSampleSize sets how many offending values a violation keeps.
// Non-positive values keep the default.
func WithSampleSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sampleSize = n
		}
	}
}

// WithConfig applies the settings loaded by config.Load.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		WithRaiseOnError(cfg.RaiseOnError)(o)
		WithConcurrency(cfg.Concurrency)(o)
		WithSampleSize(cfg.SampleSize)(o)
	}
}
