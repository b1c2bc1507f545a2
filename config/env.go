package config

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/amp-labs/amp-tablecheck/xform"
)

type overrideKey struct{}

// WithOverride returns a context in which key reads as value regardless of
// the process environment. Overrides stack: the innermost wins.
func WithOverride(ctx context.Context, key, value string) context.Context {
	parent, _ := ctx.Value(overrideKey{}).(map[string]string)

	next := make(map[string]string, len(parent)+1)
	for k, v := range parent {
		next[k] = v
	}

	next[key] = value

	return context.WithValue(ctx, overrideKey{}, next)
}

func get(ctx context.Context, key string) Reader[string] {
	if ctx != nil {
		if overrides, ok := ctx.Value(overrideKey{}).(map[string]string); ok {
			if val, found := overrides[key]; found {
				return Reader[string]{key: key, present: true, value: val}
			}
		}
	}

	val, ok := os.LookupEnv(key)

	return Reader[string]{
		key:     key,
		present: ok,
		value:   val,
	}
}

// String reads a raw string.
func String(ctx context.Context, key string, opts ...Option[string]) Reader[string] {
	return apply(get(ctx, key), opts)
}

// Bool reads a boolean as understood by strconv.ParseBool.
func Bool(ctx context.Context, key string, opts ...Option[bool]) Reader[bool] {
	return apply(Map(Map(get(ctx, key), xform.TrimString), xform.Bool), opts)
}

// Int reads a base-10 integer.
func Int(ctx context.Context, key string, opts ...Option[int]) Reader[int] {
	return apply(Map(Map(get(ctx, key), xform.TrimString), xform.Int), opts)
}

// Duration reads a Go duration string such as "10s".
func Duration(ctx context.Context, key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(Map(get(ctx, key), xform.TrimString), xform.Duration), opts)
}

// SlogLevel reads a log level name.
func SlogLevel(ctx context.Context, key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	return apply(Map(get(ctx, key), xform.SlogLevel), opts)
}
