package xform

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrNonPositive     = errors.New("value must be positive")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// TrimString strips surrounding whitespace. Environment values pass
// through it before parsing.
func TrimString(s string) (string, error) {
	return strings.TrimSpace(s), nil
}

// SplitString splits on sep, trims every part and drops the empty ones,
// so "a, b,," yields [a b].
func SplitString(sep string) func(string) ([]string, error) {
	return func(s string) ([]string, error) {
		parts := strings.Split(s, sep)
		out := parts[:0]

		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}

		return out, nil
	}
}

// OneOf accepts only the listed values and fails with ErrInvalidChoice
// otherwise.
func OneOf[A comparable](choices ...A) func(A) (A, error) { //nolint:ireturn
	return func(value A) (A, error) {
		if slices.Contains(choices, value) {
			return value, nil
		}

		return value, fmt.Errorf("%w: %v (expected one of %v)", ErrInvalidChoice, value, choices)
	}
}

// Bool parses with strconv.ParseBool.
func Bool(value string) (bool, error) {
	return strconv.ParseBool(value)
}

// Int64 parses a base-10 int64.
func Int64(value string) (int64, error) {
	return strconv.ParseInt(value, 10, 64)
}

// Int parses a base-10 int.
func Int(value string) (int, error) {
	return strconv.Atoi(value)
}

// Float64 parses a float64, accepting anything strconv.ParseFloat does.
func Float64(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}

// Positive rejects zero and negative values with ErrNonPositive.
func Positive[A Numeric](value A) (A, error) { // nolint:ireturn
	if value <= 0 {
		return value, fmt.Errorf("%w: %v", ErrNonPositive, value)
	}

	return value, nil
}

// Duration parses with time.ParseDuration ("5s", "1m30s").
func Duration(value string) (time.Duration, error) {
	return time.ParseDuration(value)
}

// SlogLevel maps "debug", "info", "warn"/"warning" and "error", in any
// case, onto slog levels.
func SlogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, value)
	}
}
