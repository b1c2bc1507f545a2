package predicate

import (
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const (
	// ElementEntry is the function a scripted element predicate must define.
	ElementEntry = "Check"
	// SeriesEntry is the function a scripted series predicate must define.
	SeriesEntry = "CheckSeries"

	defaultScriptPackage = "udf"
)

var (
	// ErrScript is returned when predicate source fails to compile or does
	// not define the expected entry point.
	ErrScript = errors.New("invalid predicate script")

	packageClause = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z_][A-Za-z0-9_]*)`)

	scriptSymbols = allowedSymbols() //nolint:gochecknoglobals
)

// ScriptPackages are the standard library packages a predicate script may
// import. None of them reach the file system, the network, the environment
// or other processes. The generic package sources yaegi compiles on load
// need cmp, math/bits and sync/atomic.
var ScriptPackages = []string{ //nolint:gochecknoglobals
	"cmp",
	"errors",
	"fmt",
	"maps",
	"math",
	"math/bits",
	"regexp",
	"slices",
	"sort",
	"strconv",
	"strings",
	"sync",
	"sync/atomic",
	"time",
	"unicode",
	"unicode/utf8",
}

func allowedSymbols() interp.Exports {
	out := make(interp.Exports, len(ScriptPackages))

	for _, pkg := range ScriptPackages {
		key := pkg + "/" + path.Base(pkg)
		if syms, ok := stdlib.Symbols[key]; ok {
			out[key] = syms
		}
	}

	return out
}

// Script is an element predicate interpreted from Go source.
//
// The source defines a function named Check taking the raw cell value
// (string, bool, int64, float64, time.Time, ...) and returning either bool,
// (bool, error) or interface{}. The package clause may be omitted.
//
//	func Check(v interface{}) bool {
//	    s, ok := v.(string)
//	    return ok && strings.HasPrefix(s, "SKU-")
//	}
//
// Scripts are trusted about as far as the schema file that carries them.
// They may import only ScriptPackages, so a script cannot touch files, the
// network or the environment, and whatever it prints is discarded. Nothing
// bounds its CPU time or memory: a script that loops forever stalls the
// validation that calls it. Calls are serialized.
type Script struct {
	source string
	mu     sync.Mutex
	fn     func(any) (bool, error)
}

var _ Element = (*Script)(nil)

func (s *Script) Name() string { return "script" }

// Source returns the Go source the predicate was compiled from.
func (s *Script) Source() string { return s.source }

func (s *Script) Test(v table.Value) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fn(v.Raw())
}

// SeriesScript is a series predicate interpreted from Go source. The
// source defines CheckSeries taking []interface{} (nil at null positions)
// and returning []bool or ([]bool, error).
type SeriesScript struct {
	source string
	mu     sync.Mutex
	fn     func([]any) ([]bool, error)
}

var _ Series = (*SeriesScript)(nil)

func (s *SeriesScript) Name() string { return "script" }

// Source returns the Go source the predicate was compiled from.
func (s *SeriesScript) Source() string { return s.source }

func (s *SeriesScript) TestSeries(values []table.Value) ([]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fn(Raw(values))
}

// Compile interprets src and returns the element predicate it defines.
func Compile(src string) (*Script, error) {
	sym, err := evalEntry(src, ElementEntry)
	if err != nil {
		return nil, err
	}

	var fn func(any) (bool, error)

	switch f := sym.(type) {
	case func(any) bool:
		fn = func(v any) (bool, error) { return f(v), nil }
	case func(any) (bool, error):
		fn = f
	case func(any) any:
		fn = func(v any) (bool, error) { return asBool(f(v)) }
	default:
		return nil, fmt.Errorf("%w: %s has signature %T, expected func(interface{}) bool",
			ErrScript, ElementEntry, sym)
	}

	return &Script{source: src, fn: fn}, nil
}

// CompileSeries interprets src and returns the series predicate it defines.
func CompileSeries(src string) (*SeriesScript, error) {
	sym, err := evalEntry(src, SeriesEntry)
	if err != nil {
		return nil, err
	}

	var fn func([]any) ([]bool, error)

	switch f := sym.(type) {
	case func([]any) []bool:
		fn = func(v []any) ([]bool, error) { return f(v), nil }
	case func([]any) ([]bool, error):
		fn = f
	default:
		return nil, fmt.Errorf("%w: %s has signature %T, expected func([]interface{}) []bool",
			ErrScript, SeriesEntry, sym)
	}

	return &SeriesScript{source: src, fn: fn}, nil
}

func evalEntry(src, entry string) (any, error) {
	pkg := defaultScriptPackage

	if m := packageClause.FindStringSubmatch(src); m != nil {
		pkg = m[1]
	} else {
		src = "package " + pkg + "\n\n" + src
	}

	i := interp.New(interp.Options{
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: io.Discard,
	})

	if err := i.Use(scriptSymbols); err != nil {
		return nil, fmt.Errorf("%w: loading stdlib: %w", ErrScript, err)
	}

	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}

	v, err := i.Eval(pkg + "." + entry)
	if err != nil {
		// Symbols of package main are in scope unqualified.
		var bareErr error
		if v, bareErr = i.Eval(entry); bareErr != nil {
			return nil, fmt.Errorf("%w: %s is not defined: %w", ErrScript, entry, err)
		}
	}

	if !v.IsValid() || !v.CanInterface() {
		return nil, fmt.Errorf("%w: %s is not a function", ErrScript, entry)
	}

	return v.Interface(), nil
}
