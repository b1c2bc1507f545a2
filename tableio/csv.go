package tableio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/xform"
)

// DefaultNullTokens are the cell texts read as missing values.
var DefaultNullTokens = []string{"", "NA", "N/A", "null", "NULL", "NaN", "nan"} //nolint:gochecknoglobals

// How often (in records) a long read checks for cancellation.
const cancelCheckEvery = 4096

type csvOptions struct {
	delimiter  rune
	nullTokens []string
	charset    string
	infer      bool
}

// CSVOption configures ReadCSV.
type CSVOption func(*csvOptions)

// WithDelimiter sets the field separator. The default is a comma.
func WithDelimiter(delim rune) CSVOption {
	return func(o *csvOptions) {
		o.delimiter = delim
	}
}

// WithNullTokens replaces DefaultNullTokens. An empty cell is only null if
// "" is among the tokens.
func WithNullTokens(tokens ...string) CSVOption {
	return func(o *csvOptions) {
		o.nullTokens = slices.Clone(tokens)
	}
}

// WithCharset forces the input encoding (any WHATWG label, such as
// "latin1" or "shift_jis") instead of detecting it.
func WithCharset(label string) CSVOption {
	return func(o *csvOptions) {
		o.charset = label
	}
}

// WithoutInference keeps every non-null cell as a string.
func WithoutInference() CSVOption {
	return func(o *csvOptions) {
		o.infer = false
	}
}

// ReadCSV reads a delimited text table whose first record is the header.
//
// Cells matching a null token become nulls. Each column then takes the
// first kind that every non-null cell parses as, trying int64, float64,
// bool, datetime and finally string. A column with no non-null cells is
// KindNull. Blank header names become "unnamed_<index>" and repeated names
// get a ".<n>" suffix.
func ReadCSV(ctx context.Context, r io.Reader, opts ...CSVOption) (*table.Frame, error) {
	o := csvOptions{
		delimiter:  ',',
		nullTokens: DefaultNullTokens,
		infer:      true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	ctx = logger.WithSubsystem(ctx, subsystem)

	decoded, encoding, err := UTF8Reader(r, o.charset)
	if err != nil {
		return nil, logger.AnnotateError(err, "charset", o.charset)
	}

	frame, err := readRecords(ctx, decoded, o)
	if err != nil {
		return nil, logger.AnnotateError(err, "encoding", encoding, "delimiter", string(o.delimiter))
	}

	logger.Get(ctx).Debug("read CSV table",
		"rows", frame.RowCount(),
		"columns", len(frame.ColumnNames()),
		"encoding", encoding)

	return frame, nil
}

func readRecords(ctx context.Context, decoded io.Reader, o csvOptions) (*table.Frame, error) {
	reader := csv.NewReader(decoded)
	reader.Comma = o.delimiter

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table.NewFrame()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	names := headerNames(header)
	cells := make([][]string, len(names))
	nulls := make([][]bool, len(names))

	for n := 0; ; n++ {
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		for i, cell := range record {
			cells[i] = append(cells[i], cell)
			nulls[i] = append(nulls[i], slices.Contains(o.nullTokens, cell))
		}
	}

	cols := make([]table.Column, len(names))
	for i, name := range names {
		cols[i] = buildColumn(name, cells[i], nulls[i], o.infer)
	}

	return table.NewFrame(cols...)
}

func headerNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "unnamed_" + strconv.Itoa(i)
		}

		if _, dup := seen[name]; dup {
			name = nextFreeName(name, seen)
		}

		seen[name] = 0
		names[i] = name
	}

	return names
}

// nextFreeName returns base.N for the smallest N past the last suffix used
// for base that no other column already has.
func nextFreeName(base string, seen map[string]int) string {
	for n := seen[base] + 1; ; n++ {
		candidate := base + "." + strconv.Itoa(n)
		if _, taken := seen[candidate]; !taken {
			seen[base] = n

			return candidate
		}
	}
}

type cellParser func(string) (any, bool)

// Tried in order; the first parser that accepts every cell wins.
var inference = []struct { //nolint:gochecknoglobals
	kind  table.Kind
	parse cellParser
}{
	{table.KindInt64, func(s string) (any, bool) {
		v, err := xform.Int64(strings.TrimSpace(s))

		return v, err == nil
	}},
	{table.KindFloat64, func(s string) (any, bool) {
		v, err := xform.Float64(strings.TrimSpace(s))

		return v, err == nil
	}},
	{table.KindBool, func(s string) (any, bool) {
		s = strings.TrimSpace(s)
		if !strings.EqualFold(s, "true") && !strings.EqualFold(s, "false") {
			return nil, false
		}

		v, err := xform.Bool(strings.ToLower(s))

		return v, err == nil
	}},
	{table.KindDatetime, func(s string) (any, bool) {
		v, err := xform.ParseTime(strings.TrimSpace(s))

		return v, err == nil
	}},
}

func buildColumn(name string, cells []string, nulls []bool, infer bool) table.Column {
	values := make([]table.Value, len(cells))
	nonNull := 0

	for _, isNull := range nulls {
		if !isNull {
			nonNull++
		}
	}

	if nonNull == 0 {
		return table.NewTypedColumn(name, table.KindNull, values)
	}

	if infer {
		for _, candidate := range inference {
			if parseAll(cells, nulls, values, candidate.parse) {
				return table.NewTypedColumn(name, candidate.kind, values)
			}
		}
	}

	for i, cell := range cells {
		if nulls[i] {
			values[i] = table.Null()
		} else {
			values[i] = table.Of(cell)
		}
	}

	return table.NewTypedColumn(name, table.KindString, values)
}

// parseAll fills values with the parsed cells and reports whether every
// non-null cell parsed.
func parseAll(cells []string, nulls []bool, values []table.Value, parse cellParser) bool {
	for i, cell := range cells {
		if nulls[i] {
			values[i] = table.Null()

			continue
		}

		v, ok := parse(cell)
		if !ok {
			return false
		}

		values[i] = table.Of(v)
	}

	return true
}
