// Package schema defines the declarative rule set a table is validated
// against. A Schema is built once with New, which checks the rules for
// internal consistency and precompiles what the checkers need (bounds,
// allowed sets, regular expressions). After that it is immutable and safe
// to share between goroutines and validation runs.
//
// Schemas can also be read from and written to YAML, JSON and TOML; see
// Decode and Encode.
package schema

import (
	"fmt"
	"hash"
	"regexp"
	"time"

	"facette.io/natsort"
	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/hashing"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/xform"
)

// Schema is an immutable mapping from column name to compiled rule.
type Schema struct {
	names   []string
	columns map[string]*Column
}

var _ hashing.Hashable = (*Schema)(nil)

// Column is a rule together with everything precomputed from it.
type Column struct {
	name    string
	rule    ColumnRule
	min     table.Value
	max     table.Value
	allowed []table.Value

	pattern    *Pattern
	disallowed *Pattern
}

// Pattern is a regular expression from a rule. A pattern that failed to
// compile is kept with its error so that the string checker can report it
// as a violation.
type Pattern struct {
	Source string

	re  *regexp.Regexp
	err error
}

// Regexp returns the compiled expression, or the compile error.
func (p *Pattern) Regexp() (*regexp.Regexp, error) {
	return p.re, p.err
}

func compilePattern(src string, fullMatch bool) *Pattern {
	expr := src
	if fullMatch {
		expr = `\A(?:` + src + `)\z`
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		// Report against the user's pattern, not the anchored wrapper.
		if _, plainErr := regexp.Compile(src); plainErr != nil {
			err = plainErr
		}
	}

	return &Pattern{Source: src, re: re, err: err}
}

// New validates and compiles rules. All consistency problems are reported
// together, wrapped in ErrInvalidSchema. A nil or empty map yields an empty
// schema, which accepts every table.
func New(rules map[string]ColumnRule) (*Schema, error) {
	s := &Schema{
		names:   make([]string, 0, len(rules)),
		columns: make(map[string]*Column, len(rules)),
	}

	for name := range rules {
		s.names = append(s.names, name)
	}

	natsort.Sort(s.names)

	var errs errors.Collection

	for _, name := range s.names {
		col, err := compileColumn(name, rules[name].clone())
		if err != nil {
			errs.Add(err)

			continue
		}

		s.columns[name] = col
	}

	if err := errs.Wrap(ErrInvalidSchema); err != nil {
		return nil, err
	}

	return s, nil
}

// MustNew is New that panics on error, for static schemas.
func MustNew(rules map[string]ColumnRule) *Schema {
	s, err := New(rules)
	if err != nil {
		panic(err)
	}

	return s
}

func compileColumn(name string, rule ColumnRule) (*Column, error) { //nolint:cyclop,funlen
	var errs errors.Collection

	if name == "" {
		errs.Addf("column name must not be empty")
	}

	if !rule.ExpectedType.Valid() {
		errs.Addf("column %q: unknown expected_type %q", name, string(rule.ExpectedType))
	}

	switch rule.Severity {
	case "", SeverityError, SeverityWarning:
	default:
		errs.Addf("column %q: unknown severity %q", name, string(rule.Severity))
	}

	if rule.MinLength != nil && *rule.MinLength < 0 {
		errs.Addf("column %q: min_length must not be negative, got %d", name, *rule.MinLength)
	}

	if rule.MaxLength != nil && *rule.MaxLength < 0 {
		errs.Addf("column %q: max_length must not be negative, got %d", name, *rule.MaxLength)
	}

	if rule.MinLength != nil && rule.MaxLength != nil && *rule.MinLength > *rule.MaxLength {
		errs.Addf("column %q: min_length %d is greater than max_length %d",
			name, *rule.MinLength, *rule.MaxLength)
	}

	if (rule.MinLength != nil || rule.MaxLength != nil) &&
		rule.ExpectedType != TypeAny && rule.ExpectedType != TypeText {
		errs.Addf("column %q: length bounds need a text column, expected_type is %s",
			name, rule.ExpectedType)
	}

	col := &Column{name: name, rule: rule}

	var err error

	col.min, err = boundValue(name, "min_value", rule.MinValue, rule.ExpectedType)
	errs.Add(err)

	col.max, err = boundValue(name, "max_value", rule.MaxValue, rule.ExpectedType)
	errs.Add(err)

	if !col.min.IsNull() && !col.max.IsNull() {
		errs.Add(checkBoundOrder(name, col.min, col.max))
	}

	for _, v := range rule.AllowedValues {
		col.allowed = append(col.allowed, table.Of(v))
	}

	if rule.RegexPattern != "" {
		col.pattern = compilePattern(rule.RegexPattern, true)
	}

	if rule.DisallowedRegexPattern != "" {
		col.disallowed = compilePattern(rule.DisallowedRegexPattern, false)
	}

	if errs.HasError() {
		return nil, errs.GetError()
	}

	return col, nil
}

// boundValue normalizes a min/max bound to a number or a datetime cell.
func boundValue(column, field string, raw any, typ ExpectedType) (table.Value, error) {
	if raw == nil {
		return table.Null(), nil
	}

	if typ == TypeText || typ == TypeBoolean {
		return table.Null(), fmt.Errorf("column %q: %s needs a numeric or datetime column, expected_type is %s",
			column, field, typ)
	}

	v := table.Of(raw)

	switch {
	case v.Kind().IsNumeric():
		if typ == TypeDatetime {
			return table.Null(), fmt.Errorf("column %q: %s %v is numeric but expected_type is datetime",
				column, field, raw)
		}

		return v, nil
	case v.Kind() == table.KindDatetime || v.Kind() == table.KindString:
		if typ.Numeric() {
			return table.Null(), fmt.Errorf("column %q: %s %v is not a number", column, field, raw)
		}

		t, err := xform.TimeOf(v)
		if err != nil {
			return table.Null(), fmt.Errorf("column %q: %s %v is neither a number nor a datetime",
				column, field, raw)
		}

		return table.Of(t), nil
	default:
		return table.Null(), fmt.Errorf("column %q: %s of type %T is neither a number nor a datetime",
			column, field, raw)
	}
}

func checkBoundOrder(column string, lo, hi table.Value) error {
	if lo.Kind() == table.KindDatetime || hi.Kind() == table.KindDatetime {
		loT, loErr := xform.TimeOf(lo)
		hiT, hiErr := xform.TimeOf(hi)

		if loErr != nil || hiErr != nil {
			return fmt.Errorf("column %q: min_value and max_value must both be datetimes", column)
		}

		if loT.After(hiT) {
			return fmt.Errorf("column %q: min_value %s is after max_value %s",
				column, loT.Format(time.RFC3339), hiT.Format(time.RFC3339))
		}

		return nil
	}

	loF, _ := xform.Float64Of(lo)
	hiF, _ := xform.Float64Of(hi)

	if loF > hiF {
		return fmt.Errorf("column %q: min_value %s is greater than max_value %s",
			column, lo.String(), hi.String())
	}

	return nil
}

// Columns returns the rule names in natural sort order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)

	return out
}

// Len returns the number of rules.
func (s *Schema) Len() int {
	return len(s.names)
}

// Column looks up a compiled rule.
func (s *Schema) Column(name string) (*Column, bool) {
	c, ok := s.columns[name]

	return c, ok
}

// Rules returns a copy of the rules the schema was built from.
func (s *Schema) Rules() map[string]ColumnRule {
	out := make(map[string]ColumnRule, len(s.columns))
	for name, c := range s.columns {
		out[name] = c.rule.clone()
	}

	return out
}

// UpdateHash writes the canonical JSON form of the schema, so equal rule
// sets hash alike regardless of how they were built.
func (s *Schema) UpdateHash(h hash.Hash) error {
	data, err := EncodeJSON(s)
	if err != nil {
		return err
	}

	_, err = h.Write(data)

	return err
}

// Digest is a short fingerprint of the schema, logged with every run.
func (s *Schema) Digest() string {
	sum, err := hashing.Sha256(s)
	if err != nil {
		return ""
	}

	const digestLen = 12

	return sum[:digestLen]
}

func (c *Column) Name() string { return c.name }

// Rule returns a copy of the column's rule.
func (c *Column) Rule() ColumnRule { return c.rule.clone() }

// Min returns the normalized lower bound, null when unset.
func (c *Column) Min() table.Value { return c.min }

// Max returns the normalized upper bound, null when unset.
func (c *Column) Max() table.Value { return c.max }

// Allowed returns the allowed set, nil when unrestricted.
func (c *Column) Allowed() []table.Value {
	if c.rule.AllowedValues == nil {
		return nil
	}

	out := make([]table.Value, len(c.allowed))
	copy(out, c.allowed)

	return out
}

// Pattern returns the full-match pattern, nil when unset.
func (c *Column) Pattern() *Pattern { return c.pattern }

// DisallowedPattern returns the search pattern, nil when unset.
func (c *Column) DisallowedPattern() *Pattern { return c.disallowed }
