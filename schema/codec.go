package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/logger"
	"github.com/amp-labs/amp-tablecheck/predicate"
	"gopkg.in/yaml.v3"
)

// Format is a schema serialization.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: schema file %q", errors.ErrUnsupportedFormat, path)
	}
}

// ParseFormat accepts yaml, yml, json and toml.
func ParseFormat(s string) (Format, error) {
	return FormatFromPath("x." + s)
}

// ruleDocument is the serialized form of a ColumnRule. Custom predicates
// are stored by registry name or as Go source.
type ruleDocument struct {
	ExpectedType string `json:"expected_type,omitempty" toml:"expected_type,omitempty" yaml:"expected_type,omitempty"`
	Required     bool   `json:"required,omitempty"      toml:"required,omitempty"      yaml:"required,omitempty"`
	Nullable     *bool  `json:"nullable,omitempty"      toml:"nullable,omitempty"      yaml:"nullable,omitempty"`
	Unique       bool   `json:"unique,omitempty"        toml:"unique,omitempty"        yaml:"unique,omitempty"`

	MinValue  any  `json:"min_value,omitempty"  toml:"min_value,omitempty"  yaml:"min_value,omitempty"`
	MaxValue  any  `json:"max_value,omitempty"  toml:"max_value,omitempty"  yaml:"max_value,omitempty"`
	StrictMin bool `json:"strict_min,omitempty" toml:"strict_min,omitempty" yaml:"strict_min,omitempty"`
	StrictMax bool `json:"strict_max,omitempty" toml:"strict_max,omitempty" yaml:"strict_max,omitempty"`

	MinLength *int `json:"min_length,omitempty" toml:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int `json:"max_length,omitempty" toml:"max_length,omitempty" yaml:"max_length,omitempty"`

	// A pointer so that an empty set, which rejects everything, survives
	// encoding instead of reading back as no restriction.
	AllowedValues *[]any `json:"allowed_values,omitempty" toml:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`

	RegexPattern           string `json:"regex_pattern,omitempty"            toml:"regex_pattern,omitempty"            yaml:"regex_pattern,omitempty"`
	DisallowedRegexPattern string `json:"disallowed_regex_pattern,omitempty" toml:"disallowed_regex_pattern,omitempty" yaml:"disallowed_regex_pattern,omitempty"`

	CustomFunction             string `json:"custom_function,omitempty"               toml:"custom_function,omitempty"               yaml:"custom_function,omitempty"`
	CustomFunctionSource       string `json:"custom_function_source,omitempty"        toml:"custom_function_source,omitempty"        yaml:"custom_function_source,omitempty"`
	CustomFunctionSeries       string `json:"custom_function_series,omitempty"        toml:"custom_function_series,omitempty"        yaml:"custom_function_series,omitempty"`
	CustomFunctionSeriesSource string `json:"custom_function_series_source,omitempty" toml:"custom_function_series_source,omitempty" yaml:"custom_function_series_source,omitempty"`

	TrimWhitespace   bool   `json:"trim_whitespace,omitempty"   toml:"trim_whitespace,omitempty"   yaml:"trim_whitespace,omitempty"`
	NormalizeUnicode bool   `json:"normalize_unicode,omitempty" toml:"normalize_unicode,omitempty" yaml:"normalize_unicode,omitempty"`
	Severity         string `json:"severity,omitempty"          toml:"severity,omitempty"          yaml:"severity,omitempty"`
}

type sourced interface {
	Source() string
}

func toDocument(rule ColumnRule) ruleDocument {
	doc := ruleDocument{
		ExpectedType:           string(rule.ExpectedType),
		Required:               rule.Required,
		Nullable:               rule.Nullable,
		Unique:                 rule.Unique,
		MinValue:               encodeScalar(rule.MinValue),
		MaxValue:               encodeScalar(rule.MaxValue),
		StrictMin:              rule.StrictMin,
		StrictMax:              rule.StrictMax,
		MinLength:              rule.MinLength,
		MaxLength:              rule.MaxLength,
		RegexPattern:           rule.RegexPattern,
		DisallowedRegexPattern: rule.DisallowedRegexPattern,
		TrimWhitespace:         rule.TrimWhitespace,
		NormalizeUnicode:       rule.NormalizeUnicode,
		Severity:               string(rule.Severity),
	}

	if rule.AllowedValues != nil {
		allowed := make([]any, len(rule.AllowedValues))
		for i, v := range rule.AllowedValues {
			allowed[i] = encodeScalar(v)
		}

		doc.AllowedValues = &allowed
	}

	if f := rule.CustomFunction; f != nil {
		if s, ok := f.(sourced); ok {
			doc.CustomFunctionSource = s.Source()
		} else {
			doc.CustomFunction = f.Name()
		}
	}

	if f := rule.CustomFunctionSeries; f != nil {
		if s, ok := f.(sourced); ok {
			doc.CustomFunctionSeriesSource = s.Source()
		} else {
			doc.CustomFunctionSeries = f.Name()
		}
	}

	return doc
}

// encodeScalar renders times as RFC 3339 strings so every format carries
// them the same way.
func encodeScalar(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return nil
		}

		return x.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// decodeScalar maps decoder output onto the Go types the engine expects.
func decodeScalar(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}

		if f, err := x.Float64(); err == nil {
			return f
		}

		return x.String()
	case int:
		return int64(x)
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}

		return float64(x)
	default:
		return v
	}
}

func fromDocument(name string, doc ruleDocument, reg *predicate.Registry) (ColumnRule, error) { //nolint:cyclop
	var errs errors.Collection

	typ, err := ParseExpectedType(doc.ExpectedType)
	errs.Add(err)

	sev, err := ParseSeverity(doc.Severity)
	errs.Add(err)

	rule := ColumnRule{
		ExpectedType:           typ,
		Required:               doc.Required,
		Nullable:               doc.Nullable,
		Unique:                 doc.Unique,
		MinValue:               decodeScalar(doc.MinValue),
		MaxValue:               decodeScalar(doc.MaxValue),
		StrictMin:              doc.StrictMin,
		StrictMax:              doc.StrictMax,
		MinLength:              doc.MinLength,
		MaxLength:              doc.MaxLength,
		RegexPattern:           doc.RegexPattern,
		DisallowedRegexPattern: doc.DisallowedRegexPattern,
		TrimWhitespace:         doc.TrimWhitespace,
		NormalizeUnicode:       doc.NormalizeUnicode,
	}

	if doc.Severity != "" {
		rule.Severity = sev
	}

	if doc.AllowedValues != nil {
		allowed := *doc.AllowedValues

		rule.AllowedValues = make([]any, len(allowed))
		for i, v := range allowed {
			rule.AllowedValues[i] = decodeScalar(v)
		}
	}

	switch {
	case doc.CustomFunction != "" && doc.CustomFunctionSource != "":
		errs.Addf("custom_function and custom_function_source are mutually exclusive")
	case doc.CustomFunction != "":
		rule.CustomFunction, err = reg.Element(doc.CustomFunction)
		errs.Add(err)
	case doc.CustomFunctionSource != "":
		script, err := predicate.Compile(doc.CustomFunctionSource)
		errs.Add(err)

		if err == nil {
			rule.CustomFunction = script
		}
	}

	switch {
	case doc.CustomFunctionSeries != "" && doc.CustomFunctionSeriesSource != "":
		errs.Addf("custom_function_series and custom_function_series_source are mutually exclusive")
	case doc.CustomFunctionSeries != "":
		rule.CustomFunctionSeries, err = reg.Series(doc.CustomFunctionSeries)
		errs.Add(err)
	case doc.CustomFunctionSeriesSource != "":
		script, err := predicate.CompileSeries(doc.CustomFunctionSeriesSource)
		errs.Add(err)

		if err == nil {
			rule.CustomFunctionSeries = script
		}
	}

	if errs.HasError() {
		return rule, fmt.Errorf("column %q: %w", name, errs.GetError())
	}

	return rule, nil
}

func documents(s *Schema) map[string]ruleDocument {
	out := make(map[string]ruleDocument, s.Len())
	for name, c := range s.columns {
		out[name] = toDocument(c.rule)
	}

	return out
}

// EncodeYAML writes the schema as a YAML mapping of column name to rule.
func EncodeYAML(s *Schema) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2) //nolint:mnd

	if err := enc.Encode(documents(s)); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeJSON writes the schema as an indented JSON object.
func EncodeJSON(s *Schema) ([]byte, error) {
	return json.MarshalIndent(documents(s), "", "  ")
}

// EncodeTOML writes the schema with one table per column.
func EncodeTOML(s *Schema) ([]byte, error) {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).Encode(documents(s)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Encode dispatches on format.
func Encode(s *Schema, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return EncodeYAML(s)
	case FormatJSON:
		return EncodeJSON(s)
	case FormatTOML:
		return EncodeTOML(s)
	default:
		return nil, fmt.Errorf("%w: schema format %q", errors.ErrUnsupportedFormat, format)
	}
}

// Decode parses a serialized schema and builds it with New. Predicate names
// are resolved against reg; a nil reg means predicate.Default().
func Decode(data []byte, format Format, reg *predicate.Registry) (*Schema, error) {
	if reg == nil {
		reg = predicate.Default()
	}

	docs, err := decodeDocuments(data, format)
	if err != nil {
		return nil, logger.AnnotateError(err, "schema_format", string(format))
	}

	var errs errors.Collection

	rules := make(map[string]ColumnRule, len(docs))

	for name, doc := range docs {
		rule, err := fromDocument(name, doc, reg)
		if err != nil {
			errs.Add(err)

			continue
		}

		rules[name] = rule
	}

	if err := errs.Wrap(ErrInvalidSchema); err != nil {
		return nil, err
	}

	return New(rules)
}

func decodeDocuments(data []byte, format Format) (map[string]ruleDocument, error) {
	docs := map[string]ruleDocument{}

	switch format {
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}

		if len(root.Content) == 0 {
			return docs, nil
		}

		if root.Content[0].Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: top level must be a mapping of column name to rule", ErrInvalidSchema)
		}

		// Node.Decode cannot reject unknown keys, so decode the bytes again.
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		dec.DisallowUnknownFields()

		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &docs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidSchema, undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: schema format %q", errors.ErrUnsupportedFormat, format)
	}

	return docs, nil
}

// LoadFile reads and decodes a schema file, choosing the format from its
// extension. Errors carry the path as a log attribute.
func LoadFile(path string, reg *predicate.Registry) (*Schema, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, logger.AnnotateError(err, "schema_path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, logger.AnnotateError(err, "schema_path", path)
	}

	s, err := Decode(data, format, reg)
	if err != nil {
		return nil, logger.AnnotateError(err, "schema_path", path)
	}

	return s, nil
}
