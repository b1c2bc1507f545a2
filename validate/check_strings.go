package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/xform"
	"golang.org/x/text/unicode/norm"
)

func checkStrings(r *run, sink *collector, col *schema.Column) {
	rule := col.Rule()

	if rule.ExpectedType != schema.TypeAny && rule.ExpectedType != schema.TypeText {
		return
	}

	if rule.MinLength == nil && rule.MaxLength == nil && col.Pattern() == nil && col.DisallowedPattern() == nil {
		return
	}

	c, ok := r.column(sink, col)
	if !ok {
		return
	}

	values, _ := c.NonNull()
	if len(values) == 0 {
		return
	}

	texts := make([]string, len(values))
	for i, v := range values {
		texts[i] = prepareString(v, rule)
	}

	if rule.MinLength != nil {
		short := failing(values, texts, func(s string) bool { return utf8.RuneCountInString(s) < *rule.MinLength })
		if len(short) > 0 {
			sink.add(col, CheckMinLength, short, "string length is less than the minimum %d", *rule.MinLength)
		}
	}

	if rule.MaxLength != nil {
		long := failing(values, texts, func(s string) bool { return utf8.RuneCountInString(s) > *rule.MaxLength })
		if len(long) > 0 {
			sink.add(col, CheckMaxLength, long, "string length exceeds the maximum %d", *rule.MaxLength)
		}
	}

	if p := col.Pattern(); p != nil {
		checkPattern(sink, col, p, values, texts, CheckRegexPattern, func(re *regexp.Regexp, s string) bool {
			return !re.MatchString(s)
		})
	}

	if p := col.DisallowedPattern(); p != nil {
		checkPattern(sink, col, p, values, texts, CheckDisallowedRegexPattern, func(re *regexp.Regexp, s string) bool {
			return re.MatchString(s)
		})
	}
}

// prepareString renders a cell as text and applies the rule's trimming and
// normalization.
func prepareString(v table.Value, rule schema.ColumnRule) string {
	s := xform.StringOf(v)

	if rule.TrimWhitespace {
		s = strings.TrimSpace(s)
	}

	if rule.NormalizeUnicode {
		s = norm.NFC.String(s)
	}

	return s
}

func checkPattern(
	sink *collector,
	col *schema.Column,
	p *schema.Pattern,
	values []table.Value,
	texts []string,
	typ CheckType,
	bad func(*regexp.Regexp, string) bool,
) {
	re, err := p.Regexp()
	if err != nil {
		sink.add(col, typ, nil, "invalid regex pattern %s: %v", p.Source, err)

		return
	}

	offending := failing(values, texts, func(s string) bool { return bad(re, s) })
	if len(offending) == 0 {
		return
	}

	if typ == CheckDisallowedRegexPattern {
		sink.add(col, typ, offending, "values match the disallowed regex pattern %s", p.Source)
	} else {
		sink.add(col, typ, offending, "values do not match the regex pattern %s", p.Source)
	}
}

// failing returns the original values whose prepared text fails pred.
func failing(values []table.Value, texts []string, pred func(string) bool) []table.Value {
	var out []table.Value

	for i, s := range texts {
		if pred(s) {
			out = append(out, values[i])
		}
	}

	return out
}
