// Package cli renders validation reports for terminals and pipelines.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/amp-labs/amp-tablecheck/errors"
	"github.com/amp-labs/amp-tablecheck/validate"
	"github.com/amp-labs/amp-tablecheck/xform"
	"github.com/charmbracelet/lipgloss"
)

// Format selects how a report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" and "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	f, err := xform.OneOf(FormatText, FormatJSON)(Format(strings.ToLower(strings.TrimSpace(s))))
	if err != nil {
		return "", fmt.Errorf("%w: report format: %w", errors.ErrUnsupportedFormat, err)
	}

	return f, nil
}

// Terminal palette.
//
//nolint:gochecknoglobals
var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#374151")
)

type styles struct {
	banner  lipgloss.Style
	passed  lipgloss.Style
	warned  lipgloss.Style
	failed  lipgloss.Style
	muted   lipgloss.Style
	errTag  lipgloss.Style
	warnTag lipgloss.Style
}

// newStyles binds the palette to w, so colors are dropped when w is not a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)

	return styles{
		banner: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		passed:  r.NewStyle().Foreground(colorSuccess).Bold(true),
		warned:  r.NewStyle().Foreground(colorWarning).Bold(true),
		failed:  r.NewStyle().Foreground(colorError).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		errTag:  r.NewStyle().Foreground(colorError).Width(len("ERROR")),
		warnTag: r.NewStyle().Foreground(colorWarning).Width(len("ERROR")),
	}
}

// Render writes report to w in the given format.
func Render(w io.Writer, report *validate.Report, format Format) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, report)
	case FormatText:
		return RenderText(w, report)
	default:
		return fmt.Errorf("%w: report format %q", errors.ErrUnsupportedFormat, format)
	}
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, report *validate.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(report)
}

// RenderText writes a boxed headline followed by one line per violation.
func RenderText(w io.Writer, report *validate.Report) error {
	st := newStyles(w)

	outcome := report.Outcome()

	var headline string

	switch {
	case !report.IsValid():
		headline = st.failed.Render("✗ validation " + outcome)
	case len(report.Violations) > 0:
		headline = st.warned.Render("! validation " + outcome)
	default:
		headline = st.passed.Render("✓ validation " + outcome)
	}

	details := st.muted.Render(fmt.Sprintf("%s · %s · %s",
		plural(report.Rows, "row"),
		plural(report.Columns, "column"),
		violationCounts(report)))

	var b strings.Builder

	b.WriteString(st.banner.Render(headline + "\n" + details))
	b.WriteString("\n")

	for _, v := range report.Violations {
		tag := st.errTag.Render("ERROR")
		if !v.IsError() {
			tag = st.warnTag.Render("WARN")
		}

		b.WriteString(tag)
		b.WriteString(" ")
		b.WriteString(strings.TrimPrefix(v.String(), "- "))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func violationCounts(report *validate.Report) string {
	errs, warns := len(report.Errors()), len(report.Warnings())
	if errs == 0 && warns == 0 {
		return "no violations"
	}

	return plural(errs, "error") + ", " + plural(warns, "warning")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
