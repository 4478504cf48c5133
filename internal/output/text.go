package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dshills/prbot/internal/review"
)

var (
	labelStyle    = lipgloss.NewStyle().Bold(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5F5F"})
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD75F"})
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})
)

// WriteRunSummary prints the short progress summary shown on stdout after a
// successful run. Styling is applied only when styled is true.
func WriteRunSummary(w io.Writer, o *review.Outcome, artifacts []string, styled bool) error {
	ew := &errWriter{w: w}
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	ew.printf("%s %d\n", style(labelStyle, "Files changed:"), o.FilesChanged)

	switch o.Kind {
	case review.KindQA:
		ew.printf("%s %d bytes\n", style(labelStyle, "QA scenarios:"), len(o.Markdown))
	case review.KindPR:
		ew.printf("%s %s\n", style(labelStyle, "Title:"), o.Draft.Title)
	default:
		counts := review.CountSeverities(o.Result.Comments)
		line := fmt.Sprintf("%d (%d critical, %d suggestion, %d nitpick)",
			len(o.Result.Comments), counts.Critical, counts.Suggestion, counts.Nitpick)
		if counts.Critical > 0 {
			line = style(criticalStyle, line)
		} else {
			line = style(okStyle, line)
		}
		ew.printf("%s %s\n", style(labelStyle, "Comments:"), line)
		if o.Result.Summary == review.FailedSummary {
			ew.printf("%s\n", style(criticalStyle, "Model response could not be parsed; an empty review was written."))
		}
	}

	if len(artifacts) > 0 {
		ew.printf("%s %s\n", style(labelStyle, "Artifacts:"), strings.Join(artifacts, ", "))
	}
	ew.println(style(dimStyle, fmt.Sprintf("%s/%s in %dms", o.Provider, o.Model, o.LLMMs)))
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
