package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/prbot/internal/review"
)

// ReviewTitle heads every review summary document.
const ReviewTitle = "## 🤖 AI Code Review"

// WriteReviewMarkdown renders the human-readable review summary posted as the
// pull request review body.
func WriteReviewMarkdown(w io.Writer, o *review.Outcome) error {
	ew := &errWriter{w: w}
	comments := o.Result.Comments
	counts := review.CountSeverities(comments)

	ew.printf("%s\n\n", ReviewTitle)
	ew.printf("**Summary:** %s\n\n", o.Result.Summary)
	ew.println("**Review stats**")
	ew.printf("%s Critical: %d\n", review.SeverityIcon(review.SeverityCritical), counts.Critical)
	ew.printf("%s Suggestion: %d\n", review.SeverityIcon(review.SeveritySuggestion), counts.Suggestion)
	ew.printf("%s Nitpick: %d\n", review.SeverityIcon(review.SeverityNitpick), counts.Nitpick)

	if len(comments) > 0 {
		ew.printf("\n<details>\n<summary>Show detailed comments</summary>\n\n")
		for _, g := range review.GroupByFile(comments) {
			ew.printf("### `%s`\n\n", g.Path)
			for _, c := range g.Comments {
				ew.printf("**%s** line %d:\n%s\n\n", SeverityTag(c.Severity), c.Line, c.Body)
			}
		}
		ew.println("</details>")
	}

	ew.printf("\n📈 Files analysed: %d | 💰 API cost: %s\n", o.FilesChanged, costLine(o))
	return ew.err
}

func costLine(o *review.Outcome) string {
	if !o.Usage.Known() {
		return "unavailable (no usage reported)"
	}
	rates, ok := LookupRates(o.Model)
	if !ok {
		return fmt.Sprintf("unavailable (no price for %s)", o.Model)
	}
	return fmt.Sprintf("%s (input: %s, output: %s tokens)",
		FormatCost(Cost(o.Usage, rates)),
		groupDigits(o.Usage.InputTokens),
		groupDigits(o.Usage.OutputTokens))
}

// SeverityTag renders "<icon> [SEVERITY]". An empty severity reads as
// suggestion.
func SeverityTag(s review.Severity) string {
	if s == "" {
		s = review.SeveritySuggestion
	}
	return fmt.Sprintf("%s [%s]", review.SeverityIcon(s), strings.ToUpper(string(s)))
}
