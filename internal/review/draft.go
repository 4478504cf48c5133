package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxTitleRunes caps a drafted pull request title.
const MaxTitleRunes = 80

// ErrUnparseableDraft reports a model response with no usable title/body
// object.
var ErrUnparseableDraft = errors.New("model response is not a pull request draft")

// PRDraft is a generated pull request title and description.
type PRDraft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NormalizeDraft recovers a PRDraft from free-form model output using the
// same fence and brace-span stages as NormalizeReview. Raw newlines inside
// JSON strings are tolerated. An empty title is an error: unlike a review
// there is nothing useful to fall back to.
func NormalizeDraft(content string) (PRDraft, error) {
	body := stripFence(strings.TrimSpace(content))

	candidates := []string{body}
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		candidates = append(candidates, body[start:end+1])
	}

	for _, c := range candidates {
		d, ok := decodeDraft(c)
		if !ok {
			continue
		}
		d.Title = truncateRunes(strings.TrimSpace(d.Title), MaxTitleRunes)
		if d.Title == "" {
			return PRDraft{}, fmt.Errorf("%w: empty title", ErrUnparseableDraft)
		}
		return d, nil
	}
	return PRDraft{}, ErrUnparseableDraft
}

func decodeDraft(s string) (PRDraft, bool) {
	var d PRDraft
	if err := json.Unmarshal([]byte(s), &d); err == nil {
		return d, true
	}
	if err := json.Unmarshal([]byte(escapeNewlinesInStrings(s)), &d); err == nil {
		return d, true
	}
	return PRDraft{}, false
}

// escapeNewlinesInStrings rewrites raw CR and LF characters inside JSON
// string literals as \n.
func escapeNewlinesInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inStr, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inStr:
			escaped = true
		case r == '"':
			inStr = !inStr
		case inStr && (r == '\n' || r == '\r'):
			b.WriteString(`\n`)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var issueBranchRe = regexp.MustCompile(`^issue-(\d+)(?:-|$)`)

// LinkIssue appends "Fixes #N" to the body when branch is named issue-N or
// issue-N-<slug> and the body does not mention #N yet.
func LinkIssue(d PRDraft, branch string) PRDraft {
	m := issueBranchRe.FindStringSubmatch(branch)
	if m == nil || strings.Contains(d.Body, "#"+m[1]) {
		return d
	}
	d.Body += "\n\nFixes #" + m[1]
	return d
}
