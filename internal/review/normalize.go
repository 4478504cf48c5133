package review

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultSummary is used when the model omits the summary key.
	DefaultSummary = "review completed"
	// FailedSummary marks a response from which no JSON could be recovered.
	FailedSummary = "parsing failed"
)

const fence = "```"

// parseStage attempts to turn candidate text into a Result.
type parseStage func(body string) (Result, bool)

// reviewStages run in order; the first success wins.
var reviewStages = []parseStage{
	parseStrict,
	parseBraceSpan,
}

// FailedResult is the degraded result for an unparseable response.
func FailedResult() Result {
	return Result{Summary: FailedSummary, Comments: []Comment{}}
}

// NormalizeReview coerces free-form model output into a Result. It never
// fails: when nothing can be recovered it returns FailedResult.
func NormalizeReview(content string) Result {
	body := stripFence(strings.TrimSpace(content))
	for _, stage := range reviewStages {
		if r, ok := stage(body); ok {
			return r
		}
	}
	return FailedResult()
}

// NormalizeQA passes QA markdown through unchanged.
func NormalizeQA(content string) string {
	return content
}

// stripFence removes a leading markdown code fence. The opening line (with
// any language tag) is dropped and the body ends at the first later line that
// is exactly a closing fence. An unterminated fence keeps everything after the
// opening line.
func stripFence(s string) string {
	if !strings.HasPrefix(s, fence) {
		return s
	}
	lines := strings.Split(s, "\n")
	end := len(lines)
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r") == fence {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// parseStrict parses the whole body as a JSON object.
func parseStrict(body string) (Result, bool) {
	return decodeResult([]byte(body))
}

// parseBraceSpan parses the text between the first '{' and the last '}'.
// This is a greedy span, not a balanced-brace scan: braces in prose around
// the object will make the span invalid and the stage fail.
func parseBraceSpan(body string) (Result, bool) {
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return Result{}, false
	}
	return decodeResult([]byte(body[start : end+1]))
}

type rawResult struct {
	Summary  *string      `json:"summary"`
	Comments []rawComment `json:"comments"`
}

type rawComment struct {
	Path     string          `json:"path"`
	Line     json.RawMessage `json:"line"`
	Severity string          `json:"severity"`
	Body     string          `json:"body"`
}

func decodeResult(data []byte) (Result, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Result{}, false
	}
	var raw rawResult
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Result{}, false
	}

	r := Result{Summary: DefaultSummary, Comments: make([]Comment, 0, len(raw.Comments))}
	if raw.Summary != nil {
		r.Summary = *raw.Summary
	}
	for _, rc := range raw.Comments {
		r.Comments = append(r.Comments, Comment{
			Path:     rc.Path,
			Line:     parseLine(rc.Line),
			Severity: Severity(rc.Severity),
			Body:     rc.Body,
		})
	}
	return r, true
}

// parseLine accepts a JSON number or a quoted number. Anything else, and any
// value that is not a positive line number fitting in 32 bits, is 0.
func parseLine(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		if n < 1 {
			return 0
		}
		return int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || f < 1 || f > math.MaxInt32 {
			return 0
		}
		return int(f)
	}
	return 0
}
