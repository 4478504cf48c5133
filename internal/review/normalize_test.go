package review

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReview(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{
			name:  "plain JSON",
			input: `{"summary":"ok","comments":[{"path":"a.go","line":3,"severity":"critical","body":"nil deref"}]}`,
			want: Result{Summary: "ok", Comments: []Comment{
				{Path: "a.go", Line: 3, Severity: SeverityCritical, Body: "nil deref"},
			}},
		},
		{
			name:  "json fence",
			input: "```json\n{\"summary\":\"fenced\",\"comments\":[]}\n```",
			want:  Result{Summary: "fenced", Comments: []Comment{}},
		},
		{
			name:  "bare fence with trailing prose",
			input: "```\n{\"summary\":\"s\",\"comments\":[]}\n```\nHope this helps!",
			want:  Result{Summary: "s", Comments: []Comment{}},
		},
		{
			name:  "prose around object",
			input: "Here is my review:\n{\"summary\":\"inner\",\"comments\":[]}\nThanks.",
			want:  Result{Summary: "inner", Comments: []Comment{}},
		},
		{
			name:  "missing summary",
			input: `{"comments":[{"path":"b.ts","line":1,"severity":"nitpick","body":"rename"}]}`,
			want: Result{Summary: DefaultSummary, Comments: []Comment{
				{Path: "b.ts", Line: 1, Severity: SeverityNitpick, Body: "rename"},
			}},
		},
		{
			name:  "missing comments",
			input: `{"summary":"nothing to say"}`,
			want:  Result{Summary: "nothing to say", Comments: []Comment{}},
		},
		{
			name:  "string and float line numbers",
			input: `{"summary":"s","comments":[{"path":"a","line":"42","severity":"suggestion","body":"x"},{"path":"a","line":7.0,"severity":"suggestion","body":"y"},{"path":"a","line":"n/a","severity":"suggestion","body":"z"}]}`,
			want: Result{Summary: "s", Comments: []Comment{
				{Path: "a", Line: 42, Severity: SeveritySuggestion, Body: "x"},
				{Path: "a", Line: 7, Severity: SeveritySuggestion, Body: "y"},
				{Path: "a", Line: 0, Severity: SeveritySuggestion, Body: "z"},
			}},
		},
		{
			name:  "unknown severity kept verbatim",
			input: `{"summary":"s","comments":[{"path":"a","line":1,"severity":"blocker","body":"x"}]}`,
			want: Result{Summary: "s", Comments: []Comment{
				{Path: "a", Line: 1, Severity: "blocker", Body: "x"},
			}},
		},
		{
			name:  "garbage",
			input: "I could not review this diff.",
			want:  FailedResult(),
		},
		{
			name:  "empty",
			input: "",
			want:  FailedResult(),
		},
		{
			name:  "braces in surrounding prose",
			input: "use {braces} like {\"summary\":\"s\",\"comments\":[]}",
			want:  FailedResult(),
		},
		{
			name:  "top-level array",
			input: `[{"path":"a","line":1}]`,
			want:  FailedResult(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeReview(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotNil(t, got.Comments)
		})
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`42`, 42},
		{`"17"`, 17},
		{`3.0`, 3},
		{`0`, 0},
		{`-5`, 0},
		{`"-5"`, 0},
		{`-2.5`, 0},
		{`1e30`, 0},
		{`99999999999`, 0},
		{`null`, 0},
		{`"n/a"`, 0},
		{``, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLine(json.RawMessage(tt.raw)), "line %s", tt.raw)
	}
}

func TestNormalizeReview_Idempotent(t *testing.T) {
	first := NormalizeReview("```json\n{\"summary\":\"s\",\"comments\":[{\"path\":\"x.go\",\"line\":\"9\",\"severity\":\"critical\",\"body\":\"b\"}]}\n```")

	data, err := json.Marshal(first)
	require.NoError(t, err)

	second := NormalizeReview(string(data))
	assert.Equal(t, first, second)
}

func TestNormalizeQA(t *testing.T) {
	md := "## 🧪 QA test scenarios\n- [ ] **Login works**\n"
	assert.Equal(t, md, NormalizeQA(md))
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"no fence", "no fence"},
		{"```json\nbody\n```", "body"},
		{"```\nline1\nline2\n```  \nafter", "line1\nline2"},
		{"```go\nunterminated\nstill here", "unterminated\nstill here"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFence(tt.in), "input %q", tt.in)
	}
}
