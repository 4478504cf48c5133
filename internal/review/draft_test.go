package review

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDraft(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  PRDraft
	}{
		{
			name:  "plain json",
			input: `{"title":"feat: add login","body":"## Summary\n- login"}`,
			want:  PRDraft{Title: "feat: add login", Body: "## Summary\n- login"},
		},
		{
			name:  "fenced",
			input: "```json\n{\"title\":\"fix: nil check\",\"body\":\"b\"}\n```",
			want:  PRDraft{Title: "fix: nil check", Body: "b"},
		},
		{
			name:  "prose around object",
			input: "Here you go:\n{\"title\":\"docs: readme\",\"body\":\"b\"}\nThanks",
			want:  PRDraft{Title: "docs: readme", Body: "b"},
		},
		{
			name:  "raw newlines inside strings",
			input: "{\"title\":\"chore: deps\",\"body\":\"## Summary\n- bump\r\n- tidy\"}",
			want:  PRDraft{Title: "chore: deps", Body: "## Summary\n- bump\n\n- tidy"},
		},
		{
			name:  "escaped quote before newline",
			input: "{\"title\":\"fix: \\\"quoted\\\"\",\"body\":\"a\nb\"}",
			want:  PRDraft{Title: `fix: "quoted"`, Body: "a\nb"},
		},
		{
			name:  "title trimmed",
			input: `{"title":"  perf: cache  ","body":""}`,
			want:  PRDraft{Title: "perf: cache"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDraft(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDraft_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"I cannot write a pull request for this.",
		`{"title":"","body":"only a body"}`,
		`{"body":"no title"}`,
		`{"title": 5, "body": "b"}`,
	} {
		_, err := NormalizeDraft(input)
		assert.True(t, errors.Is(err, ErrUnparseableDraft), "input %q: err = %v", input, err)
	}
}

func TestNormalizeDraft_TitleCap(t *testing.T) {
	long := strings.Repeat("가", 120)
	d, err := NormalizeDraft(`{"title":"` + long + `","body":"b"}`)
	require.NoError(t, err)
	assert.Equal(t, MaxTitleRunes, utf8.RuneCountInString(d.Title))
}

func TestLinkIssue(t *testing.T) {
	tests := []struct {
		branch, body, want string
	}{
		{"issue-42", "body", "body\n\nFixes #42"},
		{"issue-42-login-form", "body", "body\n\nFixes #42"},
		{"issue-42", "Closes #42", "Closes #42"},
		{"issue-42x", "body", "body"},
		{"feature/issue-42", "body", "body"},
		{"main", "body", "body"},
	}
	for _, tt := range tests {
		got := LinkIssue(PRDraft{Title: "t", Body: tt.body}, tt.branch)
		assert.Equal(t, tt.want, got.Body, "branch %q", tt.branch)
	}
}
