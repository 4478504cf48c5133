package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/prbot/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEmitter_Review(t *testing.T) {
	dir := t.TempDir()
	e := &FileEmitter{Dir: dir}

	paths, err := e.Emit(sampleOutcome())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, DefaultCommentsFile),
		filepath.Join(dir, DefaultSummaryFile),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var comments []review.Comment
	require.NoError(t, json.Unmarshal(data, &comments))
	assert.Len(t, comments, 3)
	assert.Equal(t, "b.go", comments[0].Path)

	summary, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(summary), ReviewTitle)
}

func TestFileEmitter_EmptyCommentsWritesArray(t *testing.T) {
	dir := t.TempDir()
	e := &FileEmitter{Dir: dir}

	o := &review.Outcome{Kind: review.KindReview, Result: review.Result{Summary: "ok"}}
	paths, err := e.Emit(o)
	require.NoError(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestFileEmitter_QA(t *testing.T) {
	dir := t.TempDir()
	e := &FileEmitter{Dir: dir, QAFile: "out/qa.md"}

	md := "## 🧪 QA test scenarios\n- [ ] **Login works**\n"
	paths, err := e.Emit(&review.Outcome{Kind: review.KindQA, Markdown: md})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "out", "qa.md"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, md, string(data))

	_, err = os.Stat(filepath.Join(dir, DefaultCommentsFile))
	assert.True(t, os.IsNotExist(err), "QA run must not write review artifacts")
}

func TestFileEmitter_SARIF(t *testing.T) {
	dir := t.TempDir()
	e := &FileEmitter{Dir: dir, SARIFFile: "review.sarif", ToolVersion: "1.2.3"}

	paths, err := e.Emit(sampleOutcome())
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "review.sarif"), paths[2])
}

func TestWriteCommentsJSON_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCommentsJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteRunSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRunSummary(&buf, sampleOutcome(), []string{"review_comments.json"}, false))
	out := buf.String()
	assert.Contains(t, out, "Files changed: 3")
	assert.Contains(t, out, "Comments: 3 (2 critical, 1 suggestion, 0 nitpick)")
	assert.Contains(t, out, "Artifacts: review_comments.json")
	assert.NotContains(t, out, "\x1b[", "unstyled output must not contain ANSI escapes")
}

func TestWriteRunSummary_QA(t *testing.T) {
	var buf bytes.Buffer
	o := &review.Outcome{Kind: review.KindQA, FilesChanged: 1, Markdown: "abc"}
	require.NoError(t, WriteRunSummary(&buf, o, nil, false))
	assert.Contains(t, buf.String(), "QA scenarios: 3 bytes")
}

func TestFileEmitter_PR(t *testing.T) {
	dir := t.TempDir()
	e := &FileEmitter{Dir: dir}

	o := &review.Outcome{Kind: review.KindPR, Draft: review.PRDraft{Title: "feat: <login>", Body: "## Summary\n- a & b"}}
	paths, err := e.Emit(o)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, DefaultPRFile)}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "feat: <login>", "HTML characters are not escaped")
	var got review.PRDraft
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, o.Draft, got)
	assert.NoFileExists(t, filepath.Join(dir, DefaultCommentsFile))
}

func TestWriteRunSummary_PR(t *testing.T) {
	var buf bytes.Buffer
	o := &review.Outcome{Kind: review.KindPR, FilesChanged: 2, Draft: review.PRDraft{Title: "fix: x"}}
	require.NoError(t, WriteRunSummary(&buf, o, nil, false))
	assert.Contains(t, buf.String(), "Title: fix: x")
	assert.NotContains(t, buf.String(), "Comments:")
}
