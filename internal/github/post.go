package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/prbot/internal/review"
)

// Review events.
const (
	EventComment        = "COMMENT"
	EventRequestChanges = "REQUEST_CHANGES"
)

// API is the subset of Client the posting logic needs.
type API interface {
	HeadSHA(ctx context.Context, number int) (string, error)
	ListFiles(ctx context.Context, number int) ([]ChangedFile, error)
	CreateReview(ctx context.Context, number int, sha, event, body string, comments []InlineComment) (int64, error)
	CreateReviewComment(ctx context.Context, number int, sha string, cm InlineComment) error
	CreateIssueComment(ctx context.Context, number int, body string) error
}

// Poster publishes run artifacts to a pull request.
type Poster struct {
	API    API
	Number int
	DryRun bool
	Logger *slog.Logger
}

// ReviewReport summarises what PostReview did.
type ReviewReport struct {
	Event    string
	Posted   int
	Skipped  int
	Fallback bool
	ReviewID int64
}

func (p *Poster) log() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// PostReview anchors comments to added lines of the pull request and submits
// them as one review. body is the review summary; when empty a short fallback
// body is used. If the review cannot be created each comment is posted
// individually instead.
func (p *Poster) PostReview(ctx context.Context, comments []review.Comment, body string) (ReviewReport, error) {
	log := p.log()
	var rep ReviewReport

	if len(comments) == 0 {
		log.Info("no inline comments to post")
		return rep, nil
	}

	sha, err := p.API.HeadSHA(ctx, p.Number)
	if err != nil {
		return rep, err
	}
	files, err := p.API.ListFiles(ctx, p.Number)
	if err != nil {
		return rep, err
	}

	added := AddedLinesByFile(files, log)
	inline := AnchorComments(comments, added, log)
	rep.Skipped = len(comments) - len(inline)

	if len(inline) == 0 {
		log.Info("no comment could be anchored to an added line; review not created")
		return rep, nil
	}

	rep.Event = EventComment
	if review.HasCritical(comments) {
		rep.Event = EventRequestChanges
	}
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("🤖 AI code review left %d inline comments.", len(inline))
	}

	if p.DryRun {
		for _, c := range inline {
			log.Info("dry run: would post comment", "path", c.Path, "line", c.Line)
		}
		log.Info("dry run: would create review", "event", rep.Event, "comments", len(inline))
		rep.Posted = len(inline)
		return rep, nil
	}

	id, err := p.API.CreateReview(ctx, p.Number, sha, rep.Event, body, inline)
	if err == nil {
		rep.ReviewID = id
		rep.Posted = len(inline)
		log.Info("review created", "id", id, "event", rep.Event, "comments", len(inline))
		return rep, nil
	}

	log.Error("creating review failed, posting comments individually", "error", err)
	rep.Fallback = true
	for _, c := range inline {
		if err := p.API.CreateReviewComment(ctx, p.Number, sha, c); err != nil {
			log.Warn("posting comment failed", "path", c.Path, "line", c.Line, "error", err)
			rep.Skipped++
			continue
		}
		rep.Posted++
	}
	return rep, nil
}

// PostQA posts the QA checklist as a single pull request comment. It reports
// false without posting when the checklist is empty.
func (p *Poster) PostQA(ctx context.Context, markdown string) (bool, error) {
	log := p.log()
	if strings.TrimSpace(markdown) == "" {
		log.Warn("QA checklist is empty; nothing posted")
		return false, nil
	}
	if p.DryRun {
		log.Info("dry run: would post QA comment", "bytes", len(markdown))
		return true, nil
	}
	if err := p.API.CreateIssueComment(ctx, p.Number, markdown); err != nil {
		return false, err
	}
	log.Info("QA comment posted", "pr", p.Number)
	return true, nil
}

// AddedLinesByFile maps each added or modified file to its added lines.
// Files whose patch cannot be parsed are left out.
func AddedLinesByFile(files []ChangedFile, log *slog.Logger) map[string][]int {
	m := make(map[string][]int)
	for _, f := range files {
		if f.Status != "added" && f.Status != "modified" {
			continue
		}
		lines, err := AddedLines(f.Patch)
		if err != nil {
			log.Warn("skipping unparseable patch", "path", f.Filename, "error", err)
			continue
		}
		m[f.Filename] = lines
	}
	return m
}

// AnchorComments snaps every comment onto an added line of its file and
// formats its body. Comments on files without added lines are dropped.
func AnchorComments(comments []review.Comment, added map[string][]int, log *slog.Logger) []InlineComment {
	var out []InlineComment
	for _, c := range comments {
		line, ok := Snap(added[c.Path], c.Line)
		if !ok {
			log.Warn("no added lines for file; comment skipped", "path", c.Path, "line", c.Line)
			continue
		}
		if line != c.Line {
			log.Debug("comment moved to nearest added line", "path", c.Path, "requested", c.Line, "line", line)
		}
		out = append(out, InlineComment{Path: c.Path, Line: line, Body: FormatComment(c)})
	}
	return out
}

// FormatComment renders an inline comment body with its severity marker.
func FormatComment(c review.Comment) string {
	sev := c.Severity
	if sev == "" {
		sev = review.SeveritySuggestion
	}
	return fmt.Sprintf("%s **[%s]**\n\n%s", review.SeverityIcon(sev), strings.ToUpper(string(sev)), c.Body)
}
