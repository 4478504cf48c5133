package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/prbot/internal/review"
)

// Default artifact names, read back by the post step.
const (
	DefaultCommentsFile = "review_comments.json"
	DefaultSummaryFile  = "review_comment.txt"
	DefaultQAFile       = "qa_comment.txt"
	DefaultPRFile       = "pr_draft.json"
)

// FileEmitter writes run artifacts into Dir. It implements review.Emitter.
type FileEmitter struct {
	Dir          string
	CommentsFile string
	SummaryFile  string
	QAFile       string
	PRFile       string
	// SARIFFile is optional; empty disables SARIF output.
	SARIFFile   string
	ToolVersion string
}

// Emit writes the artifacts for o and returns their paths in write order.
func (e *FileEmitter) Emit(o *review.Outcome) ([]string, error) {
	if o.Kind == review.KindPR {
		path := e.path(e.PRFile, DefaultPRFile)
		if err := writeFile(path, func(w io.Writer) error {
			return WriteDraftJSON(w, o.Draft)
		}); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	if o.Kind == review.KindQA {
		path := e.path(e.QAFile, DefaultQAFile)
		if err := writeFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, o.Markdown)
			return err
		}); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string

	commentsPath := e.path(e.CommentsFile, DefaultCommentsFile)
	if err := writeFile(commentsPath, func(w io.Writer) error {
		return WriteCommentsJSON(w, o.Result.Comments)
	}); err != nil {
		return paths, err
	}
	paths = append(paths, commentsPath)

	summaryPath := e.path(e.SummaryFile, DefaultSummaryFile)
	if err := writeFile(summaryPath, func(w io.Writer) error {
		return WriteReviewMarkdown(w, o)
	}); err != nil {
		return paths, err
	}
	paths = append(paths, summaryPath)

	if e.SARIFFile != "" {
		sarifPath := e.path(e.SARIFFile, "")
		if err := writeFile(sarifPath, func(w io.Writer) error {
			return WriteSARIF(w, o, e.ToolVersion)
		}); err != nil {
			return paths, err
		}
		paths = append(paths, sarifPath)
	}

	return paths, nil
}

func (e *FileEmitter) path(name, def string) string {
	if name == "" {
		name = def
	}
	if filepath.IsAbs(name) || e.Dir == "" {
		return name
	}
	return filepath.Join(e.Dir, name)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
