package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dshills/prbot/internal/gitctx"
	"github.com/dshills/prbot/internal/providers"
	"github.com/dshills/prbot/internal/redact"
)

// Options carries every configuration value a run needs. Nothing inside the
// pipeline reads the process environment.
type Options struct {
	Kind          Kind
	Language      string
	Stack         string
	RedactSecrets bool
	// RedactPaths are glob patterns for files whose diff sections are
	// withheld entirely. Only consulted when RedactSecrets is set.
	RedactPaths []string
	// PR carries the branch context for KindPR runs.
	PR     PRContext
	Logger *slog.Logger
}

// PRContext describes the branch a pull request draft is written for.
type PRContext struct {
	Branch   string
	Commits  string
	DiffStat string
}

// Outcome is everything a run produced, ready for emission.
type Outcome struct {
	Kind         Kind
	Provider     string
	Model        string
	FilesChanged int
	Result       Result
	Markdown     string
	Draft        PRDraft
	Usage        Usage
	LLMMs        int64
}

// Emitter renders an Outcome into artifacts and returns their paths.
type Emitter interface {
	Emit(o *Outcome) ([]string, error)
}

// Run executes one pipeline pass: prompt, generate, normalize, emit. It takes
// ownership of gen and closes it before returning on every path. Review and
// QA runs always emit once the model answered; a KindPR run fails when no
// draft can be recovered.
func Run(ctx context.Context, opts Options, diff string, gen providers.Generator, em Emitter) (out *Outcome, artifacts []string, err error) {
	defer func() {
		if cerr := gen.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing provider: %w", cerr)
		}
	}()

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if strings.TrimSpace(diff) == "" {
		return nil, nil, gitctx.ErrEmptyDiff
	}

	kind := opts.Kind
	if kind == "" {
		kind = KindReview
	}

	out = &Outcome{
		Kind:         kind,
		Provider:     gen.Name(),
		Model:        gen.Model(),
		FilesChanged: gitctx.CountChangedFiles(diff),
	}

	promptDiff := diff
	if opts.RedactSecrets {
		var n int
		promptDiff, n = redact.Diff(promptDiff, opts.RedactPaths)
		if n > 0 {
			log.Info("redacted diff before sending", "redactions", n)
		}
	}

	system := SystemPrompt(kind, opts.Language)
	user := BuildUserPrompt(kind, PromptInput{
		Diff:     promptDiff,
		Stack:    opts.Stack,
		Files:    gitctx.ChangedFiles(diff),
		Branch:   opts.PR.Branch,
		Commits:  opts.PR.Commits,
		DiffStat: opts.PR.DiffStat,
	})
	prompt := CombinePrompt(system, user)

	log.Debug("calling provider",
		"provider", out.Provider,
		"model", out.Model,
		"prompt_bytes", len(prompt),
		"files_changed", out.FilesChanged,
	)

	llmStart := time.Now()
	resp, err := gen.Generate(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("provider generate: %w", err)
	}
	out.LLMMs = time.Since(llmStart).Milliseconds()
	out.Usage = Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
	if resp.Text == "" {
		log.Warn("provider returned no content", "block_reason", resp.BlockReason)
	}

	switch kind {
	case KindQA:
		out.Markdown = NormalizeQA(resp.Text)
	case KindPR:
		draft, err := NormalizeDraft(resp.Text)
		if err != nil {
			return nil, nil, fmt.Errorf("drafting pull request: %w", err)
		}
		out.Draft = LinkIssue(draft, opts.PR.Branch)
	default:
		out.Result = NormalizeReview(resp.Text)
		if out.Result.Summary == FailedSummary {
			log.Warn("model response could not be parsed as a review", "response_bytes", len(resp.Text))
		}
	}

	artifacts, err = em.Emit(out)
	if err != nil {
		return nil, nil, fmt.Errorf("emitting report: %w", err)
	}
	return out, artifacts, nil
}
