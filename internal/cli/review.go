package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/config"
	"github.com/dshills/prbot/internal/gitctx"
	"github.com/dshills/prbot/internal/manifest"
	"github.com/dshills/prbot/internal/output"
	"github.com/dshills/prbot/internal/providers"
	"github.com/dshills/prbot/internal/review"
)

// Shared pipeline flags
var (
	flagProvider  string
	flagModel     string
	flagBase      string
	flagLanguage  string
	flagOutputDir string
	flagSARIF     string
	flagRedact    bool
)

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (gemini, openai)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagBase, "base", "", "Base ref compared against HEAD when no diff is piped (default origin/main)")
	cmd.Flags().StringVar(&flagLanguage, "language", "", "Language of the generated review")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for the generated artifacts")
	cmd.Flags().StringVar(&flagSARIF, "sarif", "", "Also write a SARIF report to this file (review only)")
	cmd.Flags().BoolVar(&flagRedact, "redact", false, "Redact secrets from the diff before sending it")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagBase != "" {
		m["baseRef"] = flagBase
	}
	if flagLanguage != "" {
		m["language"] = flagLanguage
	}
	if flagOutputDir != "" {
		m["output.dir"] = flagOutputDir
	}
	if flagSARIF != "" {
		m["output.sarifFile"] = flagSARIF
	}
	if flagRedact {
		m["privacy.redactSecrets"] = "true"
	}
	return m
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review the pull request diff",
	Long: "Review the diff piped on stdin, or `git diff <base>...HEAD` when stdin is not piped. " +
		"Writes review_comments.json and review_comment.txt.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPipeline(cmd, review.KindReview)
	},
}

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "Generate a QA test checklist for the pull request diff",
	Long: "Ask the model for manual QA scenarios for the diff piped on stdin, or " +
		"`git diff <base>...HEAD` when stdin is not piped. Writes qa_comment.txt.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPipeline(cmd, review.KindQA)
	},
}

// stdinSource returns the command's input and whether it should be read as
// the diff.
func stdinSource(cmd *cobra.Command) (io.Reader, bool) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		return f, gitctx.StdinPiped(f)
	}
	return in, true
}

// runPipeline executes one review or QA run. Failures are reported on stderr
// and recorded in exitCode; an empty diff is a successful no-op.
func runPipeline(cmd *cobra.Command, kind review.Kind) {
	cfg, log, ok := loadConfig(cmd, buildOverrides())
	if !ok {
		return
	}
	log = log.With("kind", string(kind))

	apiKey, err := config.ResolveCredential(cfg.Provider)
	if err != nil {
		fail(log, "cannot call the model", err)
		return
	}

	ctx := cmd.Context()
	in, piped := stdinSource(cmd)
	diff, err := gitctx.Acquire(ctx, gitctx.Source{Stdin: in, Piped: piped, BaseRef: cfg.BaseRef})
	if errors.Is(err, gitctx.ErrEmptyDiff) {
		log.Warn("no changes to review; nothing written", "piped", piped, "base", cfg.BaseRef)
		return
	}
	if err != nil {
		fail(log, "acquiring diff", err)
		return
	}

	if meta, err := gitctx.GetRepoMeta(ctx, ""); err == nil {
		log.Debug("repository", "root", meta.Root, "branch", meta.Branch, "head", meta.Head)
	}

	stack := manifest.Load(".", cfg.ManifestPaths, cfg.StackKeys, log)
	log.Debug("project stack", "stack", stack.String())

	gen, err := newGenerator(cfg, apiKey)
	if err != nil {
		fail(log, "creating provider", err)
		return
	}

	em := &output.FileEmitter{
		Dir:          cfg.Output.Dir,
		CommentsFile: cfg.Output.CommentsFile,
		SummaryFile:  cfg.Output.SummaryFile,
		QAFile:       cfg.Output.QAFile,
		PRFile:       cfg.Output.PRFile,
		SARIFFile:    cfg.Output.SARIFFile,
		ToolVersion:  version,
	}

	out, artifacts, err := review.Run(ctx, review.Options{
		Kind:          kind,
		Language:      cfg.Language,
		Stack:         stack.String(),
		RedactSecrets: cfg.Privacy.RedactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
		Logger:        log,
	}, diff, gen, em)
	if err != nil {
		if providers.IsAuthError(err) {
			log.Error("the provider rejected the API key", "provider", cfg.Provider)
		}
		fail(log, "run failed", err)
		return
	}

	log.Info("run complete",
		"provider", out.Provider,
		"model", out.Model,
		"files_changed", out.FilesChanged,
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
		"llm_ms", out.LLMMs,
	)

	w := cmd.OutOrStdout()
	if err := output.WriteRunSummary(w, out, artifacts, isTTY(w)); err != nil {
		log.Warn("writing summary", "error", err)
	}
}

// newGenerator builds the configured provider, honouring providerURL.
func newGenerator(cfg config.Config, apiKey string) (providers.Generator, error) {
	var opts []providers.Option
	if cfg.ProviderURL != "" {
		opts = append(opts, providers.WithBaseURL(cfg.ProviderURL))
	}
	return providers.New(cfg.Provider, cfg.Model, apiKey, opts...)
}

func init() {
	addPipelineFlags(reviewCmd)
	addPipelineFlags(qaCmd)
}
