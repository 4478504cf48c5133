package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/config"
	"github.com/dshills/prbot/internal/gitctx"
	"github.com/dshills/prbot/internal/github"
	"github.com/dshills/prbot/internal/output"
	"github.com/dshills/prbot/internal/providers"
	"github.com/dshills/prbot/internal/review"
)

var (
	flagPRDryRun bool
	flagPRPush   bool
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Draft and open a pull request for the current branch",
	Long: "Ask the model for a pull request title and body from the commits, diff stat and diff " +
		"of the current branch against the base, then create the pull request or update the open " +
		"one. Writes pr_draft.json. Requires GITHUB_TOKEN (or GH_TOKEN) unless --dry-run is set.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log, ok := loadConfig(cmd, buildOverrides())
		if !ok {
			return
		}
		log = log.With("kind", string(review.KindPR))

		apiKey, err := config.ResolveCredential(cfg.Provider)
		if err != nil {
			fail(log, "cannot call the model", err)
			return
		}

		ctx := cmd.Context()
		changes, err := gitctx.CollectBranch(ctx, "", cfg.BaseRef)
		if errors.Is(err, gitctx.ErrNoCommits) {
			log.Warn("no new commits against base; no pull request drafted", "branch", changes.Branch, "base", cfg.BaseRef)
			return
		}
		if err != nil {
			fail(log, "collecting branch changes", err)
			return
		}
		if changes.Truncated {
			log.Info("diff sample truncated", "max_bytes", gitctx.MaxDiffSample)
		}
		log = log.With("branch", changes.Branch)

		// GitHub is resolved before the model call so a misconfigured
		// repository costs nothing.
		var publisher *github.DraftPublisher
		if !flagPRDryRun {
			client, ok := newGitHubClient(cmd, log)
			if !ok {
				return
			}
			if !gitctx.RemoteBranchExists(ctx, "", changes.Branch) {
				if !flagPRPush {
					fail(log, "branch is not on origin", fmt.Errorf("push %s first or pass --push", changes.Branch))
					return
				}
				if err := gitctx.PushBranch(ctx, ""); err != nil {
					fail(log, "pushing branch", err)
					return
				}
				log.Info("pushed branch to origin")
			}
			publisher = &github.DraftPublisher{
				API:    client,
				Head:   changes.Branch,
				Base:   gitctx.BaseBranch(cfg.BaseRef),
				Logger: log.With("repo", client.Owner+"/"+client.Repo),
			}
		}

		gen, err := newGenerator(cfg, apiKey)
		if err != nil {
			fail(log, "creating provider", err)
			return
		}

		em := &output.FileEmitter{Dir: cfg.Output.Dir, PRFile: cfg.Output.PRFile, ToolVersion: version}
		out, artifacts, err := review.Run(ctx, review.Options{
			Kind:          review.KindPR,
			Language:      cfg.Language,
			RedactSecrets: cfg.Privacy.RedactSecrets,
			RedactPaths:   cfg.Privacy.RedactPaths,
			PR: review.PRContext{
				Branch:   changes.Branch,
				Commits:  changes.Commits,
				DiffStat: changes.DiffStat,
			},
			Logger: log,
		}, changes.Diff, gen, em)
		if errors.Is(err, gitctx.ErrEmptyDiff) {
			log.Warn("commits carry no diff; no pull request drafted")
			return
		}
		if err != nil {
			if providers.IsAuthError(err) {
				log.Error("the provider rejected the API key", "provider", cfg.Provider)
			}
			fail(log, "drafting pull request", err)
			return
		}
		log.Debug("draft written", "artifacts", artifacts, "llm_ms", out.LLMMs)

		w := cmd.OutOrStdout()
		if publisher == nil {
			fmt.Fprintf(w, "Title: %s\n\n%s\n", out.Draft.Title, out.Draft.Body)
			return
		}

		res, err := publisher.Publish(ctx, out.Draft)
		if err != nil {
			fail(log, "publishing pull request", err)
			return
		}
		verb := "Updated"
		if res.Created {
			verb = "Created"
		}
		fmt.Fprintf(w, "%s PR #%d: %s\n", verb, res.Number, res.URL)
	},
}

func init() {
	prCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (gemini, openai)")
	prCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	prCmd.Flags().StringVar(&flagBase, "base", "", "Base ref the branch is compared against (default origin/main)")
	prCmd.Flags().StringVar(&flagLanguage, "language", "", "Language of the title and body")
	prCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for pr_draft.json")
	prCmd.Flags().BoolVar(&flagRedact, "redact", false, "Redact secrets from the diff before sending it")
	prCmd.Flags().BoolVar(&flagPRDryRun, "dry-run", false, "Print the draft instead of creating or updating the pull request")
	prCmd.Flags().BoolVar(&flagPRPush, "push", false, "Push the branch to origin when it is not there yet")
}
