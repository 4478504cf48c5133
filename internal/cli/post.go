package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/gitctx"
	"github.com/dshills/prbot/internal/github"
)

var (
	flagPostPR     int
	flagPostDryRun bool
	flagPostDir    string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post generated artifacts to a GitHub pull request",
	Long: "Post the files written by `prbot review` or `prbot qa` to a pull request. " +
		"Requires GITHUB_TOKEN; the PR number comes from --pr or GITHUB_EVENT_PATH and the " +
		"repository from GITHUB_REPOSITORY or the origin remote.",
}

var postReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Post review comments as one pull request review",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log, ok := loadConfig(cmd, postOverrides())
		if !ok {
			return
		}

		commentsPath := artifactPath(cfg.Output.Dir, cfg.Output.CommentsFile)
		data, err := os.ReadFile(commentsPath)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("comments file not found; nothing posted", "path", commentsPath)
			return
		}
		if err != nil {
			fail(log, "reading comments", err)
			return
		}

		comments, invalid, err := github.DecodeComments(data)
		if err != nil {
			fail(log, "decoding comments", err)
			return
		}
		for _, ic := range invalid {
			log.Warn("skipping invalid comment", "index", ic.Index, "error", ic.Err)
		}

		// A missing summary falls back to the generic review body.
		summary, err := os.ReadFile(artifactPath(cfg.Output.Dir, cfg.Output.SummaryFile))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("reading summary", "error", err)
		}

		poster, ok := newPoster(cmd, log)
		if !ok {
			return
		}
		rep, err := poster.PostReview(cmd.Context(), comments, string(summary))
		if err != nil {
			fail(log, "posting review", err)
			return
		}

		verb := "Posted"
		if flagPostDryRun {
			verb = "Would post"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d inline comments to PR #%d (%d skipped)", verb, rep.Posted, poster.Number, rep.Skipped)
		if rep.Event != "" {
			fmt.Fprintf(cmd.OutOrStdout(), ", event %s", rep.Event)
		}
		if rep.Fallback {
			fmt.Fprint(cmd.OutOrStdout(), ", posted individually")
		}
		fmt.Fprintln(cmd.OutOrStdout())
	},
}

var postQACmd = &cobra.Command{
	Use:   "qa",
	Short: "Post the QA checklist as a pull request comment",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log, ok := loadConfig(cmd, postOverrides())
		if !ok {
			return
		}

		qaPath := artifactPath(cfg.Output.Dir, cfg.Output.QAFile)
		data, err := os.ReadFile(qaPath)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("QA file not found; nothing posted", "path", qaPath)
			return
		}
		if err != nil {
			fail(log, "reading QA checklist", err)
			return
		}

		poster, ok := newPoster(cmd, log)
		if !ok {
			return
		}
		posted, err := poster.PostQA(cmd.Context(), string(data))
		if err != nil {
			fail(log, "posting QA comment", err)
			return
		}
		if posted && !flagPostDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "Posted QA checklist to PR #%d\n", poster.Number)
		}
	},
}

// artifactPath resolves an artifact name the same way the emitter does.
func artifactPath(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func postOverrides() map[string]string {
	m := make(map[string]string)
	if flagPostDir != "" {
		m["output.dir"] = flagPostDir
	}
	return m
}

// newPoster builds a Poster from the GitHub Actions environment.
func newPoster(cmd *cobra.Command, log *slog.Logger) (*github.Poster, bool) {
	number := flagPostPR
	if number <= 0 {
		n, err := github.PRNumberFromEvent(os.Getenv("GITHUB_EVENT_PATH"))
		if err != nil {
			fail(log, "resolving pull request number", err)
			return nil, false
		}
		number = n
	}

	client, ok := newGitHubClient(cmd, log)
	if !ok {
		return nil, false
	}

	return &github.Poster{
		API:    client,
		Number: number,
		DryRun: flagPostDryRun,
		Logger: log.With("repo", client.Owner+"/"+client.Repo, "pr", number),
	}, true
}

// newGitHubClient resolves the repository from GITHUB_REPOSITORY or the
// origin remote and authenticates with GITHUB_TOKEN (GH_TOKEN as fallback).
func newGitHubClient(cmd *cobra.Command, log *slog.Logger) (*github.Client, bool) {
	owner, repo, ok := github.RepoFromEnv()
	if !ok {
		var err error
		owner, repo, err = gitctx.DetectRepo(cmd.Context(), "")
		if err != nil {
			fail(log, "resolving repository (set GITHUB_REPOSITORY)", err)
			return nil, false
		}
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	client, err := github.NewClient(token, os.Getenv("GITHUB_API_URL"), owner, repo, nil)
	if err != nil {
		fail(log, "creating GitHub client", err)
		return nil, false
	}
	return client, true
}

func init() {
	postCmd.AddCommand(postReviewCmd)
	postCmd.AddCommand(postQACmd)

	for _, cmd := range []*cobra.Command{postReviewCmd, postQACmd} {
		cmd.Flags().IntVar(&flagPostPR, "pr", 0, "Pull request number (default: from GITHUB_EVENT_PATH)")
		cmd.Flags().BoolVar(&flagPostDryRun, "dry-run", false, "Log what would be posted without posting")
		cmd.Flags().StringVar(&flagPostDir, "output-dir", "", "Directory holding the generated artifacts")
	}
}
