package gitctx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxDiffSample caps the diff sent along with a pull request draft request.
const MaxDiffSample = 24000

// ErrNoCommits reports that the branch has nothing ahead of its base.
var ErrNoCommits = errors.New("no new commits on branch")

// BranchChanges summarises a feature branch relative to its base.
type BranchChanges struct {
	Branch string
	// Commits holds one "- `<short sha>` <subject>" line per commit.
	Commits  string
	DiffStat string
	// Diff is the three-dot diff, cut to MaxDiffSample bytes.
	Diff      string
	Truncated bool
}

// CollectBranch gathers the commits, diff stat and diff sample of the current
// branch against baseRef. It returns ErrNoCommits when HEAD is not ahead.
func CollectBranch(ctx context.Context, dir, baseRef string) (BranchChanges, error) {
	if baseRef == "" {
		baseRef = DefaultBaseRef
	}

	branch, err := gitOutput(ctx, dir, "branch", "--show-current")
	if err != nil {
		return BranchChanges{}, fmt.Errorf("resolving current branch: %w", err)
	}
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return BranchChanges{}, fmt.Errorf("HEAD is detached; check out a branch first")
	}

	commits, err := gitOutput(ctx, dir, "log", "--format=- `%h` %s", baseRef+"..HEAD")
	if err != nil {
		return BranchChanges{}, fmt.Errorf("git log %s..HEAD: %w", baseRef, err)
	}
	commits = strings.TrimSpace(commits)
	if commits == "" {
		return BranchChanges{Branch: branch}, ErrNoCommits
	}

	stat, err := gitOutput(ctx, dir, "diff", "--stat", baseRef+"...HEAD")
	if err != nil {
		return BranchChanges{}, fmt.Errorf("git diff --stat %s...HEAD: %w", baseRef, err)
	}
	diff, err := gitOutput(ctx, dir, "diff", baseRef+"...HEAD")
	if err != nil {
		return BranchChanges{}, fmt.Errorf("git diff %s...HEAD: %w", baseRef, err)
	}

	sample, truncated := truncateUTF8(diff, MaxDiffSample)
	return BranchChanges{
		Branch:    branch,
		Commits:   commits,
		DiffStat:  strings.TrimRight(stat, "\n"),
		Diff:      sample,
		Truncated: truncated,
	}, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s, true
}

// BaseBranch turns a base ref such as "origin/main" into the branch name a
// pull request targets.
func BaseBranch(ref string) string {
	for _, prefix := range []string{"refs/remotes/origin/", "refs/heads/", "origin/"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix)
		}
	}
	return ref
}

// RemoteBranchExists reports whether origin/<branch> is known locally.
func RemoteBranchExists(ctx context.Context, dir, branch string) bool {
	_, err := gitOutput(ctx, dir, "rev-parse", "--verify", "--quiet", "refs/remotes/origin/"+branch)
	return err == nil
}

// PushBranch pushes HEAD to origin and sets the upstream.
func PushBranch(ctx context.Context, dir string) error {
	if _, err := gitOutput(ctx, dir, "push", "-u", "origin", "HEAD"); err != nil {
		return fmt.Errorf("git push -u origin HEAD: %w", err)
	}
	return nil
}
