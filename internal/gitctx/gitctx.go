package gitctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/mattn/go-isatty"
)

// DefaultBaseRef is the upstream reference diffed against when no diff is
// piped in.
const DefaultBaseRef = "origin/main"

// ErrEmptyDiff reports that there is nothing to review. Callers treat it as a
// successful no-op rather than a failure.
var ErrEmptyDiff = errors.New("no changes to review")

// Source describes where a run's diff comes from.
type Source struct {
	// Stdin is read in full when Piped is true.
	Stdin io.Reader
	Piped bool
	// BaseRef is compared against HEAD with a three-dot range.
	BaseRef string
	// Dir is the working directory for git. Empty means the process cwd.
	Dir string
}

// isTerminal is replaceable in tests.
var isTerminal = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// StdinPiped reports whether f carries piped or redirected input. A
// non-terminal stdin that is neither a pipe nor a regular file (CI runners
// often attach /dev/null or a socket) is not considered piped.
func StdinPiped(f *os.File) bool {
	if f == nil || isTerminal(f.Fd()) {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	mode := info.Mode()
	return mode&os.ModeNamedPipe != 0 || mode.IsRegular()
}

// Acquire returns the diff text for the current run. It returns ErrEmptyDiff
// when the diff is empty or whitespace only.
func Acquire(ctx context.Context, src Source) (string, error) {
	var diff string
	if src.Piped && src.Stdin != nil {
		data, err := io.ReadAll(src.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading diff from stdin: %w", err)
		}
		diff = string(data)
	} else {
		base := src.BaseRef
		if base == "" {
			base = DefaultBaseRef
		}
		out, err := gitOutput(ctx, src.Dir, "diff", base+"...HEAD")
		if err != nil {
			return "", fmt.Errorf("git diff %s...HEAD: %w", base, err)
		}
		diff = out
	}

	if strings.TrimSpace(diff) == "" {
		return "", ErrEmptyDiff
	}
	return diff, nil
}

// changedFileRe matches a diff header, exactly one intermediate line (usually
// "index ..."), then the old-side path. Renames, binary files, new files and
// no-prefix diffs do not match and are undercounted.
var changedFileRe = regexp.MustCompile(`(?m)^diff --git.*\n.*\n--- a/(.+)$`)

// CountChangedFiles returns the number of distinct old-side paths in diff.
func CountChangedFiles(diff string) int {
	seen := make(map[string]struct{})
	for _, m := range changedFileRe.FindAllStringSubmatch(diff, -1) {
		seen[strings.TrimRight(m[1], "\r")] = struct{}{}
	}
	return len(seen)
}

// ChangedFiles returns the new-side paths of diff in first-seen order.
func ChangedFiles(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			f := strings.TrimRight(strings.TrimPrefix(line, "+++ b/"), "\r")
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta(ctx context.Context, dir string) (RepoMeta, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the git remote origin URL.
func DetectRepo(ctx context.Context, dir string) (owner, repo string, err error) {
	out, err := gitOutput(ctx, dir, "remote", "get-url", "origin")
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(out))
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
