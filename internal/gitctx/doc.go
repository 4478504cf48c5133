// Package gitctx obtains the pull-request diff for a run and extracts the
// little structure prbot needs from it.
//
// [Acquire] reads piped stdin when present and otherwise shells out to
// git diff against the configured base reference. [CountChangedFiles] is a
// best-effort header scan used only for reporting, and [DetectRepo] resolves
// owner/repo from the origin remote for the post step. [CollectBranch]
// gathers the commits, diff stat and a capped diff sample of the current
// branch for pull request drafting.
package gitctx
