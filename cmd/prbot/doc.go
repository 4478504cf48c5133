// Prbot is a CI-oriented CLI that reviews pull request diffs with LLM providers.
//
// It reads a diff from stdin (or runs git diff against a base ref), asks the
// model for a line-anchored code review or a QA checklist, and writes the
// result to files that a later step posts to the pull request.
//
// Usage:
//
//	git diff origin/main...HEAD | prbot review   # write review_comments.json and review_comment.txt
//	git diff origin/main...HEAD | prbot qa       # write qa_comment.txt
//	prbot pr --push                              # draft and open the PR for this branch
//	prbot post review                            # post the review to the current PR
//	prbot post qa                                # post the QA checklist
//	prbot render review_comment.txt              # preview an artifact in the terminal
//	prbot workflow                               # generate .github/workflows/prbot.yml
//
// See https://github.com/dshills/prbot for full documentation.
package main
