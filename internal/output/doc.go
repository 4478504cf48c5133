// Package output turns a finished run into artifacts.
//
// For a review run [FileEmitter] writes review_comments.json (the comment
// array the post step reads) and review_comment.txt (the markdown summary with
// per-severity counts, a collapsible per-file breakdown and a cost line), plus
// an optional SARIF file. For a QA run it writes qa_comment.txt verbatim, and for
// a pull request draft pr_draft.json.
//
// [Pricing] is the per-model rate table shared with the models command, and
// [WriteRunSummary] prints the short stdout summary.
package output
