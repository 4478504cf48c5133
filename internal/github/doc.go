// Package github publishes prbot artifacts to a pull request.
//
// Review comments are validated against an embedded JSON schema, anchored to
// added lines parsed from each file patch and submitted as one review, which
// requests changes when any comment is critical. When the review call fails
// the comments are posted one by one. QA checklists become a single PR comment.
// A drafted title and body either update the branch's open pull request or
// open a new one.
package github
