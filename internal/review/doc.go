// Package review runs one pass of the pull request pipeline: it builds the
// prompt for a diff, sends it to a provider, coerces the reply into a Result
// (or QA markdown, or a pull request draft) and hands the Outcome to an
// Emitter.
//
// Model output is never trusted to be well formed. NormalizeReview tries a
// strict JSON parse of the fence-stripped body, then the greedy span between
// the first '{' and the last '}', and finally degrades to FailedResult.
// NormalizeDraft runs the same stages for a {title, body} object but fails
// instead of degrading.
package review
