// Package redact removes secrets from a diff before it is sent to a model
// provider. Redaction is opt-in; by default prbot sends the diff verbatim.
//
// Detection uses regex heuristics for common secret shapes: API keys, JWTs,
// private keys, AWS credentials, bearer tokens, connection strings with
// inline passwords and provider tokens (Google, OpenAI, GitHub, Slack).
//
// Path-based redaction is also supported: diff sections for files whose paths
// match configured glob patterns are replaced wholesale rather than scanned.
package redact
