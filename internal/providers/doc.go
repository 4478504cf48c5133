// Package providers turns one prompt into one model response.
//
// A [Generator] wraps a single hosted model. Gemini (generateContent) and
// OpenAI-compatible chat completions are supported; [New] picks one by name
// and [Canonical] folds aliases such as "google". Each Generate call is a
// single HTTP request with no retry, and Close releases the idle connections
// once the run is over.
//
// Token counts are decoded from either response shape (usageMetadata or
// usage) into [Usage]. A 200 response without content is not an error: the
// text is empty and [Response].BlockReason says why, so callers degrade
// instead of failing. Rejected credentials surface as [AuthError].
//
// Tests point providers at an httptest server through [WithBaseURL] or
// [WithHTTPClient].
package providers
