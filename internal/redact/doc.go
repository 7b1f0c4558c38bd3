// Package redact removes secrets from file contents before they are sent to
// the analysis endpoint.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, and provider-specific tokens (Mistral, Anthropic, OpenAI, GitHub,
// Slack).
//
// Path-based redaction is also supported: files whose paths match configured
// glob patterns have their entire content replaced with [REDACTED] rather than
// being scanned line by line.
package redact
