// Package redact strips secrets from text before it leaves the process.
//
// Secrets removes matches of a fixed rule table (API keys, AWS credentials,
// bearer tokens, JWTs, private key headers, GitHub/Slack/Anthropic/OpenAI/
// Google tokens, and credential assignments) and replaces each with
// [REDACTED]. Content additionally blanks whole files whose paths match the
// configured privacy globs, for files like .env that are secrets end to end.
package redact
