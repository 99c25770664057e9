// Package output formats pre-review reports for display or machine
// consumption.
//
// Four formats are supported:
//   - text: human-readable terminal output with color (default)
//   - json: full structured JSON report
//   - markdown: PR-comment body with collapsible sections and the managed
//     comment marker for idempotent posting
//   - sarif: SARIF v2.1.0 of the quality-gate issues for GitHub code
//     scanning
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteReport] to handle destination selection (file or stdout).
package output
