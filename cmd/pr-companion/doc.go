// Pr-companion analyzes GitHub pull requests and local change sets: it
// classifies the intent behind a change, predicts downstream impact, runs a
// quality gate, computes a tiered cognitive-complexity score, and posts or
// updates Markdown comments and managed labels on the PR.
//
// Usage:
//
//	pr-companion review --pr 123            # full pipeline, post comment + labels
//	pr-companion review --range main..HEAD  # full pipeline against local commits
//	pr-companion quality --staged           # quality gate on staged changes
//	pr-companion classify --pr 123          # intent classification only
//	pr-companion score                      # cognitive score and review tier
//	pr-companion hook install               # pre-push quality gate
//
// See https://github.com/emataei/pr-companion for full documentation.
package main
