// Package analysis implements the PR analyzers: intent classification,
// impact prediction, the quality gate, cognitive complexity scoring, and
// the combined pre-review report. Each analyzer prefers an AI provider
// when one is configured and degrades to deterministic heuristics when
// the provider is unavailable or fails.
package analysis
