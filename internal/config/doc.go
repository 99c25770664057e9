// Package config loads and merges pr-companion configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PRCOMPANION_PROVIDER, PRCOMPANION_MODEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/pr-companion/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config]. Repo-local scoring and labeling
// knobs live in a separate YAML [Policy] loaded with [LoadPolicy].
package config
