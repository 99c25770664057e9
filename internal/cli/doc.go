// Package cli wires together the Cobra command tree for the pr-companion
// binary.
//
// It defines the root command and all subcommands (classify, impact,
// quality, score, review, comment, labels, config, cache, models, hook,
// version), binds flags, reads configuration, invokes the analyzers, and
// returns deterministic exit codes for CI gating.
package cli
