// Package gitctx gathers changed-file context from a local git repository:
// per-file patches with add/remove counts, staged file lists, combined
// range diffs, and owner/repo detection from the origin remote.
package gitctx
