// Package cache stores completion responses on disk so repeated analysis of
// the same diff does not re-bill the provider.
//
// Each entry is a JSON file named by the SHA-256 of its key; BuildCacheKey
// derives the key from provider, model, and prompt, so a model switch never
// serves stale output. Entries past their TTL are dropped on read. The
// default directory is $XDG_CACHE_HOME/pr-companion or the platform
// equivalent.
package cache
