// Package github is the gateway to the GitHub REST API for pull-request
// analysis: fetching PR metadata, changed files, and raw diffs, and writing
// results back as a managed comment and label set.
//
// Requests authenticate with an OAuth2 token and wait out secondary rate
// limits. The report comment is idempotent: it carries a hidden HTML marker
// and repeated runs update the existing comment in place. Label writes only
// touch the managed label families (tier, intent, risk), leaving all other
// labels on the pull request alone.
package github
