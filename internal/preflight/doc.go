// Package preflight provides readiness checks for the catalog artifact, the
// writable directories, the poster cache, and TMDB credentials.
//
// The CLI "reelmatch status" command runs RunAll and renders each Result.
// Checks never retry: a single failed probe is reported as-is so the operator
// sees the real state of the dependency.
package preflight
