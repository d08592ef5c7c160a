// Package services defines shared utilities consumed by the catalog, poster
// resolver, and the outer CLI and HTTP surfaces.
//
// Key responsibilities:
//   - Context helpers that stamp movie IDs, operation names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and FailureClass which
//     turns an error into the short label written to diagnostics.
//
// Use these helpers when wiring new components so error classification and
// log fields stay uniform.
package services
