// Package api defines the caller-facing recommendation surface shared by the
// CLI and the HTTP server.
//
// # Key Types
//
// RecommendationService: composes catalog lookups with poster resolution and
// returns transport-friendly DTOs.
//
// Recommendation: title, movie id, similarity score, and poster URL for one
// neighbour of the queried title.
//
// PosterView/CacheEntry: poster resolution results and cache records.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Timestamps use RFC3339
// with milliseconds. Poster failures never surface as errors; callers see the
// placeholder URL and the outcome label instead.
package api
