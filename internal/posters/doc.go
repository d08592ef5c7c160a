// Package posters resolves TMDB movie ids to display poster URLs.
//
// Resolution never fails from the caller's point of view: cache hits return
// immediately, misses are fetched from TMDB after a politeness delay, and any
// failure degrades to the placeholder image. Every outcome, placeholders
// included, is cached so a movie is fetched at most once per cache lifetime.
// Batches can be resolved with bounded parallelism while keeping one network
// request in flight per movie.
package posters
