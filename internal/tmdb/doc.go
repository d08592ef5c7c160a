// Package tmdb implements the GET-only TMDB movie details client used by the
// poster resolver.
//
// Every attempt waits on a provider-wide token bucket, runs under its own
// timeout, and is classified into a services sentinel. Rate limits, server
// errors, timeouts, and connection failures are retried with exponential
// backoff; everything else fails on the first attempt.
package tmdb
