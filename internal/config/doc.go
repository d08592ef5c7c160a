// Package config loads, normalizes, and validates reelmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TMDB_API_KEY environment
// fallback. An absent API key is a supported configuration: poster lookups
// degrade to the placeholder image instead of failing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
