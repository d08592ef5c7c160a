package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. A missing TMDB API key is a
// valid state: the poster resolver degrades to placeholders.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validatePosters(); err != nil {
		return err
	}
	if c.Recommend.DefaultK <= 0 {
		return errors.New("recommend.default_k must be positive")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTMDB() error {
	for key, value := range map[string]string{
		"tmdb.base_url":        c.TMDB.BaseURL,
		"tmdb.image_base_url":  c.TMDB.ImageBaseURL,
		"tmdb.placeholder_url": c.TMDB.PlaceholderURL,
	} {
		if err := validateAbsoluteURL(key, value); err != nil {
			return err
		}
	}
	if err := ensurePositiveMap(map[string]int{
		"tmdb.request_timeout_seconds": c.TMDB.RequestTimeoutSeconds,
		"tmdb.max_attempts":            c.TMDB.MaxAttempts,
	}); err != nil {
		return err
	}
	if c.TMDB.BackoffFactorSeconds < 0 {
		return errors.New("tmdb.backoff_factor_seconds must be >= 0")
	}
	if c.TMDB.RateLimitPerSecond < 0 {
		return errors.New("tmdb.rate_limit_per_second must be >= 0 (0 disables the limit)")
	}
	return nil
}

func (c *Config) validatePosters() error {
	if c.Posters.Concurrency <= 0 {
		return errors.New("posters.concurrency must be positive")
	}
	if c.Posters.PersistentCache && strings.TrimSpace(c.Posters.CachePath) == "" {
		return errors.New("posters.cache_path must be set when posters.persistent_cache is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q (use debug, info, warn, or error)", c.Logging.Level)
	}
}

func validateAbsoluteURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
