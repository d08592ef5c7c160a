package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// dotEnvFile is read from the working directory before env fallbacks apply.
const dotEnvFile = ".env"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := loadDotEnv(); err != nil {
		return err
	}
	c.normalizeTMDB()
	if err := c.normalizePosters(); err != nil {
		return err
	}
	if c.Recommend.DefaultK <= 0 {
		c.Recommend.DefaultK = defaultRecommendK
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Catalog) == "" {
		c.Paths.Catalog = defaultCatalogPath
	}
	if c.Paths.Catalog, err = expandPath(c.Paths.Catalog); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.PlaceholderURL = strings.TrimSpace(c.TMDB.PlaceholderURL)
	if c.TMDB.PlaceholderURL == "" {
		c.TMDB.PlaceholderURL = defaultPlaceholderURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.RequestTimeoutSeconds <= 0 {
		c.TMDB.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.TMDB.MaxAttempts <= 0 {
		c.TMDB.MaxAttempts = defaultMaxAttempts
	}
	if c.TMDB.PolitenessDelayMillis < 0 {
		c.TMDB.PolitenessDelayMillis = 0
	}
	if c.TMDB.MaxRetryAfterSeconds < 0 {
		c.TMDB.MaxRetryAfterSeconds = 0
	}
}

func (c *Config) normalizePosters() error {
	if c.Posters.Concurrency <= 0 {
		c.Posters.Concurrency = defaultPosterConcurrency
	}
	c.Posters.CachePath = strings.TrimSpace(c.Posters.CachePath)
	if c.Posters.CachePath == "" {
		c.Posters.CachePath = filepath.Join(c.Paths.CacheDir, defaultPosterCacheFile)
	}
	var err error
	if c.Posters.CachePath, err = expandPath(c.Posters.CachePath); err != nil {
		return fmt.Errorf("posters.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// loadDotEnv exports variables from an optional .env file. Variables already
// present in the environment keep their values.
func loadDotEnv() error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotEnvFile, err)
	}
	return nil
}
