package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	Catalog  string `toml:"catalog"`
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// TMDB contains configuration for The Movie Database API and the poster
// resolver's retry policy.
type TMDB struct {
	APIKey                string  `toml:"api_key"`
	BaseURL               string  `toml:"base_url"`
	ImageBaseURL          string  `toml:"image_base_url"`
	PlaceholderURL        string  `toml:"placeholder_url"`
	Language              string  `toml:"language"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
	MaxAttempts           int     `toml:"max_attempts"`
	BackoffFactorSeconds  float64 `toml:"backoff_factor_seconds"`
	PolitenessDelayMillis int     `toml:"politeness_delay_ms"`
	RateLimitPerSecond    float64 `toml:"rate_limit_per_second"`
	MaxRetryAfterSeconds  int     `toml:"max_retry_after_seconds"`
}

// Posters contains configuration for poster resolution and caching.
type Posters struct {
	Concurrency     int    `toml:"concurrency"`
	PersistentCache bool   `toml:"persistent_cache"`
	CachePath       string `toml:"cache_path"`
}

// Recommend contains configuration for recommendation lookups.
type Recommend struct {
	DefaultK int `toml:"default_k"`
}

// Server contains configuration for the HTTP API.
type Server struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelmatch.
//
// Configuration sections by subsystem:
//   - Paths: catalog artifact, log and cache directories
//   - TMDB: metadata provider credentials, URLs, and retry policy
//   - Posters: resolver concurrency and optional persistent cache
//   - Recommend: default result count
//   - Server: HTTP API bind address
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	TMDB      TMDB      `toml:"tmdb"`
	Posters   Posters   `toml:"posters"`
	Recommend Recommend `toml:"recommend"`
	Server    Server    `toml:"server"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelmatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HasAPIKey reports whether a TMDB credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.TMDB.APIKey) != ""
}

// RequestTimeout returns the per-request provider timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TMDB.RequestTimeoutSeconds) * time.Second
}

// BackoffFactor returns the base retry backoff interval.
func (c *Config) BackoffFactor() time.Duration {
	return time.Duration(c.TMDB.BackoffFactorSeconds * float64(time.Second))
}

// PolitenessDelay returns the pause taken before each fresh provider call.
func (c *Config) PolitenessDelay() time.Duration {
	return time.Duration(c.TMDB.PolitenessDelayMillis) * time.Millisecond
}

// MaxRetryAfter returns the longest Retry-After hint the resolver will honour.
func (c *Config) MaxRetryAfter() time.Duration {
	return time.Duration(c.TMDB.MaxRetryAfterSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "reelmatch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/reelmatch"
	}
	return filepath.Join(home, ".cache", "reelmatch")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML. The API key is masked.
func (c *Config) Encode() ([]byte, error) {
	clone := *c
	if clone.TMDB.APIKey != "" {
		clone.TMDB.APIKey = "********"
	}
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
