package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"reelmatch/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("XDG_CACHE_HOME", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCatalog := filepath.Join(tempHome, ".local", "share", "reelmatch", "catalog.json")
	if cfg.Paths.Catalog != wantCatalog {
		t.Fatalf("unexpected catalog path: got %q want %q", cfg.Paths.Catalog, wantCatalog)
	}
	wantCache := filepath.Join(tempHome, ".cache", "reelmatch", "posters.db")
	if cfg.Posters.CachePath != wantCache {
		t.Fatalf("unexpected poster cache path: got %q want %q", cfg.Posters.CachePath, wantCache)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if !cfg.HasAPIKey() {
		t.Fatal("expected HasAPIKey to be true")
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
	if cfg.PolitenessDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected politeness delay: %v", cfg.PolitenessDelay())
	}
	if cfg.TMDB.MaxAttempts != 5 {
		t.Fatalf("unexpected max attempts: %d", cfg.TMDB.MaxAttempts)
	}
	if cfg.Posters.PersistentCache {
		t.Fatal("expected persistent poster cache disabled by default")
	}
	if cfg.Recommend.DefaultK != 5 {
		t.Fatalf("unexpected default k: %d", cfg.Recommend.DefaultK)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadWithoutAPIKeyIsValid(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HasAPIKey() {
		t.Fatalf("expected no api key, got %q", cfg.TMDB.APIKey)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reelmatch.toml")

	type payload struct {
		Paths struct {
			Catalog string `toml:"catalog"`
		} `toml:"paths"`
		TMDB struct {
			APIKey               string  `toml:"api_key"`
			BaseURL              string  `toml:"base_url"`
			MaxAttempts          int     `toml:"max_attempts"`
			BackoffFactorSeconds float64 `toml:"backoff_factor_seconds"`
		} `toml:"tmdb"`
		Posters struct {
			Concurrency     int  `toml:"concurrency"`
			PersistentCache bool `toml:"persistent_cache"`
		} `toml:"posters"`
	}
	custom := payload{}
	custom.Paths.Catalog = filepath.Join(tempDir, "movies.json")
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb/"
	custom.TMDB.MaxAttempts = 3
	custom.TMDB.BackoffFactorSeconds = 0.5
	custom.Posters.Concurrency = 4
	custom.Posters.PersistentCache = true
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("expected file key to win over env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.Paths.Catalog != custom.Paths.Catalog {
		t.Fatalf("unexpected catalog path %q", cfg.Paths.Catalog)
	}
	if cfg.TMDB.MaxAttempts != 3 {
		t.Fatalf("expected max attempts 3, got %d", cfg.TMDB.MaxAttempts)
	}
	if cfg.BackoffFactor() != 500*time.Millisecond {
		t.Fatalf("expected backoff factor 500ms, got %v", cfg.BackoffFactor())
	}
	if cfg.Posters.Concurrency != 4 || !cfg.Posters.PersistentCache {
		t.Fatalf("unexpected posters section: %+v", cfg.Posters)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "reelmatch.toml")
	if err := os.WriteFile(configPath, []byte("[tmdb]\napi_kee = \"typo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "TMDB_API_KEY") {
		t.Fatalf("sample config should mention TMDB_API_KEY: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.Catalog, "reelmatch") {
		t.Fatalf("expected catalog path to contain reelmatch, got %q", cfg.Paths.Catalog)
	}
	if cfg.TMDB.MaxAttempts != 5 {
		t.Fatalf("expected sample max attempts 5, got %d", cfg.TMDB.MaxAttempts)
	}
}

func TestEncodeMasksAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.APIKey = "secret"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("expected api key masked, got %s", data)
	}
	if cfg.TMDB.APIKey != "secret" {
		t.Fatal("Encode must not mutate the receiver")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.MaxAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive max attempts")
	}

	cfg = config.Default()
	cfg.TMDB.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative base url")
	}

	cfg = config.Default()
	cfg.TMDB.BackoffFactorSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative backoff factor")
	}

	cfg = config.Default()
	cfg.Posters.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero concurrency")
	}

	cfg = config.Default()
	cfg.Posters.PersistentCache = true
	cfg.Posters.CachePath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when persistent cache has no path")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func TestLoadReadsAPIKeyFromDotEnv(t *testing.T) {
	unsetEnv(t, "TMDB_API_KEY")
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TMDB_API_KEY=dotenv-key\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "dotenv-key" {
		t.Fatalf("expected key from .env, got %q", cfg.TMDB.APIKey)
	}
}

func TestLoadEnvironmentOverridesDotEnv(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TMDB_API_KEY=dotenv-key\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Fatalf("expected environment to win over .env, got %q", cfg.TMDB.APIKey)
	}
}

func TestLoadRejectsMalformedDotEnv(t *testing.T) {
	unsetEnv(t, "TMDB_API_KEY")
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TMDB_API_KEY='unterminated\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	_, _, _, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), ".env") {
		t.Fatalf("expected .env parse error, got %v", err)
	}
}
