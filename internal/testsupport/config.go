package testsupport

import (
	"path/filepath"
	"testing"

	"reelmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The TMDB key is empty unless WithTMDBKey is applied, and retries are fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Catalog = filepath.Join(base, "data", "catalog.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Posters.CachePath = filepath.Join(base, "cache", "posters.db")
	cfgVal.TMDB.BackoffFactorSeconds = 0.001
	cfgVal.TMDB.PolitenessDelayMillis = 0
	cfgVal.TMDB.RateLimitPerSecond = 0
	cfgVal.TMDB.RequestTimeoutSeconds = 2
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithTMDBBaseURL points the provider at a stub server.
func WithTMDBBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
	}
}

// WithPersistentCache enables the SQLite poster cache.
func WithPersistentCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Posters.PersistentCache = true
	}
}

// WithSampleCatalog writes SampleCatalog to the configured catalog path.
func WithSampleCatalog() ConfigOption {
	return func(b *configBuilder) {
		WriteCatalog(b.t, b.cfg.Paths.Catalog, SampleCatalog(b.t))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
