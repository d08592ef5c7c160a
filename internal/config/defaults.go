package config

const (
	defaultConfigPath            = "~/.config/reelmatch/config.toml"
	defaultCatalogPath           = "~/.local/share/reelmatch/catalog.json"
	defaultLogDir                = "~/.local/share/reelmatch/logs"
	defaultPosterCacheFile       = "posters.db"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL      = "https://image.tmdb.org/t/p/w500"
	defaultPlaceholderURL        = "https://via.placeholder.com/500x750?text=No+Image"
	defaultTMDBLanguage          = "en-US"
	defaultRequestTimeoutSeconds = 15
	defaultMaxAttempts           = 5
	defaultBackoffFactorSeconds  = 1.0
	defaultPolitenessDelayMillis = 250
	defaultRateLimitPerSecond    = 40
	defaultMaxRetryAfterSeconds  = 30
	defaultPosterConcurrency     = 1
	defaultRecommendK            = 5
	defaultServerBind            = "127.0.0.1:8484"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Catalog:  defaultCatalogPath,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir(),
		},
		TMDB: TMDB{
			BaseURL:               defaultTMDBBaseURL,
			ImageBaseURL:          defaultTMDBImageBaseURL,
			PlaceholderURL:        defaultPlaceholderURL,
			Language:              defaultTMDBLanguage,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			MaxAttempts:           defaultMaxAttempts,
			BackoffFactorSeconds:  defaultBackoffFactorSeconds,
			PolitenessDelayMillis: defaultPolitenessDelayMillis,
			RateLimitPerSecond:    defaultRateLimitPerSecond,
			MaxRetryAfterSeconds:  defaultMaxRetryAfterSeconds,
		},
		Posters: Posters{
			Concurrency: defaultPosterConcurrency,
		},
		Recommend: Recommend{
			DefaultK: defaultRecommendK,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
