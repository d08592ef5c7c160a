package preflight

import (
	"context"

	"reelmatch/internal/config"
)

// Result reports the outcome of a single preflight check. Optional failures
// degrade service instead of breaking it.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every applicable check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCatalog(cfg.Paths.Catalog),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
	}

	if cfg.Posters.PersistentCache {
		results = append(results, CheckPosterCache(ctx, cfg.Posters.CachePath))
	}

	results = append(results, CheckTMDB(ctx, cfg.TMDB.BaseURL, cfg.TMDB.APIKey))
	return results
}

// Ready reports whether every required check passed.
func Ready(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
