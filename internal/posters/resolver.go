package posters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"reelmatch/internal/config"
	"reelmatch/internal/logging"
	"reelmatch/internal/postercache"
	"reelmatch/internal/services"
	"reelmatch/internal/tmdb"
)

// Provider fetches movie metadata. *tmdb.Client satisfies it.
type Provider interface {
	MovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error)
}

// Cache stores resolutions with first-write-wins semantics.
type Cache interface {
	Lookup(ctx context.Context, movieID int64) (postercache.Entry, bool, error)
	Store(ctx context.Context, entry postercache.Entry) (postercache.Entry, error)
}

// Result is the outcome of resolving one movie.
type Result struct {
	MovieID int64              `json:"movie_id"`
	URL     string             `json:"url"`
	Outcome postercache.Outcome `json:"outcome"`
	// Cached is true when the URL came from the cache without a fetch.
	Cached bool `json:"cached"`
	// Err holds the failure behind a placeholder, when one was produced by
	// this call.
	Err error `json:"-"`
}

// Options configures a Resolver.
type Options struct {
	// Provider is nil when no API key is configured; every miss then
	// resolves to the placeholder.
	Provider        Provider
	Cache           Cache
	ImageBaseURL    string
	PlaceholderURL  string
	PolitenessDelay time.Duration
	// Concurrency bounds ResolveAll; values <= 1 resolve sequentially.
	Concurrency int
	Logger      *slog.Logger
}

// Resolver maps movie ids to poster URLs. It is safe for concurrent use.
type Resolver struct {
	provider        Provider
	cache           Cache
	imageBaseURL    string
	placeholderURL  string
	politenessDelay time.Duration
	concurrency     int
	logger          *slog.Logger

	flights        singleflight.Group
	credentialWarn sync.Once
}

var errNoCredentials = services.Wrap(services.ErrConfiguration, "posters", "resolve", "tmdb api key not configured", nil)

// New builds a resolver. A nil Cache gets a fresh in-memory cache.
func New(opts Options) (*Resolver, error) {
	if strings.TrimSpace(opts.PlaceholderURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "posters", "new resolver", "placeholder url required", nil)
	}
	if opts.Provider != nil && strings.TrimSpace(opts.ImageBaseURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "posters", "new resolver", "image base url required", nil)
	}
	cache := opts.Cache
	if cache == nil {
		cache = postercache.NewMemory()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{
		provider:        opts.Provider,
		cache:           cache,
		imageBaseURL:    strings.TrimRight(opts.ImageBaseURL, "/"),
		placeholderURL:  opts.PlaceholderURL,
		politenessDelay: opts.PolitenessDelay,
		concurrency:     concurrency,
		logger:          logging.NewComponentLogger(opts.Logger, "posters"),
	}, nil
}

// NewFromConfig builds a resolver, and its TMDB client when an API key is
// configured, from application config.
func NewFromConfig(cfg *config.Config, cache Cache, logger *slog.Logger) (*Resolver, error) {
	var provider Provider
	if cfg.HasAPIKey() {
		tmdbOpts := tmdb.OptionsFromConfig(cfg)
		tmdbOpts.Logger = logger
		client, err := tmdb.New(tmdbOpts)
		if err != nil {
			return nil, fmt.Errorf("tmdb client: %w", err)
		}
		provider = client
	}
	return New(Options{
		Provider:        provider,
		Cache:           cache,
		ImageBaseURL:    cfg.TMDB.ImageBaseURL,
		PlaceholderURL:  cfg.TMDB.PlaceholderURL,
		PolitenessDelay: cfg.PolitenessDelay(),
		Concurrency:     cfg.Posters.Concurrency,
		Logger:          logger,
	})
}

// Placeholder returns the URL used whenever no real poster is available.
func (r *Resolver) Placeholder() string {
	return r.placeholderURL
}

// Close releases idle provider connections. The cache is owned by the caller.
func (r *Resolver) Close() error {
	if closer, ok := r.provider.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

// Resolve returns a display URL for movieID. It never fails; any problem
// yields the placeholder URL.
func (r *Resolver) Resolve(ctx context.Context, movieID int64) string {
	return r.Lookup(ctx, movieID).URL
}

// Lookup resolves movieID and reports how the URL was obtained.
func (r *Resolver) Lookup(ctx context.Context, movieID int64) Result {
	ctx = services.WithMovieID(ctx, movieID)
	if entry, ok := r.cached(ctx, movieID); ok {
		return Result{MovieID: movieID, URL: entry.URL, Outcome: entry.Outcome, Cached: true}
	}

	if err := ctx.Err(); err != nil {
		return r.canceled(movieID, err)
	}

	// The flight outlives any single waiter. Attempts stay bounded by the
	// provider's per-request timeout and retry budget.
	flightCtx := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(strconv.FormatInt(movieID, 10), func() (any, error) {
		// A flight that finished just before this one started may have
		// already stored the entry.
		if entry, ok := r.cached(flightCtx, movieID); ok {
			return Result{MovieID: movieID, URL: entry.URL, Outcome: entry.Outcome, Cached: true}, nil
		}
		return r.fetch(flightCtx, movieID), nil
	})
	select {
	case res := <-ch:
		return res.Val.(Result)
	case <-ctx.Done():
		return r.canceled(movieID, ctx.Err())
	}
}

// ResolveAll resolves ids in order, running up to Concurrency lookups at
// once. Results line up with ids; one movie's failure never affects another.
func (r *Resolver) ResolveAll(ctx context.Context, ids []int64) []Result {
	results := make([]Result, len(ids))
	if r.concurrency <= 1 || len(ids) < 2 {
		for i, id := range ids {
			results[i] = r.Lookup(ctx, id)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = r.Lookup(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Resolver) cached(ctx context.Context, movieID int64) (postercache.Entry, bool) {
	entry, ok, err := r.cache.Lookup(ctx, movieID)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "poster cache lookup failed", "poster_cache_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "poster will be fetched again"),
			logging.String(logging.FieldErrorHint, "check the poster cache database"))
		return postercache.Entry{}, false
	}
	return entry, ok
}

func (r *Resolver) fetch(ctx context.Context, movieID int64) Result {
	if r.provider == nil {
		r.credentialWarn.Do(func() {
			logging.WarnWithContext(r.logger, "tmdb api key not configured; serving placeholder posters", "tmdb_credentials_missing",
				logging.String(logging.FieldImpact, "every poster shows the placeholder image"),
				logging.String(logging.FieldErrorHint, "set tmdb.api_key in config or TMDB_API_KEY"))
		})
		return r.record(ctx, r.settle(ctx, movieID, nil, errNoCredentials))
	}

	if err := SleepWithContext(ctx, r.politenessDelay); err != nil {
		return r.canceled(movieID, err)
	}
	details, err := r.provider.MovieDetails(ctx, movieID)
	if err != nil && ctx.Err() != nil {
		return r.canceled(movieID, err)
	}
	return r.record(ctx, r.settle(ctx, movieID, details, err))
}

// settle turns a fetch result into the entry to cache. It is the only place
// that decides between a poster URL and the placeholder.
func (r *Resolver) settle(ctx context.Context, movieID int64, details *tmdb.MovieDetails, err error) Result {
	result := Result{MovieID: movieID, URL: r.placeholderURL, Err: err}
	switch {
	case err == nil && details != nil && strings.TrimSpace(details.PosterPath) != "":
		result.URL = r.imageBaseURL + details.PosterPath
		result.Outcome = postercache.OutcomeResolved
		return result
	case err == nil:
		result.Outcome = postercache.OutcomeNoPoster
		return result
	case errors.Is(err, errNoCredentials):
		result.Outcome = postercache.OutcomeNoCredentials
		return result
	case errors.Is(err, services.ErrTransient), errors.Is(err, services.ErrTimeout):
		result.Outcome = postercache.OutcomeTransient
	default:
		result.Outcome = postercache.OutcomeFailed
	}

	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "poster fetch failed; using placeholder", "poster_fetch_failed",
		logging.String(logging.FieldFailureClass, services.FailureClass(err)),
		logging.String("outcome", string(result.Outcome)),
		logging.Error(err),
		logging.String(logging.FieldImpact, "placeholder poster shown"),
		logging.String(logging.FieldErrorHint, "check TMDB availability and the api key"))
	return result
}

// record caches result and returns whatever the cache kept for the id.
func (r *Resolver) record(ctx context.Context, result Result) Result {
	entry := postercache.Entry{
		MovieID:    result.MovieID,
		URL:        result.URL,
		Outcome:    result.Outcome,
		ResolvedAt: time.Now().UTC(),
	}
	if result.Err != nil {
		entry.FailureClass = services.FailureClass(result.Err)
	}
	stored, err := r.cache.Store(ctx, entry)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "poster cache store failed", "poster_cache_store_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "poster will be fetched again"),
			logging.String(logging.FieldErrorHint, "check the poster cache database"))
		return result
	}
	if stored.URL != result.URL || stored.Outcome != result.Outcome {
		return Result{MovieID: result.MovieID, URL: stored.URL, Outcome: stored.Outcome, Cached: true}
	}
	r.logger.Debug("poster resolved",
		logging.Int64(logging.FieldMovieID, result.MovieID),
		logging.String("outcome", string(result.Outcome)))
	return result
}

// canceled reports a caller that stopped waiting. Nothing is cached for it;
// an in-flight fetch still completes and caches its own result.
func (r *Resolver) canceled(movieID int64, err error) Result {
	return Result{
		MovieID: movieID,
		URL:     r.placeholderURL,
		Outcome: postercache.OutcomeTransient,
		Err:     services.Wrap(services.ErrTimeout, "posters", "resolve", "caller canceled", err),
	}
}

// SleepWithContext waits for d or until ctx is done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
