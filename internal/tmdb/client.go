package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"reelmatch/internal/config"
	"reelmatch/internal/logging"
	"reelmatch/internal/services"
)

// MovieDetails is the subset of the TMDB movie payload the resolver reads.
type MovieDetails struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// Options configures a Client.
type Options struct {
	APIKey   string
	BaseURL  string
	Language string
	// Timeout bounds a single attempt.
	Timeout     time.Duration
	MaxAttempts int
	// BackoffFactor is the wait after the first failed attempt; each later
	// wait doubles it.
	BackoffFactor time.Duration
	// RateLimit is the provider-wide request rate; <= 0 disables limiting.
	RateLimit float64
	// MaxRetryAfter caps honoured Retry-After headers.
	MaxRetryAfter time.Duration
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// OptionsFromConfig maps the [tmdb] config section onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		APIKey:        cfg.TMDB.APIKey,
		BaseURL:       cfg.TMDB.BaseURL,
		Language:      cfg.TMDB.Language,
		Timeout:       cfg.RequestTimeout(),
		MaxAttempts:   cfg.TMDB.MaxAttempts,
		BackoffFactor: cfg.BackoffFactor(),
		RateLimit:     cfg.TMDB.RateLimitPerSecond,
		MaxRetryAfter: cfg.MaxRetryAfter(),
	}
}

// Client provides access to the TMDB movie details endpoint.
type Client struct {
	apiKey        string
	baseURL       string
	language      string
	timeout       time.Duration
	maxAttempts   int
	backoffFactor time.Duration
	maxRetryAfter time.Duration
	limiter       *rate.Limiter
	httpClient    *http.Client
	logger        *slog.Logger
}

// New creates a TMDB client.
func New(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "tmdb api key required", nil)
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "tmdb base url required", nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	limit := rate.Inf
	burst := 1
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
		burst = max(1, int(math.Ceil(opts.RateLimit)))
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		apiKey:        apiKey,
		baseURL:       strings.TrimRight(baseURL, "/"),
		language:      strings.TrimSpace(opts.Language),
		timeout:       opts.Timeout,
		maxAttempts:   opts.MaxAttempts,
		backoffFactor: opts.BackoffFactor,
		maxRetryAfter: opts.MaxRetryAfter,
		limiter:       rate.NewLimiter(limit, burst),
		httpClient:    httpClient,
		logger:        logging.NewComponentLogger(opts.Logger, "tmdb"),
	}, nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// MovieDetails fetches /movie/{id}. Retriable failures are retried up to the
// configured attempt budget; the returned error carries a services sentinel.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	endpoint, err := url.Parse(c.baseURL + "/movie/" + strconv.FormatInt(movieID, 10))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "movie details", "parse tmdb url", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()
	target := endpoint.String()

	attempt := 0
	operation := func() (*MovieDetails, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(services.Wrap(services.ErrTimeout, "tmdb", "rate limit", "wait for token", err))
		}
		return c.fetch(ctx, target, attempt)
	}

	details, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logging.WithContext(ctx, c.logger).Debug("tmdb request failed; retrying",
				logging.Int64(logging.FieldMovieID, movieID),
				logging.Int(logging.FieldAttempt, attempt),
				logging.Duration("retry_in", wait),
				logging.String(logging.FieldFailureClass, services.FailureClass(err)),
				logging.Error(err))
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		return nil, fmt.Errorf("movie %d after %d attempt(s): %w", movieID, attempt, err)
	}
	return details, nil
}

// newBackOff builds an unjittered exponential schedule: factor, 2*factor,
// 4*factor, and so on.
func (c *Client) newBackOff() backoff.BackOff {
	if c.backoffFactor <= 0 {
		return &backoff.ZeroBackOff{}
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoffFactor
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = time.Duration(math.MaxInt64)
	bo.Reset()
	return bo
}

func (c *Client) fetch(ctx context.Context, target string, attempt int) (*MovieDetails, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(services.Wrap(services.ErrConfiguration, "tmdb", "movie details", "build request", err))
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(services.Wrap(services.ErrTimeout, "tmdb", "movie details", "caller canceled", ctx.Err()))
		}
		return nil, classifyTransportError(redact(err, c.apiKey), attempt, latency)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyStatus(resp, attempt, latency)
	}

	var payload MovieDetails
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if attemptCtx.Err() != nil && ctx.Err() == nil {
			return nil, services.Wrap(services.ErrTimeout, "tmdb", "movie details", "read body timed out", err)
		}
		return nil, backoff.Permanent(services.Wrap(services.ErrMalformedResponse, "tmdb", "movie details", "decode tmdb response", err))
	}
	return &payload, nil
}

// RetryableStatus reports whether an HTTP status is retried.
func RetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) classifyStatus(resp *http.Response, attempt int, latency time.Duration) error {
	status := resp.StatusCode
	message := fmt.Sprintf("tmdb returned %d (attempt=%d latency=%v)", status, attempt, latency)
	switch {
	case status == http.StatusTooManyRequests:
		err := services.Wrap(services.ErrTransient, "tmdb", "movie details", message, nil)
		if wait, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok && wait <= c.maxRetryAfter {
			return fmt.Errorf("%w%w", err, backoff.RetryAfter(int(math.Ceil(wait.Seconds()))))
		}
		return err
	case RetryableStatus(status):
		return services.Wrap(services.ErrTransient, "tmdb", "movie details", message, nil)
	case status == http.StatusNotFound:
		return backoff.Permanent(services.Wrap(services.ErrNotFound, "tmdb", "movie details", message, nil))
	case status >= 500:
		return backoff.Permanent(services.Wrap(services.ErrTransient, "tmdb", "movie details", message, nil))
	default:
		return backoff.Permanent(services.Wrap(services.ErrRejected, "tmdb", "movie details", message, nil))
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		wait := at.Sub(now)
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}
	return 0, false
}

func classifyTransportError(err error, attempt int, latency time.Duration) error {
	message := fmt.Sprintf("execute request (attempt=%d latency=%v)", attempt, latency)
	if isTimeout(err) {
		return services.Wrap(services.ErrTimeout, "tmdb", "movie details", message, err)
	}
	return services.Wrap(services.ErrTransient, "tmdb", "movie details", message, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

// redact strips the API key from URL errors so it never reaches logs.
func redact(err error, apiKey string) error {
	var urlErr *url.Error
	if apiKey == "" || !errors.As(err, &urlErr) {
		return err
	}
	clone := *urlErr
	clone.URL = strings.ReplaceAll(clone.URL, apiKey, "REDACTED")
	return &clone
}
