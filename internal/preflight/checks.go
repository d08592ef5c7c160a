package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reelmatch/internal/catalog"
	"reelmatch/internal/logging"
	"reelmatch/internal/postercache"
)

// CheckCatalog verifies that the artifact loads and passes validation.
func CheckCatalog(path string) Result {
	const name = "Catalog"
	c, err := catalog.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d titles)", path, c.Len())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckPosterCache opens the SQLite cache and reports how many entries it
// keeps across runs.
func CheckPosterCache(ctx context.Context, path string) Result {
	const name = "Poster cache"
	cache, err := postercache.OpenSQLite(ctx, path, logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer cache.Close()
	count, err := cache.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, count)}
}

// CheckTMDB verifies the API key against /configuration with a single
// attempt. A missing key is an optional failure: posters fall back to the
// placeholder image.
func CheckTMDB(ctx context.Context, baseURL, apiKey string) Result {
	const name = "TMDB"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Optional: true, Detail: "api key not set (placeholder posters only)"}
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint, err := url.Parse(base + "/configuration")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid base url (%v)", err)}
	}
	params := endpoint.Query()
	params.Set("api_key", strings.TrimSpace(apiKey))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeRequestError(err, apiKey)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

// summarizeRequestError produces a human-readable summary without leaking
// the api key embedded in the request URL.
func summarizeRequestError(err error, apiKey string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "auth check timed out (TMDB unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "auth check timed out (TMDB unreachable)"
	}
	return strings.ReplaceAll(err.Error(), strings.TrimSpace(apiKey), "***")
}
