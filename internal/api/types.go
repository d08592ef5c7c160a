package api

import (
	"time"

	"reelmatch/internal/catalog"
	"reelmatch/internal/postercache"
	"reelmatch/internal/posters"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Recommendation describes one recommended movie.
type Recommendation struct {
	Title         string  `json:"title"`
	MovieID       int64   `json:"movieId"`
	Score         float64 `json:"score"`
	PosterURL     string  `json:"posterUrl"`
	PosterOutcome string  `json:"posterOutcome"`
}

// RecommendationSet is the response for a recommendation query.
type RecommendationSet struct {
	Query           string           `json:"query"`
	K               int              `json:"k"`
	Recommendations []Recommendation `json:"recommendations"`
}

// PosterView describes a single poster resolution.
type PosterView struct {
	MovieID int64  `json:"movieId"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
	Outcome string `json:"outcome"`
	Cached  bool   `json:"cached"`
}

// CacheEntry mirrors a poster cache record.
type CacheEntry struct {
	MovieID      int64  `json:"movieId"`
	URL          string `json:"url"`
	Outcome      string `json:"outcome"`
	FailureClass string `json:"failureClass,omitempty"`
	ResolvedAt   string `json:"resolvedAt,omitempty"`
}

// FromResult converts a resolver result.
func FromResult(res posters.Result) PosterView {
	return PosterView{
		MovieID: res.MovieID,
		URL:     res.URL,
		Outcome: string(res.Outcome),
		Cached:  res.Cached,
	}
}

// FromRecommendation pairs a catalog neighbour with its poster result.
func FromRecommendation(rec catalog.Recommendation, poster posters.Result) Recommendation {
	return Recommendation{
		Title:         rec.Title,
		MovieID:       rec.MovieID,
		Score:         rec.Score,
		PosterURL:     poster.URL,
		PosterOutcome: string(poster.Outcome),
	}
}

// FromCacheEntries converts cache records for display.
func FromCacheEntries(entries []postercache.Entry) []CacheEntry {
	out := make([]CacheEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, CacheEntry{
			MovieID:      entry.MovieID,
			URL:          entry.URL,
			Outcome:      string(entry.Outcome),
			FailureClass: entry.FailureClass,
			ResolvedAt:   formatTime(entry.ResolvedAt),
		})
	}
	return out
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateTimeFormat)
}
