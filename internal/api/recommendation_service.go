package api

import (
	"context"
	"log/slog"

	"reelmatch/internal/catalog"
	"reelmatch/internal/logging"
	"reelmatch/internal/posters"
	"reelmatch/internal/services"
)

// Lookup abstracts the catalog operations the service needs.
type Lookup interface {
	Recommend(title string, k int) ([]catalog.Recommendation, error)
	Search(query string) []string
	Entry(movieID int64) (catalog.Entry, bool)
}

// PosterResolver abstracts poster resolution.
type PosterResolver interface {
	Lookup(ctx context.Context, movieID int64) posters.Result
	ResolveAll(ctx context.Context, ids []int64) []posters.Result
}

// RecommendationService answers recommendation queries with posters attached.
type RecommendationService struct {
	catalog  Lookup
	resolver PosterResolver
	defaultK int
	logger   *slog.Logger
}

// NewRecommendationService wires a catalog and resolver together. defaultK
// applies when callers pass k <= 0.
func NewRecommendationService(lookup Lookup, resolver PosterResolver, defaultK int, logger *slog.Logger) *RecommendationService {
	if defaultK <= 0 {
		defaultK = catalog.DefaultK
	}
	return &RecommendationService{
		catalog:  lookup,
		resolver: resolver,
		defaultK: defaultK,
		logger:   logging.NewComponentLogger(logger, "recommend"),
	}
}

// Recommend returns the k nearest titles to title, each with a poster URL.
// Only an unknown title is an error; poster failures show the placeholder.
func (s *RecommendationService) Recommend(ctx context.Context, title string, k int) (*RecommendationSet, error) {
	if k <= 0 {
		k = s.defaultK
	}
	ctx = services.WithOperation(ctx, "recommend")
	recs, err := s.catalog.Recommend(title, k)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(recs))
	for i, rec := range recs {
		ids[i] = rec.MovieID
	}
	results := s.resolver.ResolveAll(ctx, ids)

	set := &RecommendationSet{Query: title, K: k, Recommendations: make([]Recommendation, len(recs))}
	placeholders := 0
	for i, rec := range recs {
		set.Recommendations[i] = FromRecommendation(rec, results[i])
		if results[i].Outcome.Placeholder() {
			placeholders++
		}
	}
	logging.WithContext(ctx, s.logger).Info("recommendations served",
		logging.String(logging.FieldTitle, title),
		logging.Int("count", len(recs)),
		logging.Int("placeholders", placeholders))
	return set, nil
}

// Titles returns catalog titles matching query.
func (s *RecommendationService) Titles(query string) []string {
	return s.catalog.Search(query)
}

// Poster resolves a single movie's poster, tagging it with its catalog title
// when the id is known.
func (s *RecommendationService) Poster(ctx context.Context, movieID int64) PosterView {
	ctx = services.WithOperation(ctx, "poster")
	view := FromResult(s.resolver.Lookup(ctx, movieID))
	if entry, ok := s.catalog.Entry(movieID); ok {
		view.Title = entry.Title
	}
	return view
}
