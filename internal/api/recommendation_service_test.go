package api

import (
	"context"
	"errors"
	"testing"

	"reelmatch/internal/catalog"
	"reelmatch/internal/postercache"
	"reelmatch/internal/posters"
	"reelmatch/internal/services"
)

type stubResolver struct {
	batches [][]int64
}

func (s *stubResolver) Lookup(_ context.Context, movieID int64) posters.Result {
	return posters.Result{MovieID: movieID, URL: "https://img/single.jpg", Outcome: postercache.OutcomeResolved}
}

func (s *stubResolver) ResolveAll(_ context.Context, ids []int64) []posters.Result {
	s.batches = append(s.batches, ids)
	out := make([]posters.Result, len(ids))
	for i, id := range ids {
		if id == 3 {
			out[i] = posters.Result{MovieID: id, URL: "placeholder", Outcome: postercache.OutcomeTransient}
			continue
		}
		out[i] = posters.Result{MovieID: id, URL: "https://img/poster.jpg", Outcome: postercache.OutcomeResolved}
	}
	return out
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Entry{
			{MovieID: 1, Title: "Heat"},
			{MovieID: 2, Title: "Collateral"},
			{MovieID: 3, Title: "Thief"},
		},
		[][]float64{
			{1, 0.7, 0.4},
			{0.7, 1, 0.2},
			{0.4, 0.2, 1},
		},
	)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func TestRecommendAttachesPosters(t *testing.T) {
	resolver := &stubResolver{}
	svc := NewRecommendationService(testCatalog(t), resolver, 0, nil)

	set, err := svc.Recommend(context.Background(), "Heat", 0)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	if set.K != catalog.DefaultK || len(set.Recommendations) != 2 {
		t.Fatalf("unexpected set %+v", set)
	}
	first, second := set.Recommendations[0], set.Recommendations[1]
	if first.Title != "Collateral" || first.PosterURL != "https://img/poster.jpg" || first.PosterOutcome != "resolved" {
		t.Fatalf("unexpected first recommendation %+v", first)
	}
	if second.Title != "Thief" || second.PosterURL != "placeholder" || second.PosterOutcome != "transient" {
		t.Fatalf("unexpected second recommendation %+v", second)
	}
	if len(resolver.batches) != 1 || len(resolver.batches[0]) != 2 {
		t.Fatalf("expected one batch of two ids, got %v", resolver.batches)
	}
}

func TestRecommendUnknownTitle(t *testing.T) {
	resolver := &stubResolver{}
	svc := NewRecommendationService(testCatalog(t), resolver, 3, nil)
	_, err := svc.Recommend(context.Background(), "heat", 3)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(resolver.batches) != 0 {
		t.Fatal("resolver should not run for unknown titles")
	}
}

func TestPosterAddsTitle(t *testing.T) {
	svc := NewRecommendationService(testCatalog(t), &stubResolver{}, 5, nil)
	view := svc.Poster(context.Background(), 2)
	if view.Title != "Collateral" || view.URL != "https://img/single.jpg" {
		t.Fatalf("unexpected view %+v", view)
	}
	if unknown := svc.Poster(context.Background(), 99); unknown.Title != "" {
		t.Fatalf("unknown id should have no title: %+v", unknown)
	}
}

func TestFromCacheEntriesFormatsTimestamps(t *testing.T) {
	entries := FromCacheEntries([]postercache.Entry{{MovieID: 1, URL: "u", Outcome: postercache.OutcomeNoPoster}})
	if len(entries) != 1 || entries[0].ResolvedAt != "" || entries[0].Outcome != "no_poster" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
