package main

import (
	"encoding/json"
	"testing"

	"reelmatch/internal/api"
	"reelmatch/internal/testsupport"
)

func TestCacheListAndClear(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"679": "/aliens.jpg"}, testsupport.WithPersistentCache())

	if _, _, err := env.run(t, "recommend", "Alien", "--k", "2"); err != nil {
		t.Fatalf("recommend: %v", err)
	}

	out, _, err := env.run(t, "cache", "list", "--json")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	var entries []api.CacheEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 cached posters, got %+v", entries)
	}
	byID := map[int64]api.CacheEntry{}
	for _, entry := range entries {
		byID[entry.MovieID] = entry
	}
	if byID[679].Outcome != "resolved" {
		t.Fatalf("expected 679 resolved, got %+v", byID[679])
	}
	if byID[949].Outcome != "failed" || byID[949].FailureClass != "not_found" {
		t.Fatalf("expected 949 failed/not_found, got %+v", byID[949])
	}

	out, _, err = env.run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list table: %v", err)
	}
	requireContains(t, out, "/aliens.jpg")

	out, _, err = env.run(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 2 cached poster(s)")

	out, _, err = env.run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list after clear: %v", err)
	}
	requireContains(t, out, "Poster cache is empty")
}

func TestCacheListWithoutDatabase(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := env.run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "No poster cache at "+env.cfg.Posters.CachePath)
}
