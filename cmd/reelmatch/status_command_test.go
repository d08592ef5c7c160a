package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"reelmatch/internal/preflight"
	"reelmatch/internal/testsupport"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Catalog", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Catalog:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Catalog", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestStatusKindFromResult(t *testing.T) {
	cases := []struct {
		result preflight.Result
		want   statusKind
	}{
		{preflight.Result{Passed: true}, statusOK},
		{preflight.Result{Optional: true}, statusWarn},
		{preflight.Result{}, statusError},
	}
	for _, tc := range cases {
		if got := statusKindFromResult(tc.result); got != tc.want {
			t.Fatalf("statusKindFromResult(%+v) = %v, want %v", tc.result, got, tc.want)
		}
	}
}

func TestRenderOutcomeColors(t *testing.T) {
	if got := renderOutcome("resolved", false); got != "resolved" {
		t.Fatalf("expected plain label, got %q", got)
	}
	if got := renderOutcome("failed", true); !strings.HasPrefix(got, ansiRed) {
		t.Fatalf("expected red failed label, got %q", got)
	}
	if got := renderOutcome("no_credentials", true); !strings.HasPrefix(got, ansiYellow) {
		t.Fatalf("expected yellow no_credentials label, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}

func TestStatusCommandReady(t *testing.T) {
	env := setupCLITestEnv(t, nil, testsupport.WithPersistentCache())

	out, _, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "[OK] "+env.cfg.Paths.Catalog+" (4 titles)")
	requireContains(t, out, "Poster cache:")
	requireContains(t, out, "[WARN] api key not set")
}

func TestStatusCommandMissingCatalog(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	cfg := testsupport.NewConfig(t)
	configPath := testsupport.BaseDir(cfg) + "/config.toml"
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, []string{"status"}, configPath)
	if err == nil {
		t.Fatal("expected not-ready error")
	}
	requireContains(t, out, "Catalog:")
	requireContains(t, out, "[ERROR]")
}
