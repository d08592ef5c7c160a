package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelmatch/internal/config"
	"reelmatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	tmdbCalls  *atomic.Int32
}

// setupCLITestEnv writes a config pointing at a temp catalog built from the
// sample entries. When posterPaths is non-nil a TMDB stub serves them by id;
// ids without a path answer 404.
func setupCLITestEnv(t *testing.T, posterPaths map[string]string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("TMDB_API_KEY", "")

	env := &cliTestEnv{tmdbCalls: new(atomic.Int32)}
	if posterPaths != nil {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			env.tmdbCalls.Add(1)
			id := strings.TrimPrefix(r.URL.Path, "/movie/")
			path, ok := posterPaths[id]
			if !ok {
				http.Error(w, `{"status_code":34}`, http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":` + id + `,"title":"stub","poster_path":"` + path + `"}`))
		}))
		t.Cleanup(server.Close)
		opts = append(opts, testsupport.WithTMDBKey("test-key"), testsupport.WithTMDBBaseURL(server.URL))
	}
	opts = append([]testsupport.ConfigOption{testsupport.WithSampleCatalog()}, opts...)

	env.cfg = testsupport.NewConfig(t, opts...)
	env.configPath = filepath.Join(testsupport.BaseDir(env.cfg), "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
