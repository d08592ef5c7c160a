package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelmatch/internal/services"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	c := sampleCatalog(t)
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")
	if err := Save(path, c); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != c.Len() {
		t.Fatalf("Len = %d, want %d", loaded.Len(), c.Len())
	}
	recs, err := loaded.Recommend("Avatar", 1)
	if err != nil || recs[0].Title != "Avatar: The Way of Water" {
		t.Fatalf("Recommend after load = %v, %v", recs, err)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "catalog build") {
		t.Fatalf("diagnostic should point at rebuild: %v", err)
	}
}

func TestDecodeRejectsCorruptArtifacts(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"version":1,`, "malformed"},
		{"wrong version", `{"version":2,"entries":[{"movie_id":1,"title":"A"}],"similarity":[[1]]}`, "version"},
		{"size mismatch", `{"version":1,"entries":[{"movie_id":1,"title":"A"}],"similarity":[[1,0],[0,1]]}`, "rows"},
		{"asymmetric", `{"version":1,"entries":[{"movie_id":1,"title":"A"},{"movie_id":2,"title":"B"}],"similarity":[[1,0.1],[0.3,1]]}`, "asymmetric"},
		{"unknown field", `{"version":1,"entries":[],"similarity":[],"extra":true}`, "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEncodeWritesVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleCatalog(t)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(buf.String(), `{"version":1,`) {
		t.Fatalf("unexpected artifact prefix: %.40s", buf.String())
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, sampleCatalog(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
