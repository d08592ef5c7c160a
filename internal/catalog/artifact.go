package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	json "github.com/goccy/go-json"

	"reelmatch/internal/services"
)

// ArtifactVersion is the artifact schema written by Save.
const ArtifactVersion = 1

type artifact struct {
	Version    int         `json:"version"`
	Entries    []Entry     `json:"entries"`
	Similarity [][]float64 `json:"similarity"`
}

// Load reads and validates the artifact at path. A missing or defective
// artifact is an error; no partially valid catalog is ever returned.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "catalog", "load",
				fmt.Sprintf("artifact %s not found; run `reelmatch catalog build`", path), nil)
		}
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "load", "open artifact", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Decode parses an artifact from r.
func Decode(r io.Reader) (*Catalog, error) {
	var art artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&art); err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "decode", "malformed artifact JSON", err)
	}
	if art.Version != ArtifactVersion {
		return nil, invalid(fmt.Sprintf("unsupported artifact version %d", art.Version))
	}
	return New(art.Entries, art.Similarity)
}

// Encode writes c as an artifact to w.
func Encode(w io.Writer, c *Catalog) error {
	enc := json.NewEncoder(w)
	return enc.Encode(artifact{
		Version:    ArtifactVersion,
		Entries:    c.entries,
		Similarity: c.matrix,
	})
}

// Save writes c to path atomically. Concurrent builders serialize on a
// sibling lock file; readers only ever see a complete artifact.
func Save(path string, c *Catalog) error {
	if c == nil {
		return errors.New("save catalog: nil catalog")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := Encode(tmp, c); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
