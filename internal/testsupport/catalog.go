package testsupport

import (
	"testing"

	"reelmatch/internal/catalog"
)

// SampleEntries is a four-title catalog whose similarity ranking is easy to
// reason about: Alien is closest to Aliens, then Heat, then Up.
func SampleEntries() []catalog.Entry {
	return []catalog.Entry{
		{MovieID: 348, Title: "Alien", Tags: "space horror creature crew"},
		{MovieID: 679, Title: "Aliens", Tags: "space horror creature marines"},
		{MovieID: 949, Title: "Heat", Tags: "heist crew detective"},
		{MovieID: 14160, Title: "Up", Tags: "balloon adventure"},
	}
}

// SampleMatrix is the similarity matrix paired with SampleEntries.
func SampleMatrix() [][]float64 {
	return [][]float64{
		{1, 0.8, 0.3, 0.1},
		{0.8, 1, 0.2, 0.05},
		{0.3, 0.2, 1, 0},
		{0.1, 0.05, 0, 1},
	}
}

// SampleCatalog builds a catalog from SampleEntries and SampleMatrix.
func SampleCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(SampleEntries(), SampleMatrix())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

// WriteCatalog saves c as an artifact at path.
func WriteCatalog(t testing.TB, path string, c *catalog.Catalog) {
	t.Helper()
	if err := catalog.Save(path, c); err != nil {
		t.Fatalf("catalog.Save: %v", err)
	}
}
