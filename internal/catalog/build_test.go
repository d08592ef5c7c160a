package catalog

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"reelmatch/internal/services"
)

const sampleCSV = `movie_id,title,tags,extra
19995,Avatar,"space marine alien planet colonization",x
679,Aliens,"space marine alien colony",x
597,Titanic,"ship romance iceberg ocean",x
44214,Black Swan,"ballet psychological thriller",x
`

func TestReadCSV(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len = %d, want 4", len(entries))
	}
	if entries[0].MovieID != 19995 || entries[0].Title != "Avatar" || !strings.Contains(entries[0].Tags, "colonization") {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
}

func TestReadCSVAcceptsIDColumn(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader("id,Title,Tags\n7,Seven,crime\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if entries[0].MovieID != 7 {
		t.Fatalf("MovieID = %d", entries[0].MovieID)
	}
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"missing column": "movie_id,title\n1,A\n",
		"bad id":         "movie_id,title,tags\nabc,A,x\n",
		"empty title":    "movie_id,title,tags\n1,,x\n",
		"no rows":        "movie_id,title,tags\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(body)); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestBuildProducesValidMatrix(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	c, err := Build(context.Background(), entries, BuildOptions{Workers: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := c.Similarity()
	for i := range m {
		if math.Abs(m[i][i]-1) > 1e-9 {
			t.Fatalf("diagonal[%d] = %v", i, m[i][i])
		}
		for j := range m[i] {
			if m[i][j] != m[j][i] {
				t.Fatalf("asymmetric at (%d,%d)", i, j)
			}
		}
	}
	recs, err := c.Recommend("Avatar", 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if recs[0].Title != "Aliens" {
		t.Fatalf("nearest to Avatar = %q, want Aliens", recs[0].Title)
	}
	if recs[0].Score <= 0 || recs[0].Score >= 1 {
		t.Fatalf("score out of range: %v", recs[0].Score)
	}
}

func TestBuildWithFeatureCap(t *testing.T) {
	entries, _ := ReadCSV(strings.NewReader(sampleCSV))
	c, err := Build(context.Background(), entries, BuildOptions{MaxFeatures: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// The cap keeps "alien" and "marine"; Titanic keeps no terms.
	recs, err := c.Recommend("Titanic", 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, r := range recs {
		if r.Score != 0 {
			t.Fatalf("Titanic should share nothing under the cap, got %+v", r)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	if _, err := Build(context.Background(), nil, BuildOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
