package textutil

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	if len(b.tokens) < len(a.tokens) {
		a, b = b, a
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	sim := dot / (a.norm * b.norm)
	if sim > 1 {
		sim = 1
	}
	return sim
}

// SimilarityMatrix computes the symmetric pairwise cosine matrix for fps.
// The diagonal is always 1. Rows are spread across workers goroutines;
// workers <= 0 uses GOMAXPROCS.
func SimilarityMatrix(ctx context.Context, fps []*Fingerprint, workers int) ([][]float64, error) {
	n := len(fps)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Row i owns cells (i, j) and (j, i) for j >= i.
			matrix[i][i] = 1
			for j := i + 1; j < n; j++ {
				sim := CosineSimilarity(fps[i], fps[j])
				matrix[i][j] = sim
				matrix[j][i] = sim
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matrix, nil
}
