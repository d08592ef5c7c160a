package catalog

import (
	"fmt"
	"math"

	"reelmatch/internal/services"
)

// symmetryTolerance bounds |m[i][j] - m[j][i]|.
const symmetryTolerance = 1e-6

func validate(entries []Entry, matrix [][]float64) error {
	if len(entries) == 0 {
		return invalid("catalog has no entries")
	}
	if len(matrix) != len(entries) {
		return invalid(fmt.Sprintf("similarity matrix has %d rows for %d entries", len(matrix), len(entries)))
	}
	for i, entry := range entries {
		if entry.Title == "" {
			return invalid(fmt.Sprintf("entry %d has empty title", i))
		}
	}
	n := len(matrix)
	for i, row := range matrix {
		if len(row) != n {
			return invalid(fmt.Sprintf("similarity matrix is not square: row %d has %d columns, want %d", i, len(row), n))
		}
	}
	for i, row := range matrix {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return invalid(fmt.Sprintf("similarity[%d][%d] is not finite", i, j))
			}
			if v < 0 {
				return invalid(fmt.Sprintf("similarity[%d][%d] is negative (%g)", i, j, v))
			}
			if j > i && math.Abs(v-matrix[j][i]) > symmetryTolerance {
				return invalid(fmt.Sprintf("similarity matrix is asymmetric at (%d,%d)", i, j))
			}
			if v > row[i] {
				return invalid(fmt.Sprintf("similarity[%d][%d] exceeds diagonal", i, j))
			}
		}
	}
	return nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrValidation, "catalog", "validate", message, nil)
}
