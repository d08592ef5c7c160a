package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"reelmatch/internal/services"
)

// DefaultK is the number of recommendations returned when callers pass k <= 0.
const DefaultK = 5

// Entry is one movie in the catalog. Tags is the feature text the builder
// fingerprints; lookups never read it.
type Entry struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
	Tags    string `json:"tags,omitempty"`
}

// Recommendation is a read-only projection of a neighbouring entry.
type Recommendation struct {
	Title   string  `json:"title"`
	MovieID int64   `json:"movie_id"`
	Score   float64 `json:"score"`
}

// Catalog pairs entries with their similarity matrix. It is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	entries []Entry
	matrix  [][]float64
	byTitle map[string]int
	byID    map[int64]int
	folded  []string
}

// New validates entries and matrix and returns a Catalog over copies of them.
func New(entries []Entry, matrix [][]float64) (*Catalog, error) {
	if err := validate(entries, matrix); err != nil {
		return nil, err
	}
	folder := cases.Fold()
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		matrix:  make([][]float64, len(matrix)),
		byTitle: make(map[string]int, len(entries)),
		byID:    make(map[int64]int, len(entries)),
		folded:  make([]string, len(entries)),
	}
	copy(c.entries, entries)
	for i, row := range matrix {
		c.matrix[i] = append([]float64(nil), row...)
	}
	for i, entry := range c.entries {
		// Duplicate titles and ids resolve to their first occurrence.
		if _, ok := c.byTitle[entry.Title]; !ok {
			c.byTitle[entry.Title] = i
		}
		if _, ok := c.byID[entry.MovieID]; !ok {
			c.byID[entry.MovieID] = i
		}
		c.folded[i] = folder.String(entry.Title)
	}
	return c, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Similarity returns a copy of the matrix.
func (c *Catalog) Similarity() [][]float64 {
	out := make([][]float64, len(c.matrix))
	for i, row := range c.matrix {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Titles lists titles in catalog order.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.entries))
	for i, entry := range c.entries {
		titles[i] = entry.Title
	}
	return titles
}

// Search returns titles containing query, compared with Unicode case folding.
// An empty query returns every title.
func (c *Catalog) Search(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Titles()
	}
	needle := cases.Fold().String(query)
	var matches []string
	for i, folded := range c.folded {
		if strings.Contains(folded, needle) {
			matches = append(matches, c.entries[i].Title)
		}
	}
	return matches
}

// Entry looks up an entry by movie id.
func (c *Catalog) Entry(movieID int64) (Entry, bool) {
	idx, ok := c.byID[movieID]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Recommend returns up to k entries most similar to title, ordered by
// descending score with ties kept in catalog order. The title itself is never
// included. Title matching is exact; unknown titles return *NotFoundError.
func (c *Catalog) Recommend(title string, k int) ([]Recommendation, error) {
	idx, ok := c.byTitle[title]
	if !ok {
		return nil, &NotFoundError{Title: title, Suggestions: c.suggest(title, maxSuggestions)}
	}
	if k <= 0 {
		k = DefaultK
	}

	row := c.matrix[idx]
	candidates := make([]int, 0, len(c.entries)-1)
	for i := range c.entries {
		if i != idx {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return row[candidates[a]] > row[candidates[b]]
	})
	if k < len(candidates) {
		candidates = candidates[:k]
	}

	out := make([]Recommendation, len(candidates))
	for i, other := range candidates {
		out[i] = Recommendation{
			Title:   c.entries[other].Title,
			MovieID: c.entries[other].MovieID,
			Score:   row[other],
		}
	}
	return out, nil
}

const maxSuggestions = 3

// suggest returns titles that match title case-insensitively, then titles
// that contain it, in catalog order.
func (c *Catalog) suggest(title string, limit int) []string {
	needle := cases.Fold().String(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}
	var exact, partial []string
	for i, folded := range c.folded {
		switch {
		case folded == needle:
			exact = append(exact, c.entries[i].Title)
		case strings.Contains(folded, needle):
			partial = append(partial, c.entries[i].Title)
		}
	}
	out := append(exact, partial...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NotFoundError reports a title missing from the catalog.
type NotFoundError struct {
	Title       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("title %q not in catalog", e.Title)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(quoteAll(e.Suggestions), ", "))
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	return services.ErrNotFound
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
