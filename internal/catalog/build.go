package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"reelmatch/internal/logging"
	"reelmatch/internal/services"
	"reelmatch/internal/textutil"
)

// BuildOptions tunes catalog rebuilds.
type BuildOptions struct {
	// MaxFeatures caps the vocabulary to the most frequent terms; 0 keeps all.
	MaxFeatures int
	// Workers bounds the goroutines computing matrix rows; 0 uses GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// ReadCSV parses catalog rows from a CSV with a header naming movie_id (or
// id), title and tags columns. Extra columns are ignored.
func ReadCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, services.Wrap(services.ErrValidation, "catalog", "read csv", "empty source", nil)
		}
		return nil, services.Wrap(services.ErrValidation, "catalog", "read csv", "read header", err)
	}
	idCol, titleCol, tagsCol := -1, -1, -1
	folder := cases.Fold()
	for i, name := range header {
		switch folder.String(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "movie_id":
			idCol = i
		case "id":
			if idCol < 0 {
				idCol = i
			}
		case "title":
			titleCol = i
		case "tags":
			tagsCol = i
		}
	}
	if idCol < 0 || titleCol < 0 || tagsCol < 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "read csv",
			"header must contain movie_id (or id), title and tags columns", nil)
	}

	var entries []Entry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "catalog", "read csv", fmt.Sprintf("line %d", line), err)
		}
		field := func(col int) string {
			if col < len(record) {
				return strings.TrimSpace(record[col])
			}
			return ""
		}
		id, err := strconv.ParseInt(field(idCol), 10, 64)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "catalog", "read csv",
				fmt.Sprintf("line %d: invalid movie id %q", line, field(idCol)), nil)
		}
		title := field(titleCol)
		if title == "" {
			return nil, services.Wrap(services.ErrValidation, "catalog", "read csv",
				fmt.Sprintf("line %d: empty title", line), nil)
		}
		entries = append(entries, Entry{MovieID: id, Title: title, Tags: field(tagsCol)})
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "read csv", "no rows after header", nil)
	}
	return entries, nil
}

// Build fingerprints each entry's tags with smoothed TF-IDF and computes the
// pairwise cosine matrix.
func Build(ctx context.Context, entries []Entry, opts BuildOptions) (*Catalog, error) {
	logger := logging.NewComponentLogger(opts.Logger, "catalog")
	if len(entries) == 0 {
		return nil, invalid("catalog has no entries")
	}

	raw := make([]*textutil.Fingerprint, len(entries))
	corpus := textutil.NewCorpus()
	for i, entry := range entries {
		raw[i] = textutil.NewFingerprint(entry.Tags)
		corpus.Add(raw[i])
	}
	vocab := corpus.Vocabulary(opts.MaxFeatures)
	if vocab != nil {
		// Frequencies must be recomputed over the capped vocabulary.
		corpus = textutil.NewCorpus()
		for i := range raw {
			raw[i] = raw[i].Restrict(vocab)
			corpus.Add(raw[i])
		}
	}
	idf := corpus.IDF()

	fps := make([]*textutil.Fingerprint, len(raw))
	empty := 0
	for i, fp := range raw {
		fps[i] = fp.WithIDF(idf).Normalized()
		if fps[i] == nil {
			empty++
		}
	}
	if empty > 0 {
		logging.WarnWithContext(logger, "entries without usable tags", "catalog_empty_tags",
			logging.Int("count", empty),
			logging.String(logging.FieldImpact, "those titles only match themselves"),
			logging.String(logging.FieldErrorHint, "add tag text for every row"))
	}

	matrix, err := textutil.SimilarityMatrix(ctx, fps, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("compute similarity: %w", err)
	}
	logger.Info("catalog built",
		logging.Int("entries", len(entries)),
		logging.Int("vocabulary", len(idf)))
	return New(entries, matrix)
}
