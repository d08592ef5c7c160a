package textutil

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// minTokenRunes is the shortest token kept by Tokenize.
const minTokenRunes = 2

// Fingerprint represents a weighted term vector for similarity comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a term-frequency fingerprint from the provided text.
// Returns nil if the text produces no valid tokens.
func NewFingerprint(text string) *Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return newFingerprint(counts)
}

func newFingerprint(weights map[string]float64) *Fingerprint {
	if len(weights) == 0 {
		return nil
	}
	var norm float64
	for _, w := range weights {
		norm += w * w
	}
	return &Fingerprint{tokens: weights, norm: math.Sqrt(norm)}
}

// Tokenize splits text into case-folded tokens, dropping short tokens and
// stopwords.
func Tokenize(text string) []string {
	folder := cases.Fold()
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		token := folder.String(field)
		if utf8.RuneCountInString(token) < minTokenRunes {
			continue
		}
		if IsStopword(token) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of unique tokens in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// Norm returns the L2 norm of the fingerprint weights.
func (f *Fingerprint) Norm() float64 {
	if f == nil {
		return 0
	}
	return f.norm
}

// Restrict drops every term not present in vocab. A nil vocab keeps all terms.
func (f *Fingerprint) Restrict(vocab map[string]struct{}) *Fingerprint {
	if f == nil || vocab == nil {
		return f
	}
	kept := make(map[string]float64, len(f.tokens))
	for token, w := range f.tokens {
		if _, ok := vocab[token]; ok {
			kept[token] = w
		}
	}
	return newFingerprint(kept)
}

// WithIDF returns a new Fingerprint with TF-IDF weights applied.
// Terms absent from the IDF map retain their original weight.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	weighted := make(map[string]float64, len(f.tokens))
	for token, count := range f.tokens {
		w := count
		if idfVal, ok := idf[token]; ok {
			w *= idfVal
		}
		if w == 0 {
			continue
		}
		weighted[token] = w
	}
	return newFingerprint(weighted)
}

// Normalized scales the fingerprint to unit length.
func (f *Fingerprint) Normalized() *Fingerprint {
	if f == nil || f.norm == 0 {
		return f
	}
	scaled := make(map[string]float64, len(f.tokens))
	for token, w := range f.tokens {
		scaled[token] = w / f.norm
	}
	return &Fingerprint{tokens: scaled, norm: 1}
}

// Corpus collects document and term frequency statistics for IDF computation.
type Corpus struct {
	docCount  int
	docFreq   map[string]int
	termCount map[string]float64
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{docFreq: make(map[string]int), termCount: make(map[string]float64)}
}

// Add registers a document. Nil fingerprints count as empty documents.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil {
		return
	}
	c.docCount++
	if fp == nil {
		return
	}
	for token, count := range fp.tokens {
		c.docFreq[token]++
		c.termCount[token] += count
	}
}

// Documents returns the number of documents added.
func (c *Corpus) Documents() int {
	if c == nil {
		return 0
	}
	return c.docCount
}

// IDF computes smoothed inverse document frequency weights:
// ln((1+N)/(1+df)) + 1 for each term.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docCount == 0 {
		return nil
	}
	idf := make(map[string]float64, len(c.docFreq))
	n := float64(c.docCount)
	for term, df := range c.docFreq {
		idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}
	return idf
}

// Vocabulary returns the maxFeatures terms with the highest corpus frequency,
// ties broken alphabetically. maxFeatures <= 0 returns nil, meaning no cap.
func (c *Corpus) Vocabulary(maxFeatures int) map[string]struct{} {
	if c == nil || maxFeatures <= 0 || maxFeatures >= len(c.termCount) {
		return nil
	}
	terms := make([]string, 0, len(c.termCount))
	for term := range c.termCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		ci, cj := c.termCount[terms[i]], c.termCount[terms[j]]
		if ci != cj {
			return ci > cj
		}
		return terms[i] < terms[j]
	})
	vocab := make(map[string]struct{}, maxFeatures)
	for _, term := range terms[:maxFeatures] {
		vocab[term] = struct{}{}
	}
	return vocab
}
