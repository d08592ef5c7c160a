// Package textutil provides the text processing behind catalog rebuilds:
// tokenization, TF-IDF fingerprints, and cosine similarity.
//
// Tokenization splits on anything that is not a Unicode letter or digit,
// case-folds each token, drops tokens shorter than two runes, and removes
// English stopwords. Fingerprints hold term weights plus their L2 norm so
// similarity is a sparse dot product.
package textutil
