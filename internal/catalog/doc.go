// Package catalog owns the immutable movie catalog and its precomputed
// similarity matrix.
//
// A Catalog is loaded from a JSON artifact that is validated in full before it
// is used; any defect fails the load. Recommend performs the nearest-neighbour
// lookup for a title. The build path turns a CSV of titles and tag text into a
// fresh artifact using TF-IDF fingerprints.
package catalog
