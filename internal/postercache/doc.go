// Package postercache stores resolved poster URLs keyed by TMDB movie id.
//
// Two implementations share the same first-write-wins contract: Memory keeps
// entries for the life of the process, and SQLite persists them across runs.
// Neither evicts. Storing an id that is already present leaves the original
// entry in place and returns it.
package postercache
