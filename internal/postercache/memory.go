package postercache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process cache. The zero value is not usable; call NewMemory.
type Memory struct {
	mu      sync.RWMutex
	entries map[int64]Entry
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[int64]Entry)}
}

// Lookup returns the entry for movieID if present.
func (m *Memory) Lookup(_ context.Context, movieID int64) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[movieID]
	return entry, ok, nil
}

// Store records entry unless movieID is already cached, and returns the entry
// that ends up cached.
func (m *Memory) Store(_ context.Context, entry Entry) (Entry, error) {
	if entry.ResolvedAt.IsZero() {
		entry.ResolvedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[entry.MovieID]; ok {
		return existing, nil
	}
	m.entries[entry.MovieID] = entry
	return entry, nil
}

// List returns all entries sorted by movie id.
func (m *Memory) List(context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].MovieID < entries[j].MovieID })
	return entries, nil
}

// Clear removes every entry.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[int64]Entry)
	return nil
}

// Count returns the number of cached entries.
func (m *Memory) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
