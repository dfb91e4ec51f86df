package store

import (
	"context"
	"slices"
	"sync"

	"github.com/haivivi/songforge/pkg/catalog"
)

// Memory is an in-process Store. Records are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[Key]*catalog.Song
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[Key]*catalog.Song)}
}

func (m *Memory) Get(_ context.Context, key Key) (*catalog.Song, error) {
	m.mu.RLock()
	s, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *Memory) Upsert(_ context.Context, s *catalog.Song) error {
	cp := clone(s)
	m.mu.Lock()
	m.data[KeyOf(cp)] = cp
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) Close() error { return nil }

func clone(s *catalog.Song) *catalog.Song {
	cp := *s
	cp.Notes = slices.Clone(s.Notes)
	return &cp
}

var _ Store = (*Memory)(nil)
