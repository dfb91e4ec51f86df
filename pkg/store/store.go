// Package store caches generated song metadata so that later edits, such as
// an attached cover, survive regeneration. Audio is never stored.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/locale"
)

// ErrNotFound is returned by Get when no record exists for a key.
var ErrNotFound = errors.New("store: not found")

// Key identifies a record by every input it was generated from. The page
// depends on the page size, and likes depend on the requested average, so an
// index alone never names one record.
type Key struct {
	Seed     int64
	Locale   string
	Page     int
	Index    int
	AvgLikes float64
}

// KeyOf returns the key of s.
func KeyOf(s *catalog.Song) Key {
	return Key{Seed: s.Seed, Locale: s.Locale, Page: s.Page, Index: s.Index, AvgLikes: s.AvgLikes}
}

// KeyFor returns the key of the record at index under p.
func KeyFor(p catalog.Params, index int) Key {
	count := p.Count
	if count <= 0 {
		count = catalog.DefaultCount
	}
	return Key{
		Seed:     p.Seed,
		Locale:   locale.Resolve(p.Locale).Code(),
		Page:     catalog.PageOf(index, count),
		Index:    index,
		AvgLikes: catalog.ClampLikes(p.AvgLikes),
	}
}

// String returns the key in "song:<seed>:<locale>:<page>:<index>:<likes>"
// form.
func (k Key) String() string {
	return "song:" + strconv.FormatInt(k.Seed, 10) + ":" + k.Locale +
		":" + strconv.Itoa(k.Page) + ":" + strconv.Itoa(k.Index) +
		":" + strconv.FormatFloat(k.AvgLikes, 'g', -1, 64)
}

// Store caches song records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record for key, or ErrNotFound.
	Get(ctx context.Context, key Key) (*catalog.Song, error)

	// Upsert inserts s or replaces the stored record with the same key.
	Upsert(ctx context.Context, s *catalog.Song) error

	// Close releases resources held by the store.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendSQLite Backend = "sqlite"
)

// Open returns the store for backend. Badger takes a directory and SQLite a
// database file; an empty path keeps either of them in memory.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendBadger:
		return NewBadger(BadgerOptions{Dir: path, InMemory: path == ""})
	case BackendSQLite:
		if path == "" {
			path = ":memory:"
		}
		return NewSQLite(path)
	}
	return nil, fmt.Errorf("store: unknown backend %q", backend)
}

// GetOrGenerate returns the cached record for s's key, or caches s and
// returns it when none exists. Store failures are logged and s is returned,
// so a broken cache never blocks generation.
func GetOrGenerate(ctx context.Context, st Store, s *catalog.Song) *catalog.Song {
	cached, err := st.Get(ctx, KeyOf(s))
	if err == nil {
		return cached
	}
	if !errors.Is(err, ErrNotFound) {
		slog.Warn("store get failed", "key", KeyOf(s).String(), "error", err)
		return s
	}
	if err := st.Upsert(ctx, s); err != nil {
		slog.Warn("store upsert failed", "key", KeyOf(s).String(), "error", err)
	}
	return s
}

func encode(s *catalog.Song) ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("store: marshal %s: %w", KeyOf(s), err)
	}
	return data, nil
}

func decode(data []byte) (*catalog.Song, error) {
	var s catalog.Song
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("store: unmarshal: %w", err)
	}
	return &s, nil
}
