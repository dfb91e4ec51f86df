package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haivivi/songforge/pkg/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS song_records (
	seed      INTEGER NOT NULL,
	locale    TEXT    NOT NULL,
	page      INTEGER NOT NULL,
	idx       INTEGER NOT NULL,
	avg_likes REAL    NOT NULL,
	title     TEXT    NOT NULL,
	artist    TEXT    NOT NULL,
	data      BLOB    NOT NULL,
	updated   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (seed, locale, page, idx, avg_likes)
);`

// SQLite is a Store backed by a single SQLite table. Title and artist are
// kept as columns for ad hoc queries; the full record is a msgpack blob.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at path. ":memory:" keeps it in
// process memory.
func NewSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: ensure data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: pragma journal_mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key Key) (*catalog.Song, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM song_records
		 WHERE seed = ? AND locale = ? AND page = ? AND idx = ? AND avg_likes = ?`,
		key.Seed, key.Locale, key.Page, key.Index, key.AvgLikes,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return decode(data)
}

func (s *SQLite) Upsert(ctx context.Context, song *catalog.Song) error {
	data, err := encode(song)
	if err != nil {
		return err
	}
	key := KeyOf(song)
	_, err = s.db.ExecContext(ctx, `
INSERT INTO song_records (seed, locale, page, idx, avg_likes, title, artist, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (seed, locale, page, idx, avg_likes) DO UPDATE SET
	title = excluded.title,
	artist = excluded.artist,
	data = excluded.data,
	updated = CURRENT_TIMESTAMP`,
		key.Seed, key.Locale, key.Page, key.Index, key.AvgLikes, song.Title, song.Artist, data,
	)
	if err != nil {
		return fmt.Errorf("store: upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
