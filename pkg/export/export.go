// Package export renders a batch of songs and packs the clips into one
// archive.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/songforge/pkg/archive"
	"github.com/haivivi/songforge/pkg/audio/songs"
	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/render"
	"github.com/haivivi/songforge/pkg/storage"
)

// Exporter renders songs in parallel and archives them in input order.
type Exporter struct {
	renderer *render.Renderer
	workers  int
}

// New returns an Exporter. workers <= 0 uses GOMAXPROCS.
func New(r *render.Renderer, workers int) *Exporter {
	return &Exporter{renderer: r, workers: workers}
}

// FileName returns the archive name for a page of songs.
func FileName(p catalog.Params) string {
	return fmt.Sprintf("songs-%d-%d.zip", max(p.Page, 1), p.Seed)
}

// Export returns a zip archive with one clip per song. Any render failure
// fails the whole export.
func (e *Exporter) Export(ctx context.Context, batch []*catalog.Song) ([]byte, error) {
	start := time.Now()
	melodies := make([][]songs.Note, len(batch))
	for i, s := range batch {
		melodies[i] = s.Melody()
	}
	clips, err := e.renderer.RenderAll(ctx, melodies, e.workers)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	entries := make([]archive.Entry, len(batch))
	for i, s := range batch {
		entries[i] = archive.Entry{
			Name: archive.EntryName(s.Title, s.Album, s.Artist, clips[i].Ext),
			Data: clips[i].Data,
		}
	}
	data, err := archive.Pack(entries)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	slog.Debug("export packed", "songs", len(batch), "bytes", len(data), "elapsed", time.Since(start))
	return data, nil
}

// ExportTo exports batch and stores the archive under name in fs. It
// returns the archive's location and size.
func (e *Exporter) ExportTo(ctx context.Context, fs storage.FileStore, name string, batch []*catalog.Song) (string, int, error) {
	data, err := e.Export(ctx, batch)
	if err != nil {
		return "", 0, err
	}
	loc, err := fs.Put(ctx, name, data, archive.MediaType)
	if err != nil {
		return "", 0, fmt.Errorf("export: %w", err)
	}
	slog.Info("export stored", "location", loc, "songs", len(batch), "bytes", len(data))
	return loc, len(data), nil
}
