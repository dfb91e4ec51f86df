package cover

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/store"
)

// Enricher attaches covers to cached songs in the background.
type Enricher struct {
	provider Provider
	store    store.Store
	workers  int
	timeout  time.Duration
}

// NewEnricher returns an Enricher running at most workers provider calls at
// once, each bounded by timeout.
func NewEnricher(p Provider, st store.Store, workers int, timeout time.Duration) *Enricher {
	if workers <= 0 {
		workers = 2
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Enricher{provider: p, store: st, workers: workers, timeout: timeout}
}

// Cover returns the cover for s, generating and storing one if the cached
// record has none.
func (e *Enricher) Cover(ctx context.Context, s *catalog.Song) (string, error) {
	cached := store.GetOrGenerate(ctx, e.store, s)
	if cached.Cover != "" {
		return cached.Cover, nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	url, err := e.provider.Generate(ctx, s.Title, s.Artist, s.Genre)
	if err != nil {
		return "", err
	}
	updated := *cached
	updated.Cover = url
	if err := e.store.Upsert(ctx, &updated); err != nil {
		slog.Warn("cover store failed", "key", store.KeyOf(s).String(), "error", err)
	}
	return url, nil
}

// Enrich fills covers for songs and returns once all attempts finished or
// ctx is done. Individual failures are logged and skipped.
func (e *Enricher) Enrich(ctx context.Context, songs []*catalog.Song) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, s := range songs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := e.Cover(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("cover generation failed", "index", s.Index, "title", s.Title, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}
