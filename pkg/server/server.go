// Package server exposes song generation, audio rendering, cover lookup
// and archive export over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/cover"
	"github.com/haivivi/songforge/pkg/export"
	"github.com/haivivi/songforge/pkg/render"
	"github.com/haivivi/songforge/pkg/store"
)

// Options wires a Server's collaborators. Generator, Store and Renderer
// are required.
type Options struct {
	Generator *catalog.Generator
	Store     store.Store
	Renderer  *render.Renderer
	Workers   int

	// Enricher produces covers. When BackgroundCovers is set it also runs
	// after every page is served. Nil means the local fallback on demand.
	Enricher         *cover.Enricher
	BackgroundCovers bool

	// MaxCount caps the number of songs per page. Zero means 100.
	MaxCount int

	// AllowOrigin is the CORS allowed origin. Empty allows any.
	AllowOrigin string
}

// Server serves the songforge HTTP API.
type Server struct {
	gen      *catalog.Generator
	store    store.Store
	renderer *render.Renderer
	exporter *export.Exporter
	enricher *cover.Enricher
	maxCount int

	allowOrigin string
	background  bool
	wg          sync.WaitGroup
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Generator == nil || opts.Store == nil || opts.Renderer == nil {
		return nil, errors.New("server: generator, store and renderer are required")
	}
	enricher := opts.Enricher
	if enricher == nil {
		enricher = cover.NewEnricher(cover.Fallback{}, opts.Store, 1, 0)
	}
	maxCount := opts.MaxCount
	if maxCount <= 0 {
		maxCount = 100
	}
	return &Server{
		gen:         opts.Generator,
		store:       opts.Store,
		renderer:    opts.Renderer,
		exporter:    export.New(opts.Renderer, opts.Workers),
		enricher:    enricher,
		maxCount:    maxCount,
		allowOrigin: opts.AllowOrigin,
		background:  opts.BackgroundCovers,
	}, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(), CORS(s.allowOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.RegisterRoutes(r.Group("/api"))
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.Wait()
	return nil
}

// Wait blocks until all background cover enrichment has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

// enrich fills covers for batch without holding up the response.
func (s *Server) enrich(ctx context.Context, batch []*catalog.Song) {
	if !s.background {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Go(func() {
		s.enricher.Enrich(ctx, batch)
	})
}
