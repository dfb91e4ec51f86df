package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haivivi/songforge/pkg/archive"
	"github.com/haivivi/songforge/pkg/audio/songs"
	"github.com/haivivi/songforge/pkg/catalog"
	"github.com/haivivi/songforge/pkg/export"
	"github.com/haivivi/songforge/pkg/locale"
	"github.com/haivivi/songforge/pkg/store"
)

// RegisterRoutes mounts the API on rg.
func (s *Server) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/songs", s.listSongs)              // GET /api/songs
	rg.GET("/songs/:index", s.getSong)         // GET /api/songs/:index
	rg.GET("/songs/:index/audio", s.songAudio) // GET /api/songs/:index/audio
	rg.GET("/songs/:index/cover", s.songCover) // GET /api/songs/:index/cover
	rg.POST("/songs/export", s.exportSongs)    // POST /api/songs/export
	rg.GET("/locales", s.listLocales)          // GET /api/locales
}

// params reads batch parameters from the query string. Missing or invalid
// values take their defaults.
func (s *Server) params(c *gin.Context) catalog.Params {
	def := catalog.DefaultParams()
	p := catalog.Params{
		Page:     parseInt(c.Query("page"), def.Page),
		Locale:   c.DefaultQuery("lang", def.Locale),
		Seed:     parseInt64(c.Query("seed"), def.Seed),
		AvgLikes: parseFloat(c.Query("likes"), def.AvgLikes),
		Count:    parseInt(c.Query("count"), def.Count),
	}
	return s.clamp(p)
}

func (s *Server) clamp(p catalog.Params) catalog.Params {
	p.Page = max(p.Page, 1)
	p.Count = min(max(p.Count, 0), s.maxCount)
	p.AvgLikes = catalog.ClampLikes(p.AvgLikes)
	p.Locale = locale.Resolve(p.Locale).Code()
	return p
}

// cached replaces generated records with their cached versions, caching any
// that are new.
func (s *Server) cached(c *gin.Context, batch []*catalog.Song) []*catalog.Song {
	out := make([]*catalog.Song, len(batch))
	for i, song := range batch {
		out[i] = store.GetOrGenerate(c.Request.Context(), s.store, song)
	}
	return out
}

func (s *Server) listSongs(c *gin.Context) {
	p := s.params(c)
	batch := s.cached(c, s.gen.Batch(p))
	s.enrich(c.Request.Context(), batch)
	c.JSON(http.StatusOK, gin.H{
		"page":  p.Page,
		"lang":  p.Locale,
		"seed":  p.Seed,
		"likes": p.AvgLikes,
		"count": p.Count,
		"items": batch,
	})
}

// song regenerates the record named by the :index path parameter.
func (s *Server) song(c *gin.Context) (*catalog.Song, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a positive integer"})
		return nil, false
	}
	p := s.params(c)
	return store.GetOrGenerate(c.Request.Context(), s.store, s.gen.Song(p, index)), true
}

func (s *Server) getSong(c *gin.Context) {
	song, ok := s.song(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, song)
}

func (s *Server) songAudio(c *gin.Context) {
	song, ok := s.song(c)
	if !ok {
		return
	}
	audio, err := s.renderer.Render(song.Melody())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, songs.ErrUnknownNote) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	name := archive.EntryName(song.Title, song.Album, song.Artist, audio.Ext)
	c.Header("Content-Disposition", contentDisposition("inline", name))
	c.Data(http.StatusOK, audio.MediaType, audio.Data)
}

func (s *Server) songCover(c *gin.Context) {
	song, ok := s.song(c)
	if !ok {
		return
	}
	url, err := s.enricher.Cover(c.Request.Context(), song)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "cover generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": song.Index, "cover": url})
}

func (s *Server) exportSongs(c *gin.Context) {
	p := catalog.DefaultParams()
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	p = s.clamp(p)
	batch := s.gen.Batch(p)
	if len(batch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be positive"})
		return
	}
	data, err := s.exporter.Export(c.Request.Context(), batch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", contentDisposition("attachment", export.FileName(p)))
	c.Data(http.StatusOK, archive.MediaType, data)
}

func (s *Server) listLocales(c *gin.Context) {
	items := make([]gin.H, 0, len(locale.Supported()))
	for _, l := range locale.Supported() {
		items = append(items, gin.H{"code": l.Code(), "tag": l.Tag(), "default": l == locale.Default})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// contentDisposition quotes name and adds an RFC 5987 form for non-ASCII
// titles.
func contentDisposition(kind, name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	v := fmt.Sprintf("%s; filename=%q", kind, ascii)
	if ascii != name {
		v += "; filename*=UTF-8''" + pathEscape(name)
	}
	return v
}

func pathEscape(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if c < 0x80 && (c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || strings.IndexByte("-._~", c) >= 0) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseInt64(s string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f > catalog.MaxAvgLikes || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
