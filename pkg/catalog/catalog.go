// Package catalog synthesizes pages of song records from a seed.
//
// Every field of a record is drawn from its own stream derived from
// (seed, page, index, field), so records reproduce exactly for the same
// inputs and changing how one field is drawn never shifts another.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/haivivi/songforge/pkg/audio/songs"
	"github.com/haivivi/songforge/pkg/locale"
	"github.com/haivivi/songforge/pkg/seed"
)

// SingleAlbum is the album name used for songs released on their own.
const SingleAlbum = "Single"

// Default batch parameters.
const (
	DefaultPage     = 1
	DefaultSeed     = 12345
	DefaultAvgLikes = 3.7
	DefaultCount    = 10
)

// MaxAvgLikes caps the average likes per song.
const MaxAvgLikes = math.MaxInt32

// Song is one generated record.
type Song struct {
	Index    int      `json:"index" yaml:"index" msgpack:"index"`
	Seed     int64    `json:"seed" yaml:"seed" msgpack:"seed"`
	Locale   string   `json:"locale" yaml:"locale" msgpack:"locale"`
	Page     int      `json:"page" yaml:"page" msgpack:"page"`
	AvgLikes float64  `json:"avg_likes" yaml:"avg_likes" msgpack:"avg_likes"`
	Title    string   `json:"title" yaml:"title" msgpack:"title"`
	Artist   string   `json:"artist" yaml:"artist" msgpack:"artist"`
	Album    string   `json:"album" yaml:"album" msgpack:"album"`
	Genre    string   `json:"genre" yaml:"genre" msgpack:"genre"`
	Review   string   `json:"review" yaml:"review" msgpack:"review"`
	Likes    int      `json:"likes" yaml:"likes" msgpack:"likes"`
	Notes    []string `json:"notes" yaml:"notes" msgpack:"notes"`
	Duration float64  `json:"duration" yaml:"duration" msgpack:"duration"`
	Cover    string   `json:"cover,omitempty" yaml:"cover,omitempty" msgpack:"cover,omitempty"`
}

// Melody returns the song's notes.
func (s *Song) Melody() []songs.Note {
	out := make([]songs.Note, len(s.Notes))
	for i, n := range s.Notes {
		out[i] = songs.Note(n)
	}
	return out
}

// Params selects one page of records.
type Params struct {
	Page     int     `json:"page" yaml:"page"`
	Locale   string  `json:"locale" yaml:"locale"`
	Seed     int64   `json:"seed" yaml:"seed"`
	AvgLikes float64 `json:"likes" yaml:"likes"`
	Count    int     `json:"count" yaml:"count"`
}

// ErrInvalidParams is returned by [Params.Validate].
var ErrInvalidParams = errors.New("catalog: invalid params")

// Validate rejects parameters that cannot name a page: a negative count, or
// an average likes that is not a finite number in [0, MaxAvgLikes]. Pages
// below 1 are accepted and read as page 1.
func (p Params) Validate() error {
	if p.Count < 0 {
		return fmt.Errorf("%w: count must not be negative, got %d", ErrInvalidParams, p.Count)
	}
	if math.IsNaN(p.AvgLikes) || p.AvgLikes < 0 || p.AvgLikes > MaxAvgLikes {
		return fmt.Errorf("%w: likes must be between 0 and %d, got %v", ErrInvalidParams, MaxAvgLikes, p.AvgLikes)
	}
	return nil
}

// DefaultParams returns the parameters used when a caller supplies none.
func DefaultParams() Params {
	return Params{
		Page:     DefaultPage,
		Locale:   locale.Default.Code(),
		Seed:     DefaultSeed,
		AvgLikes: DefaultAvgLikes,
		Count:    DefaultCount,
	}
}

// PageOf returns the page holding the record at a global index.
func PageOf(index, count int) int {
	if count <= 0 || index <= 0 {
		return 1
	}
	return (index-1)/count + 1
}

// Generator builds song records from a word bundle.
type Generator struct {
	bundle *locale.Bundle
}

// NewGenerator returns a generator drawing words from b. A nil bundle means
// the bundled word lists.
func NewGenerator(b *locale.Bundle) *Generator {
	if b == nil {
		b = locale.MustLoad()
	}
	return &Generator{bundle: b}
}

// Batch returns p.Count records for page p.Page in ascending index order.
// A non-positive count yields an empty slice. Pages below 1 are treated as 1.
func (g *Generator) Batch(p Params) []*Song {
	if p.Count <= 0 {
		return []*Song{}
	}
	page := max(p.Page, 1)
	loc := locale.Resolve(p.Locale)
	out := make([]*Song, p.Count)
	for i := range out {
		out[i] = g.song(loc, p.Seed, page, (page-1)*p.Count+i+1, p.AvgLikes)
	}
	return out
}

// Song regenerates the record at a global index. The result equals the
// matching element of the batch containing that index.
func (g *Generator) Song(p Params, index int) *Song {
	count := p.Count
	if count <= 0 {
		count = DefaultCount
	}
	return g.song(locale.Resolve(p.Locale), p.Seed, PageOf(index, count), index, p.AvgLikes)
}

func (g *Generator) song(loc locale.Locale, sd int64, page, index int, avgLikes float64) *Song {
	w := g.bundle.Words(loc)
	stream := func(f seed.Field) *seed.Stream {
		return seed.Derive(sd, page, index, f)
	}
	notes := songs.Generate(stream(seed.Notes))
	return &Song{
		Index:    index,
		Seed:     sd,
		Locale:   loc.Code(),
		Page:     page,
		AvgLikes: ClampLikes(avgLikes),
		Title:    title(stream(seed.Title), w),
		Artist:   artist(stream(seed.Artist), w),
		Album:    album(stream(seed.Album), w),
		Genre:    seed.Pick(stream(seed.Genre), w.Genres),
		Review:   review(stream(seed.Review), w),
		Likes:    Likes(stream(seed.Likes), avgLikes),
		Notes:    songs.Strings(notes),
		Duration: songs.TotalDuration(notes, songs.DefaultNoteDuration).Seconds(),
	}
}

// ClampLikes maps avg into [0, MaxAvgLikes]. NaN counts as zero and +Inf
// as the maximum.
func ClampLikes(avg float64) float64 {
	switch {
	case math.IsNaN(avg) || avg < 0:
		return 0
	case avg > MaxAvgLikes:
		return MaxAvgLikes
	}
	return avg
}

// Likes rounds avg to a neighbouring integer so that the mean over many
// draws approaches avg. avg is clamped with [ClampLikes] first.
func Likes(s *seed.Stream, avg float64) int {
	avg = ClampLikes(avg)
	base := math.Floor(avg)
	if s.Float64() < avg-base {
		return int(base) + 1
	}
	return int(base)
}

// title joins two or three title words.
func title(s *seed.Stream, w *locale.WordSet) string {
	n := 2 + s.IntN(2)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = seed.Pick(s, w.Titles)
	}
	return strings.Join(parts, " ")
}

// artist is either a person ("First Last") or a two-word band name.
func artist(s *seed.Stream, w *locale.WordSet) string {
	if s.Bool() {
		return seed.Pick(s, w.FirstNames) + " " + seed.Pick(s, w.LastNames)
	}
	return seed.Pick(s, w.BandWords) + " " + seed.Pick(s, w.BandWords)
}

func album(s *seed.Stream, w *locale.WordSet) string {
	if s.Bool() {
		return SingleAlbum
	}
	return seed.Pick(s, w.Titles) + " " + seed.Pick(s, w.Albums)
}

func review(s *seed.Stream, w *locale.WordSet) string {
	return seed.Pick(s, w.Reviews) + " " + seed.Pick(s, w.Reviews)
}

// Length returns the song's duration.
func (s *Song) Length() time.Duration {
	return time.Duration(s.Duration * float64(time.Second))
}
