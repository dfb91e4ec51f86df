// Package seed derives independent pseudo-random streams from a caller seed.
//
// Every semantic field of a generated song (title, artist, album, ...) draws
// from its own stream. A stream is identified by the tuple
// (seed, page, index, field) and is rebuilt from scratch on every call, so
// changing how one field consumes randomness never shifts the output of
// another field, and concurrent callers never share generator state.
//
// Example:
//
//	s := seed.Derive(12345, 1, 3, seed.Title)
//	word := words[s.IntN(len(words))]
//
// The mixing function and the draw helpers are part of the reproducibility
// contract: the same tuple yields the same draws on every platform and
// every release.
package seed

import (
	"fmt"
	"math/bits"
	"math/rand/v2"
)

// Field tags a semantic field of a song record.
type Field uint8

// Field tags. Values are persisted implicitly through generated content and
// must never be renumbered.
const (
	Title  Field = 1
	Artist Field = 2
	Album  Field = 3
	Genre  Field = 4
	Notes  Field = 5
	Review Field = 6
	Likes  Field = 7
)

// Fields lists every field tag in ascending order.
var Fields = []Field{Title, Artist, Album, Genre, Notes, Review, Likes}

// String returns the field name.
func (f Field) String() string {
	switch f {
	case Title:
		return "title"
	case Artist:
		return "artist"
	case Album:
		return "album"
	case Genre:
		return "genre"
	case Notes:
		return "notes"
	case Review:
		return "review"
	case Likes:
		return "likes"
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// Salts applied to each input before mixing. Distinct odd 64-bit constants
// keep the combination order-sensitive: swapping page and index produces a
// different state.
const (
	pageSalt   uint64 = 0x9e3779b97f4a7c15
	indexSalt  uint64 = 0xc2b2ae3d27d4eb4f
	fieldSalt  uint64 = 0x165667b19e3779f9
	streamSalt uint64 = 0xd6e8feb86659fd93
)

// Mix folds the four inputs into a single 64-bit state.
func Mix(seed int64, page, index int, field Field) uint64 {
	h := finalize(uint64(seed))
	h = finalize(h ^ (uint64(page) * pageSalt))
	h = finalize(h ^ (uint64(index) * indexSalt))
	h = finalize(h ^ (uint64(field) * fieldSalt))
	return h
}

// finalize is the splitmix64 output function.
func finalize(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Stream is a deterministic sequence of draws for one field of one record.
// A Stream is not safe for concurrent use; derive one per goroutine.
type Stream struct {
	src *rand.PCG
}

// Derive returns a fresh stream for the given tuple.
func Derive(seed int64, page, index int, field Field) *Stream {
	state := Mix(seed, page, index, field)
	return &Stream{src: rand.NewPCG(state, finalize(state^streamSalt))}
}

// Uint64 returns the next raw 64-bit draw.
func (s *Stream) Uint64() uint64 {
	return s.src.Uint64()
}

// Float64 returns a uniform value in [0, 1) with 53 bits of precision.
func (s *Stream) Float64() float64 {
	return float64(s.src.Uint64()>>11) * 0x1p-53
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
//
// The value is the high word of a 64x64 multiplication, which keeps the
// result a pure function of a single draw.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		panic("seed: IntN called with non-positive n")
	}
	hi, _ := bits.Mul64(s.src.Uint64(), uint64(n))
	return int(hi)
}

// Bool returns true with probability one half.
func (s *Stream) Bool() bool {
	return s.src.Uint64()>>63 == 1
}

// Pick returns a uniformly chosen element of items. It panics if items is empty.
func Pick[T any](s *Stream, items []T) T {
	return items[s.IntN(len(items))]
}
