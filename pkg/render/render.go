// Package render turns note sequences into encoded audio clips.
package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haivivi/songforge/pkg/audio/codec/mp3"
	"github.com/haivivi/songforge/pkg/audio/codec/wav"
	"github.com/haivivi/songforge/pkg/audio/pcm"
	"github.com/haivivi/songforge/pkg/audio/songs"
)

// Codec names an output encoding.
type Codec string

const (
	WAV Codec = "wav"
	MP3 Codec = "mp3"
)

// ErrUnsupportedCodec is returned for codec names other than wav and mp3.
var ErrUnsupportedCodec = errors.New("render: unsupported codec")

// ParseCodec parses a codec name, case-insensitively. Empty means WAV.
func ParseCodec(name string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(name))); c {
	case "":
		return WAV, nil
	case WAV, MP3:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCodec, name)
}

// Audio is one encoded clip.
type Audio struct {
	Data       []byte
	SampleRate int
	Channels   int
	MediaType  string
	Ext        string
}

// Renderer synthesizes and encodes melodies. It holds no mutable state and
// is safe for concurrent use.
type Renderer struct {
	codec   Codec
	format  pcm.Format
	noteDur time.Duration
	bitrate int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCodec selects the output encoding.
func WithCodec(c Codec) Option {
	return func(r *Renderer) { r.codec = c }
}

// WithFormat sets the PCM format synthesized before encoding.
func WithFormat(f pcm.Format) Option {
	return func(r *Renderer) { r.format = f }
}

// WithNoteDuration sets the length of each note.
func WithNoteDuration(d time.Duration) Option {
	return func(r *Renderer) { r.noteDur = d }
}

// WithBitrate sets the MP3 bitrate in kbps.
func WithBitrate(kbps int) Option {
	return func(r *Renderer) { r.bitrate = kbps }
}

// New returns a renderer producing 44.1 kHz mono WAV unless configured
// otherwise.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		codec:   WAV,
		format:  songs.DefaultFormat,
		noteDur: songs.DefaultNoteDuration,
		bitrate: mp3.DefaultBitrate,
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, err := ParseCodec(string(r.codec)); err != nil {
		return nil, err
	}
	if r.codec == MP3 && !mp3.Available() {
		return nil, mp3.ErrUnavailable
	}
	if r.noteDur <= 0 {
		return nil, fmt.Errorf("render: note duration must be positive, got %v", r.noteDur)
	}
	return r, nil
}

// Codec returns the configured output encoding.
func (r *Renderer) Codec() Codec { return r.codec }

// Ext returns the file extension of rendered clips, without a dot.
func (r *Renderer) Ext() string { return string(r.codec) }

// MediaType returns the MIME type of rendered clips.
func (r *Renderer) MediaType() string {
	if r.codec == MP3 {
		return mp3.MediaType
	}
	return wav.MediaType
}

// Render synthesizes notes and encodes the result. An empty melody renders
// the default melody. Unknown notes fail the call.
func (r *Renderer) Render(notes []songs.Note) (*Audio, error) {
	chunk, err := songs.Synthesize(notes, r.format, r.noteDur)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	var data []byte
	switch r.codec {
	case MP3:
		if data, err = mp3.Encode(chunk, r.bitrate); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
	default:
		data = wav.Encode(chunk)
	}
	return &Audio{
		Data:       data,
		SampleRate: r.format.SampleRate(),
		Channels:   r.format.Channels(),
		MediaType:  r.MediaType(),
		Ext:        r.Ext(),
	}, nil
}

// RenderAll renders each melody on up to workers goroutines and returns the
// clips in input order. The first failure cancels the remaining work and is
// returned; no partial result is produced. workers <= 0 uses GOMAXPROCS.
func (r *Renderer) RenderAll(ctx context.Context, melodies [][]songs.Note, workers int) ([]*Audio, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]*Audio, len(melodies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, notes := range melodies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := r.Render(notes)
			if err != nil {
				return fmt.Errorf("melody %d: %w", i, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
