// Package mp3 encodes 16-bit mono PCM to constant-bitrate MP3.
//
// Encoding needs libmp3lame and is only compiled with the "lame" build tag.
// Without it every encode returns [ErrUnavailable].
package mp3

import (
	"bytes"
	"errors"

	"github.com/haivivi/songforge/pkg/audio/pcm"
)

// MediaType is the MIME type of encoded files.
const MediaType = "audio/mpeg"

// DefaultBitrate is the CBR bitrate in kbps.
const DefaultBitrate = 128

// ErrUnavailable is returned when the binary was built without LAME.
var ErrUnavailable = errors.New("mp3: encoder not available (build with -tags lame)")

// Encode returns the chunk as a complete MP3 stream at bitrate kbps.
func Encode(c pcm.Chunk, bitrate int) ([]byte, error) {
	if bitrate <= 0 {
		bitrate = DefaultBitrate
	}
	var buf bytes.Buffer
	if err := encode(&buf, c, bitrate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Available reports whether MP3 encoding is compiled in.
func Available() bool { return available }
