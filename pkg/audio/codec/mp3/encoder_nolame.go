//go:build !lame

package mp3

import (
	"io"

	"github.com/haivivi/songforge/pkg/audio/pcm"
)

const available = false

func encode(io.Writer, pcm.Chunk, int) error {
	return ErrUnavailable
}
