// Package wav writes RIFF/WAVE containers around 16-bit PCM.
package wav

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/haivivi/songforge/pkg/audio/pcm"
)

// HeaderSize is the length of the canonical PCM header.
const HeaderSize = 44

// MediaType is the MIME type of encoded files.
const MediaType = "audio/wav"

// ErrShortHeader is returned by ParseHeader on truncated or foreign input.
var ErrShortHeader = errors.New("wav: invalid header")

// Header describes the fmt chunk of a PCM file.
type Header struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataSize      int
}

// header builds the 44-byte header for dataSize bytes of samples.
func header(f pcm.Format, dataSize int) []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataSize))
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], uint16(f.Channels()))
	binary.LittleEndian.PutUint32(h[24:28], uint32(f.SampleRate()))
	binary.LittleEndian.PutUint32(h[28:32], uint32(f.BytesRate()))
	binary.LittleEndian.PutUint16(h[32:34], uint16(f.BlockAlign()))
	binary.LittleEndian.PutUint16(h[34:36], uint16(f.Depth()))

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataSize))
	return h
}

// Encode returns a complete WAV file for the chunk.
func Encode(c pcm.Chunk) []byte {
	body := c.Bytes()
	out := make([]byte, 0, HeaderSize+len(body))
	out = append(out, header(c.Format, len(body))...)
	return append(out, body...)
}

// Write writes the chunk as a WAV file to w.
func Write(w io.Writer, c pcm.Chunk) (int64, error) {
	n, err := w.Write(Encode(c))
	return int64(n), err
}

// ParseHeader reads the canonical 44-byte header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize ||
		string(data[0:4]) != "RIFF" ||
		string(data[8:12]) != "WAVE" ||
		string(data[12:16]) != "fmt " ||
		string(data[36:40]) != "data" {
		return Header{}, ErrShortHeader
	}
	return Header{
		Channels:      int(binary.LittleEndian.Uint16(data[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(data[24:28])),
		BitsPerSample: int(binary.LittleEndian.Uint16(data[34:36])),
		DataSize:      int(binary.LittleEndian.Uint32(data[40:44])),
	}, nil
}
