// Package pcm describes the uncompressed sample layouts produced by the
// renderer: signed 16-bit little-endian, single channel.
package pcm

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// L16Mono16K represents audio/L16; rate=16000; channels=1
	L16Mono16K Format = iota + 1
	// L16Mono22K represents audio/L16; rate=22050; channels=1
	L16Mono22K
	// L16Mono24K represents audio/L16; rate=24000; channels=1
	L16Mono24K
	// L16Mono44K represents audio/L16; rate=44100; channels=1
	L16Mono44K
	// L16Mono48K represents audio/L16; rate=48000; channels=1
	L16Mono48K
)

// Format represents an audio format configuration.
type Format int

// formats lists every valid format.
var formats = []Format{L16Mono16K, L16Mono22K, L16Mono24K, L16Mono44K, L16Mono48K}

// ForRate returns the mono 16-bit format with the given sample rate.
func ForRate(rate int) (Format, error) {
	for _, f := range formats {
		if f.SampleRate() == rate {
			return f, nil
		}
	}
	return 0, fmt.Errorf("pcm: unsupported sample rate %d", rate)
}

// SampleRate returns the sample rate in Hz for this format.
func (f Format) SampleRate() int {
	switch f {
	case L16Mono16K:
		return 16000
	case L16Mono22K:
		return 22050
	case L16Mono24K:
		return 24000
	case L16Mono44K:
		return 44100
	case L16Mono48K:
		return 48000
	}
	panic("pcm: invalid audio format")
}

// Channels returns the number of audio channels for this format.
func (f Format) Channels() int {
	f.mustBeValid()
	return 1
}

// Depth returns the bit depth for this format.
func (f Format) Depth() int {
	f.mustBeValid()
	return 16
}

func (f Format) mustBeValid() {
	if f < L16Mono16K || f > L16Mono48K {
		panic("pcm: invalid audio format")
	}
}

// BlockAlign returns the number of bytes per sample frame.
func (f Format) BlockAlign() int {
	return f.Channels() * f.Depth() / 8
}

// SamplesInDuration returns the number of samples in the given duration.
func (f Format) SamplesInDuration(d time.Duration) int {
	return int(time.Duration(f.SampleRate()) * d / time.Second)
}

// BytesInDuration returns the number of bytes in the given duration.
func (f Format) BytesInDuration(d time.Duration) int {
	return f.SamplesInDuration(d) * f.BlockAlign()
}

// Duration returns the duration of the given number of bytes.
func (f Format) Duration(bytes int) time.Duration {
	samples := bytes / f.BlockAlign()
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate())
}

// BytesRate returns the byte rate of the audio data.
func (f Format) BytesRate() int {
	return f.SampleRate() * f.BlockAlign()
}

// String returns a human-readable string representation of the format.
func (f Format) String() string {
	return fmt.Sprintf("audio/L16; rate=%d; channels=%d", f.SampleRate(), f.Channels())
}

// Chunk is a block of samples in a known format.
type Chunk struct {
	Format  Format
	Samples []int16
}

// Len returns the length of the encoded samples in bytes.
func (c Chunk) Len() int {
	return len(c.Samples) * c.Format.BlockAlign()
}

// Duration returns the playback length of the chunk.
func (c Chunk) Duration() time.Duration {
	return c.Format.Duration(c.Len())
}

// Bytes returns the samples encoded as little-endian 16-bit integers.
func (c Chunk) Bytes() []byte {
	data := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}
