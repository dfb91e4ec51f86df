package songs

import (
	"math"
	"time"

	"github.com/haivivi/songforge/pkg/audio/pcm"
)

// DefaultFormat is the default audio format for rendered melodies.
const DefaultFormat = pcm.L16Mono44K

// DefaultNoteDuration is the length of every note.
const DefaultNoteDuration = 500 * time.Millisecond

// amplitude scales the unit sine to the int16 range.
const amplitude = math.MaxInt16

// SineWave generates samples of a pure sine tone at freq, starting at phase
// zero. Each sample is round(sin(2πft) * 32767).
func SineWave(freq float64, samples int, sampleRate int) []int16 {
	data := make([]int16, samples)
	for i := range data {
		t := float64(i) / float64(sampleRate)
		data[i] = int16(math.Round(math.Sin(2*math.Pi*freq*t) * amplitude))
	}
	return data
}

// Synthesize renders notes back to back as sine tones of noteDur each.
//
// An empty melody is replaced by [DefaultMelody]. A note missing from the
// frequency table fails the whole call with [ErrUnknownNote]; nothing is
// skipped.
func Synthesize(notes []Note, format pcm.Format, noteDur time.Duration) (pcm.Chunk, error) {
	if len(notes) == 0 {
		notes = DefaultMelody
	}
	freqs := make([]float64, len(notes))
	for i, n := range notes {
		f, err := Frequency(n)
		if err != nil {
			return pcm.Chunk{}, err
		}
		freqs[i] = f
	}

	rate := format.SampleRate()
	perNote := format.SamplesInDuration(noteDur)
	samples := make([]int16, 0, perNote*len(freqs))
	for _, f := range freqs {
		samples = append(samples, SineWave(f, perNote, rate)...)
	}
	return pcm.Chunk{Format: format, Samples: samples}, nil
}

// TotalDuration returns the playback length of a melody.
func TotalDuration(notes []Note, noteDur time.Duration) time.Duration {
	return time.Duration(len(notes)) * noteDur
}
