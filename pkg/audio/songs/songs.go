// Package songs holds the note alphabet of generated melodies and turns
// note sequences into 16-bit PCM.
//
// A melody is a fixed-length sequence of natural notes from the fourth
// octave (C4 through B4). Each note is rendered as a pure sine tone of equal
// length, with no envelope and no gap between notes.
package songs

import (
	"errors"
	"fmt"

	"github.com/haivivi/songforge/pkg/seed"
)

// Note is a pitch name such as "C4".
type Note string

// Natural notes of the fourth octave.
const (
	C4 Note = "C4"
	D4 Note = "D4"
	E4 Note = "E4"
	F4 Note = "F4"
	G4 Note = "G4"
	A4 Note = "A4"
	B4 Note = "B4"
)

// MelodyLength is the number of notes in every generated melody.
const MelodyLength = 8

// Alphabet lists the notes a melody draws from, in ascending pitch.
var Alphabet = []Note{C4, D4, E4, F4, G4, A4, B4}

// DefaultMelody replaces an empty melody at render time so that every clip
// is audible.
var DefaultMelody = []Note{C4, E4, G4}

// frequencies maps each note to its equal-tempered frequency in Hz.
var frequencies = map[Note]float64{
	C4: 261.63,
	D4: 293.66,
	E4: 329.63,
	F4: 349.23,
	G4: 392.00,
	A4: 440.00,
	B4: 493.88,
}

// ErrUnknownNote is returned when a note has no entry in the frequency table.
var ErrUnknownNote = errors.New("songs: unknown note")

// Frequency returns the frequency of n in Hz.
func Frequency(n Note) (float64, error) {
	f, ok := frequencies[n]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, string(n))
	}
	return f, nil
}

// Generate draws a melody of [MelodyLength] notes from s, one draw per note.
func Generate(s *seed.Stream) []Note {
	notes := make([]Note, MelodyLength)
	for i := range notes {
		notes[i] = seed.Pick(s, Alphabet)
	}
	return notes
}

// Strings converts notes to plain strings.
func Strings(notes []Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = string(n)
	}
	return out
}

// Parse converts plain strings to notes, rejecting unknown names.
func Parse(names []string) ([]Note, error) {
	out := make([]Note, len(names))
	for i, name := range names {
		n := Note(name)
		if _, err := Frequency(n); err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
