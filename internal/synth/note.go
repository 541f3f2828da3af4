package synth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrBadNote = errors.New("synth: bad note name")

// Octaves start at A. "A1" is 27.5 Hz, so "C4" is middle C and "Ab7" the
// highest playable note.
const a1Hz = 27.5

var semitoneFactors = [12]float64{
	1, 1.059, 1.122, 1.189, 1.260, 1.335, 1.414, 1.498, 1.587, 1.682, 1.782, 1.888,
}

var semitoneIndex = map[string]int{
	"A": 0, "A#": 1, "Bb": 1, "B": 2, "C": 3, "C#": 4, "Db": 4, "D": 5,
	"D#": 6, "Eb": 6, "E": 7, "F": 8, "F#": 9, "Gb": 9, "G": 10, "G#": 11, "Ab": 11,
}

// ParseNote parses a note name such as "C4", "F#3" or "Bb5" into Hz.
func ParseNote(name string) (float64, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadNote, name)
	}
	octave, err := strconv.Atoi(name[len(name)-1:])
	if err != nil || octave < 1 {
		return 0, fmt.Errorf("%w: %q", ErrBadNote, name)
	}
	idx, ok := semitoneIndex[name[:len(name)-1]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadNote, name)
	}
	return semitoneFactors[idx] * a1Hz * math.Exp2(float64(octave-1)), nil
}

// PhaseIncrement converts a frequency to a 16.16 per-sample phase step.
func PhaseIncrement(freqHz float64, sampleRate int) uint32 {
	if freqHz <= 0 || sampleRate <= 0 {
		return 0
	}
	inc := math.Round(freqHz * 65536 / float64(sampleRate) * 65536)
	if inc >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(inc)
}

// NoteIncrement is ParseNote followed by PhaseIncrement.
func NoteIncrement(name string, sampleRate int) (uint32, error) {
	f, err := ParseNote(name)
	if err != nil {
		return 0, err
	}
	return PhaseIncrement(f, sampleRate), nil
}

// envTimeUnit is the sample count of one envelope time step.
const envTimeUnit = 64

// EnvelopeFromTimes builds an envelope from attack, decay and release times
// in 64-sample units and a sustain level in 1/255ths of full scale. A zero
// time is instantaneous.
func EnvelopeFromTimes(attack, decay, sustain, release uint8) Envelope {
	sus := float64(sustain) * MaxLevel / 255
	rate := func(span float64, units uint8) uint32 {
		if units == 0 {
			return envMax
		}
		return uint32(span / float64(int(units)*envTimeUnit) * 65536)
	}
	// release is timed from the sustain level; from silence-level sustain
	// it runs from full scale so a note released early still ends.
	relSpan := sus
	if sustain == 0 {
		relSpan = MaxLevel
	}
	return Envelope{
		Attack:  rate(MaxLevel, attack),
		Decay:   rate(MaxLevel-sus, decay),
		Sustain: uint16(sus),
		Release: rate(relSpan, release),
	}
}
