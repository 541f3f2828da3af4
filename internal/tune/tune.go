// Package tune plays step lists such as "C4 E4 G4 - G5:2" on one synth
// voice. Each step is a note name or "-" for a rest, optionally followed by
// ":n" to hold it for n beats.
package tune

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/picante-go/picante/internal/lfo"
	"github.com/picante-go/picante/internal/synth"
)

var ErrBadStep = errors.New("tune: bad step")

// VoiceEngine is the part of synth.Engine a Sequencer drives.
type VoiceEngine interface {
	SampleRate() int
	SetPhaseIncrement(v int, inc uint32) error
	NoteOn(v int) error
	NoteOff(v int) error
	Render(dst []int16)
	// Playing reports whether voice v is still sounding, release tail
	// included.
	Playing(v int) bool
}

// EventKind identifies sequencer lifecycle events.
type EventKind int

const (
	EventLoopCompleted EventKind = iota
	EventPlaybackEnded
)

type Step struct {
	Name  string // as written, "-" for a rest
	Freq  float64
	Beats int
}

func (s Step) Rest() bool { return s.Freq == 0 }

// Parse splits a whitespace separated step list.
func Parse(src string) ([]Step, error) {
	var steps []Step
	for _, f := range strings.Fields(src) {
		name, beats := f, 1
		if i := strings.IndexByte(f, ':'); i >= 0 {
			n, err := strconv.Atoi(f[i+1:])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%w: %q", ErrBadStep, f)
			}
			name, beats = f[:i], n
		}
		st := Step{Name: name, Beats: beats}
		if name != "-" {
			hz, err := synth.ParseNote(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadStep, err)
			}
			st.Freq = hz
		}
		steps = append(steps, st)
	}
	return steps, nil
}

type Options struct {
	Voice   int
	BPM     float64 // beats per minute, 0 = 120
	Gate    float64 // fraction of a step the note is held, 0 = 0.9
	Loop    bool
	Vibrato Vibrato
	OnEvent func(EventKind)
}

// Vibrato wobbles the pitch of every note. Depth is a fraction of the
// note's frequency, so 0.01 is roughly 17 cents.
type Vibrato struct {
	Depth    float64
	RateHz   float64
	Waveform int // an lfo.Wave constant
}

// vibratoBlock is how many samples share one pitch update.
const vibratoBlock = 32

type event struct {
	at  int64 // sample position within one pass
	on  bool
	inc uint32
}

type Sequencer struct {
	engine  VoiceEngine
	voice   int
	events  []event
	length  int64 // samples in one pass
	loop    bool
	onEvent func(EventKind)

	pos    int64
	cursor int
	ended  bool

	vibrato lfo.LFO
	noteInc uint32 // 0 while no note is held
}

func New(steps []Step, engine VoiceEngine, opts Options) *Sequencer {
	bpm := opts.BPM
	if bpm <= 0 {
		bpm = 120
	}
	gate := opts.Gate
	if gate <= 0 || gate > 1 {
		gate = 0.9
	}
	rate := engine.SampleRate()
	perBeat := float64(rate) * 60 / bpm

	s := &Sequencer{engine: engine, voice: opts.Voice, loop: opts.Loop, onEvent: opts.OnEvent}
	s.vibrato.Set(int32(opts.Vibrato.Depth*65536), opts.Vibrato.RateHz, rate, opts.Vibrato.Waveform)
	beats := 0
	for _, st := range steps {
		start := int64(float64(beats) * perBeat)
		beats += st.Beats
		if st.Rest() {
			continue
		}
		held := int64(float64(st.Beats) * perBeat * gate)
		if held < 1 {
			held = 1
		}
		inc := synth.PhaseIncrement(st.Freq, rate)
		s.events = append(s.events,
			event{at: start, on: true, inc: inc},
			event{at: start + held},
		)
	}
	s.length = int64(float64(beats) * perBeat)
	return s
}

// Process renders len(dst) samples, triggering notes at their exact sample
// positions.
func (s *Sequencer) Process(dst []int16) {
	for len(dst) > 0 {
		s.dispatch()
		n := int64(len(dst))
		if next := s.nextAt(); next >= 0 && next-s.pos < n {
			n = next - s.pos
		}
		if s.noteInc != 0 && s.vibrato.Active() {
			n = min(n, vibratoBlock)
			s.bend(s.vibrato.Advance(int(n)))
		}
		s.engine.Render(dst[:n])
		dst = dst[n:]
		s.pos += n
		s.checkEnd()
	}
}

func (s *Sequencer) dispatch() {
	for s.cursor < len(s.events) && s.events[s.cursor].at <= s.pos {
		ev := s.events[s.cursor]
		if ev.on {
			s.noteInc = ev.inc
			s.vibrato.Reset()
			_ = s.engine.SetPhaseIncrement(s.voice, ev.inc)
			_ = s.engine.NoteOn(s.voice)
		} else {
			s.noteInc = 0
			_ = s.engine.NoteOff(s.voice)
		}
		s.cursor++
	}
	if s.loop && s.cursor == len(s.events) && s.pos >= s.length && s.length > 0 {
		s.pos -= s.length
		s.cursor = 0
		if s.onEvent != nil {
			s.onEvent(EventLoopCompleted)
		}
		s.dispatch()
	}
}

// bend offsets the held note by v/65536 of its increment.
func (s *Sequencer) bend(v int32) {
	inc := int64(s.noteInc) + int64(s.noteInc)*int64(v)>>16
	_ = s.engine.SetPhaseIncrement(s.voice, uint32(min(max(inc, 0), math.MaxUint32)))
}

// nextAt is the sample position of the next pending event, or -1.
func (s *Sequencer) nextAt() int64 {
	if s.cursor < len(s.events) {
		return s.events[s.cursor].at
	}
	if s.loop && s.length > 0 {
		return s.length
	}
	return -1
}

func (s *Sequencer) checkEnd() {
	if s.ended || s.loop || s.cursor < len(s.events) || s.pos < s.length {
		return
	}
	if !s.engine.Playing(s.voice) {
		s.ended = true
		if s.onEvent != nil {
			s.onEvent(EventPlaybackEnded)
		}
	}
}

// Finished reports that every step has played and the voice has gone
// silent. A looping sequencer never finishes.
func (s *Sequencer) Finished() bool { return s.ended }

// Voice is the voice the sequencer plays on.
func (s *Sequencer) Voice() int { return s.voice }

// Length is the duration of one pass in samples.
func (s *Sequencer) Length() int64 { return s.length }

func (s *Sequencer) Reset() {
	s.pos, s.cursor, s.ended = 0, 0, false
	s.noteInc = 0
	_ = s.engine.NoteOff(s.voice)
}
