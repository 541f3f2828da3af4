// Package synth is a fixed-point polyphonic synthesizer. Each voice is a
// phase accumulator driving one waveform through an ADSR envelope; a voice
// can be frequency-modulated by the voice after it. Output is signed 16-bit
// mono and bit-identical across platforms.
package synth

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/picante-go/picante/internal/waveform"
)

var (
	ErrBadParams     = errors.New("synth: bad params")
	ErrVoiceRange    = errors.New("synth: voice out of range")
	ErrBadWaveform   = errors.New("synth: unknown waveform")
	ErrBadModulation = errors.New("synth: unknown modulation")
	ErrVoiceOwned    = errors.New("synth: voice is driven by a carrier")
)

type Params struct {
	SampleRate int
	Voices     int

	// SharedNoise makes every noise voice read one generator. Voices then
	// disturb each other's noise.
	SharedNoise bool
}

func DefaultParams() Params {
	return Params{
		SampleRate: 16000,
		Voices:     4,
	}
}

type Engine struct {
	params      Params
	voices      []voice
	sharedNoise waveform.NoiseGen
	lowPass     uint8
	lpState     int32
}

func New(p Params) (*Engine, error) {
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrBadParams, p.SampleRate)
	}
	if p.Voices <= 0 || p.Voices > 255 {
		return nil, fmt.Errorf("%w: %d voices", ErrBadParams, p.Voices)
	}
	e := &Engine{params: p, voices: make([]voice, p.Voices)}
	e.Reset()
	return e, nil
}

func (e *Engine) SampleRate() int { return e.params.SampleRate }

func (e *Engine) Voices() int { return len(e.voices) }

// Reset silences every voice and restores default voice settings: sine,
// zero amplitude, instant envelope, no modulation.
func (e *Engine) Reset() {
	for i := range e.voices {
		e.voices[i] = voice{wave: waveform.Sine, env: Instant}
	}
	e.sharedNoise = waveform.NoiseGen{}
	e.lpState = 0
}

func (e *Engine) voice(v int) (*voice, error) {
	if v < 0 || v >= len(e.voices) {
		return nil, fmt.Errorf("%w: %d of %d", ErrVoiceRange, v, len(e.voices))
	}
	return &e.voices[v], nil
}

func (e *Engine) modulatorOf(v int) int { return (v + 1) % len(e.voices) }

func (e *Engine) SetWaveform(v int, k waveform.Kind) error {
	vc, err := e.voice(v)
	if err != nil {
		return err
	}
	if !k.Valid() {
		return fmt.Errorf("%w: %d", ErrBadWaveform, k)
	}
	vc.wave = k
	return nil
}

// SetAmplitude sets the base amplitude from 0..255; 255 is full scale.
func (e *Engine) SetAmplitude(v int, a uint8) error {
	vc, err := e.voice(v)
	if err != nil {
		return err
	}
	vc.base = int32(a)<<7 | int32(a)>>1
	return nil
}

// SetPhaseIncrement sets the per-sample phase step in 16.16 fixed point,
// where one waveform cycle is 1<<32.
func (e *Engine) SetPhaseIncrement(v int, inc uint32) error {
	vc, err := e.voice(v)
	if err != nil {
		return err
	}
	vc.inc = inc
	if vc.mod != ModNone {
		m := &e.voices[e.modulatorOf(v)]
		m.inc = vc.modulatorIncrement(inc)
	}
	return nil
}

func (e *Engine) SetEnvelope(v int, env Envelope) error {
	vc, err := e.voice(v)
	if err != nil {
		return err
	}
	if env.Sustain > MaxLevel {
		env.Sustain = MaxLevel
	}
	vc.env = env
	return nil
}

// SetModulation makes voice v a carrier modulated by voice (v+1) mod
// Voices. ratio is the modulator's frequency multiple with 4 fractional
// bits, so 16 is unison.
func (e *Engine) SetModulation(v int, mode Modulation, ratio uint16) error {
	vc, err := e.voice(v)
	if err != nil {
		return err
	}
	if mode >= numModulations {
		return fmt.Errorf("%w: %d", ErrBadModulation, mode)
	}
	if vc.mod != ModNone && mode == ModNone {
		// an owned modulator never outlives its carrier's modulation
		if m := &e.voices[e.modulatorOf(v)]; m.owned {
			m.stop()
		}
	}
	vc.mod = mode
	vc.ratio = uint32(ratio)
	return nil
}

// NoteOn restarts voice v from the beginning of its attack. A carrier
// restarts its modulator too and takes it out of the mix. A voice that a
// sounding carrier is driving cannot be started on its own.
func (e *Engine) NoteOn(v int) error {
	vc, err := e.voice(v)
	if err != nil {
		return err
	}
	if vc.owned {
		return fmt.Errorf("%w: %d", ErrVoiceOwned, v)
	}
	vc.start()
	if vc.mod != ModNone {
		if mi := e.modulatorOf(v); mi != v {
			m := &e.voices[mi]
			m.inc = vc.modulatorIncrement(vc.inc)
			m.owned = true
			m.start()
		}
	}
	return nil
}

// NoteOff moves voice v, and a modulator it owns, into release.
func (e *Engine) NoteOff(v int) error {
	vc, err := e.voice(v)
	if err != nil {
		return err
	}
	vc.stage = Release
	if vc.mod != ModNone {
		if m := &e.voices[e.modulatorOf(v)]; m.owned {
			m.stage = Release
		}
	}
	return nil
}

// SetLowPass sets a one-pole low-pass on the mix; each step of level
// halves the cutoff. 0 disables it, the maximum is 8.
func (e *Engine) SetLowPass(level uint8) {
	if level > 8 {
		level = 8
	}
	e.lowPass = level
	if level == 0 {
		e.lpState = 0
	}
}

func (e *Engine) LowPass() uint8 { return e.lowPass }

func (e *Engine) Playing(v int) bool {
	vc, err := e.voice(v)
	return err == nil && vc.stage != NotPlaying
}

// PhaseIncrement returns voice v's current 16.16 phase step.
func (e *Engine) PhaseIncrement(v int) uint32 {
	vc, err := e.voice(v)
	if err != nil {
		return 0
	}
	return vc.inc
}

func (e *Engine) Stage(v int) Stage {
	vc, err := e.voice(v)
	if err != nil {
		return NotPlaying
	}
	return vc.stage
}

// ActiveVoiceCount counts voices that contribute to the mix directly.
func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].stage != NotPlaying && !e.voices[i].owned {
			n++
		}
	}
	return n
}

func (e *Engine) noiseFor(v int) *waveform.NoiseGen {
	if e.params.SharedNoise {
		return &e.sharedNoise
	}
	return &e.voices[v].noise
}

// next produces voice v's next sample and advances its state. depth bounds
// modulator recursion so a ring of carriers visits each voice once.
func (e *Engine) next(v int, depth int) int32 {
	vc := &e.voices[v]
	s := int32(waveform.Sample(vc.wave, uint16(vc.phase>>16), e.noiseFor(v)))

	if vc.mod != ModNone && depth+1 < len(e.voices) {
		ms := int64(e.next(e.modulatorOf(v), depth+1))
		half := int64(vc.inc / 2)
		var delta int64
		if vc.mod == ModLinear {
			delta = half + ms<<16
		} else {
			delta = half + (int64(vc.inc/4)*ms)>>15
		}
		if delta > 0 {
			vc.phase += uint32(delta)
		}
	} else {
		vc.phase += vc.inc
	}

	s = (s * vc.base) >> 15
	s = (s * vc.tick()) >> 15

	if vc.stage == NotPlaying && vc.mod != ModNone {
		if m := &e.voices[e.modulatorOf(v)]; m.owned {
			m.stop()
		}
	}
	return s
}

func (e *Engine) mix() int16 {
	var acc int32
	for i := range e.voices {
		if e.voices[i].stage != NotPlaying && !e.voices[i].owned {
			acc += e.next(i, 0)
		}
	}
	if e.lowPass > 0 {
		e.lpState += (acc - e.lpState) >> e.lowPass
		acc = e.lpState
	}
	return saturate(acc)
}

// Render overwrites dst with the next len(dst) samples.
func (e *Engine) Render(dst []int16) {
	for i := range dst {
		dst[i] = e.mix()
	}
}

// RenderBytes fills dst with signed 16-bit little-endian samples. A trailing
// odd byte is zeroed.
func (e *Engine) RenderBytes(dst []byte) {
	n := len(dst) / 2
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(e.mix()))
	}
	if len(dst)%2 != 0 {
		dst[len(dst)-1] = 0
	}
}

func saturate(v int32) int16 {
	if v > int32(waveform.MaxSample) {
		return waveform.MaxSample
	}
	if v < int32(waveform.MinSample) {
		return waveform.MinSample
	}
	return int16(v)
}
