package synth

import "github.com/picante-go/picante/internal/waveform"

// Stage is a voice's envelope stage.
type Stage uint8

const (
	NotPlaying Stage = iota
	Attack
	Decay
	Sustain
	Release
)

func (s Stage) String() string {
	switch s {
	case NotPlaying:
		return "off"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Modulation selects how a carrier uses its modulator's output.
type Modulation uint8

const (
	ModNone Modulation = iota
	ModLinear
	ModExponential

	numModulations
)

// MaxLevel is full scale for amplitudes, sustain and envelope output.
const MaxLevel = 32767

const envMax = uint32(MaxLevel) << 16

// Envelope holds per-sample ADSR rates in 16.16 fixed point and the
// sustain level in 0..MaxLevel.
type Envelope struct {
	Attack  uint32
	Decay   uint32
	Sustain uint16
	Release uint32
}

// Instant is an envelope that jumps straight to full-level sustain and
// stops on the sample after release.
var Instant = Envelope{Attack: envMax, Decay: envMax, Sustain: MaxLevel, Release: envMax}

type voice struct {
	wave  waveform.Kind
	phase uint32 // 16.16
	inc   uint32 // 16.16 per sample
	base  int32  // 0..MaxLevel
	env   Envelope
	level uint32 // 16.16
	stage Stage

	mod   Modulation
	ratio uint32 // modulator frequency multiple, 4 fractional bits
	owned bool   // driven by a carrier rather than mixed

	noise waveform.NoiseGen
}

// tick advances the envelope one sample and returns its level.
func (v *voice) tick() int32 {
	switch v.stage {
	case Attack:
		if v.env.Attack > envMax-v.level {
			v.level = envMax
			v.stage = Decay
			return MaxLevel
		}
		v.level += v.env.Attack
		return int32(v.level >> 16)
	case Decay:
		floor := uint32(v.env.Sustain) << 16
		if v.level <= floor || v.level-floor <= v.env.Decay {
			v.level = floor
			v.stage = Sustain
			return int32(v.env.Sustain)
		}
		v.level -= v.env.Decay
		return int32(v.level >> 16)
	case Sustain:
		v.level = uint32(v.env.Sustain) << 16
		return int32(v.env.Sustain)
	case Release:
		if v.level == 0 || v.level < v.env.Release {
			v.level = 0
			v.stage = NotPlaying
			return 0
		}
		v.level -= v.env.Release
		return int32(v.level >> 16)
	default:
		return 0
	}
}

func (v *voice) start() {
	v.phase = 0
	v.level = 0
	v.stage = Attack
	v.noise.Reset(0)
}

// stop silences the voice at once and hands it back to the mix.
func (v *voice) stop() {
	v.stage = NotPlaying
	v.level = 0
	v.owned = false
}

func (v *voice) modulatorIncrement(carrier uint32) uint32 {
	return uint32(uint64(carrier) * uint64(v.ratio) >> 4)
}
