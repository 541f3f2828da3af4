// Package waveform maps a 16-bit oscillator phase to a signed 16-bit sample.
//
// A full cycle is phase 0..65535. All arithmetic is integer so the output is
// bit-identical on every target.
package waveform

const (
	MaxSample = int16(32767)
	MinSample = int16(-32768)
)

// Kind selects one of the built-in waveforms.
type Kind uint8

const (
	Sine Kind = iota
	Square
	Triangle
	Sawtooth
	Noise

	numKinds
)

// Valid reports whether k names a built-in waveform.
func (k Kind) Valid() bool { return k < numKinds }

func (k Kind) String() string {
	switch k {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

const (
	interpBits = 11
	interpMask = (1 << interpBits) - 1
)

// half cycle of sine at 1/16 steps; the second half is mirrored by sign.
var sineLUT = [17]int16{
	0, 6392, 12539, 18204, 23169, 27244, 30272, 32137,
	32767, 32137, 30272, 27244, 23169, 18204, 12539, 6392,
	0,
}

// SineAt returns the interpolated sine value for phase.
func SineAt(phase uint16) int16 {
	idx := (phase >> interpBits) & 0xF
	delta := int32(sineLUT[idx+1]) - int32(sineLUT[idx])
	interp := int32(phase & interpMask)
	value := sineLUT[idx] + int16((delta*interp)>>interpBits)
	if phase&0x8000 != 0 {
		value = -value
	}
	return value
}

func SquareAt(phase uint16) int16 {
	if phase&0x8000 != 0 {
		return MaxSample
	}
	return MinSample
}

func TriangleAt(phase uint16) int16 {
	sub := int16((phase & 0x3FFF) << 1)
	switch phase >> 14 {
	case 0:
		return sub
	case 1:
		return MaxSample - sub
	case 2:
		return -sub
	default:
		return MinSample + sub
	}
}

func SawtoothAt(phase uint16) int16 {
	if phase&0x8000 != 0 {
		return int16(phase & 0x7FFF)
	}
	return MinSample + int16(phase&0x7FFF)
}

// Sample evaluates waveform k at phase. The noise generator is only consulted
// for the Noise kind; a nil generator there produces silence, as does an
// unknown kind.
func Sample(k Kind, phase uint16, noise *NoiseGen) int16 {
	switch k {
	case Sine:
		return SineAt(phase)
	case Square:
		return SquareAt(phase)
	case Triangle:
		return TriangleAt(phase)
	case Sawtooth:
		return SawtoothAt(phase)
	case Noise:
		if noise == nil {
			return 0
		}
		return noise.At(phase)
	default:
		return 0
	}
}
