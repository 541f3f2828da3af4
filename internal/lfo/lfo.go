// Package lfo is a fixed-point low-frequency oscillator for slow pitch or
// level modulation, stepped in blocks of samples.
package lfo

// Waveform constants.
const (
	WaveSaw      = 0
	WaveSquare   = 1
	WaveTriangle = 2
)

// LFO cycles once per 1<<32 of phase. Its output is in [-depth, +depth].
type LFO struct {
	depth    int32
	inc      uint32 // phase step per sample
	waveform int
	phase    uint32
}

// Set configures depth, rate and waveform. Unknown waveforms select the
// triangle.
func (l *LFO) Set(depth int32, rateHz float64, sampleRate int, waveform int) {
	if depth < 0 {
		depth = -depth
	}
	l.depth = depth
	l.inc = 0
	if rateHz > 0 && sampleRate > 0 {
		l.inc = uint32(rateHz / float64(sampleRate) * (1 << 32))
	}
	if waveform < WaveSaw || waveform > WaveTriangle {
		waveform = WaveTriangle
	}
	l.waveform = waveform
}

// Value is the output at the current phase.
func (l *LFO) Value() int32 {
	if !l.Active() {
		return 0
	}
	// unit is the waveform in Q15, -32768..32767
	var unit int32
	p := l.phase >> 16
	switch l.waveform {
	case WaveSaw:
		unit = 32767 - int32(p)
	case WaveSquare:
		if p < 0x8000 {
			unit = 32767
		} else {
			unit = -32768
		}
	default:
		if p < 0x8000 {
			unit = int32(p)*2 - 32768
		} else {
			unit = 32767 - (int32(p)-0x8000)*2
		}
	}
	return int32(int64(unit) * int64(l.depth) >> 15)
}

// Advance moves the phase on by n samples and returns the value at the
// start of the block.
func (l *LFO) Advance(n int) int32 {
	v := l.Value()
	l.phase += l.inc * uint32(n)
	return v
}

// Active returns true if the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.inc != 0
}

// Reset zeros the LFO phase.
func (l *LFO) Reset() {
	l.phase = 0
}
