package effects

// Delay is a feedback echo. Feedback and wet are fractions in 1/256ths.
type Delay struct {
	buf      []int32
	pos      int
	feedback int32
	wet      int32
}

// NewDelay creates an echo of delayMs milliseconds. feedback is clamped to
// 0..240 so the tail always decays; wet is clamped to 0..256.
func NewDelay(sampleRate int, delayMs float64, feedback, wet int) *Delay {
	samples := int(delayMs * float64(sampleRate) / 1000.0)
	if samples < 1 {
		samples = 1
	}
	return &Delay{
		buf:      make([]int32, samples),
		feedback: int32(clamp(feedback, 0, 240)),
		wet:      int32(clamp(wet, 0, 256)),
	}
}

func (d *Delay) Process(s int32) int32 {
	del := d.buf[d.pos]
	d.buf[d.pos] = int32(saturate(s + del*d.feedback>>8))
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return (s*(256-d.wet) + del*d.wet) >> 8
}

func (d *Delay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}

// Len is the delay in samples.
func (d *Delay) Len() int { return len(d.buf) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
