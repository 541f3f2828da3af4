package waveform

const (
	noiseSeed     = 0x7FFFF8
	noiseRegMask  = 0x7FFFFF
	noiseStepBits = 7 // one shift per 128 phase units
)

// NoiseGen is a 23-bit linear-feedback shift register clocked by phase
// progress rather than by sample count, so its pitch follows the voice's
// phase increment. The zero value is ready to use.
type NoiseGen struct {
	reg  uint32
	last uint16
}

// Reset reseeds the register and aligns the clock to phase.
func (n *NoiseGen) Reset(phase uint16) {
	n.reg = noiseSeed
	n.last = phase
}

// At advances the register once for every 128 phase units crossed since the
// previous call and returns the current output.
func (n *NoiseGen) At(phase uint16) int16 {
	if n.reg == 0 {
		n.reg = noiseSeed
	}
	steps := ((phase >> noiseStepBits) - (n.last >> noiseStepBits)) & (0xFFFF >> noiseStepBits)
	n.last = phase
	for ; steps > 0; steps-- {
		n.clock()
	}
	return n.output()
}

func (n *NoiseGen) clock() {
	bit0 := ((n.reg >> 22) ^ (n.reg >> 17)) & 1
	n.reg = ((n.reg << 1) & noiseRegMask) | bit0
}

// output gathers register bits 22,20,16,13,11,7,4,2 into the top byte.
func (n *NoiseGen) output() int16 {
	r := n.reg
	b := (r&0x400000)>>15 |
		(r&0x100000)>>14 |
		(r&0x010000)>>11 |
		(r&0x002000)>>9 |
		(r&0x000800)>>8 |
		(r&0x000080)>>5 |
		(r&0x000010)>>3 |
		(r&0x000004)>>2
	return int16(int32(b<<8) - 32768)
}
