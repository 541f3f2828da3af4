// Package effects holds fixed-point processors for the 16-bit mono mix.
package effects

// Effector processes one sample at a time. Input and output are in the
// int16 range carried in an int32.
type Effector interface {
	Process(s int32) int32
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(s int32) int32 {
	for _, e := range c.effects {
		s = e.Process(s)
	}
	return s
}

// Apply runs the chain over buf in place, saturating to int16.
func (c *Chain) Apply(buf []int16) {
	if c == nil || len(c.effects) == 0 {
		return
	}
	for i, s := range buf {
		buf[i] = saturate(c.Process(int32(s)))
	}
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

func (c *Chain) Len() int { return len(c.effects) }

func saturate(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
