package raster

import (
	"fmt"

	"github.com/picante-go/picante/internal/cmdqueue"
)

// RenderStripe replays the commands queued on stripe, oldest first, into
// dst. Pixels no command touches keep their previous value. dst must hold
// Width*StripeHeight pixels.
func (r *Rasterizer) RenderStripe(stripe int, dst []uint16) error {
	if stripe < 0 || stripe >= r.cfg.Stripes {
		return fmt.Errorf("%w: %d of %d", ErrStripeRange, stripe, r.cfg.Stripes)
	}
	need := r.cfg.StripePixels()
	if len(dst) < need {
		return fmt.Errorf("%w: %d pixels, need %d", ErrStripeBuffer, len(dst), need)
	}
	dst = dst[:need]
	return r.q.Walk(stripe, func(c cmdqueue.Command) {
		switch c.Op {
		case cmdqueue.OpClear:
			fill(dst, r.q.ClearAt(c).Colour)
		case cmdqueue.OpBlit:
			r.execBlit(r.q.BlitAt(c), dst)
		case cmdqueue.OpText:
			r.execText(r.q.TextAt(c), dst)
		}
	})
}

func fill(dst []uint16, v uint16) {
	for i := range dst {
		dst[i] = v
	}
}
