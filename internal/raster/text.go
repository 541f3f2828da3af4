package raster

import (
	"github.com/picante-go/picante/internal/cmdqueue"
	"github.com/picante-go/picante/internal/font"
)

// DrawText queues s at (x, y) in the current font. Characters are clipped
// whole: any that would start left of the screen or end past its right edge
// are dropped. Bytes outside the font's range draw nothing but still
// advance. It returns the number of characters queued, which is 0 when the
// string is clipped away and ErrNoFont when no font is selected.
func (r *Rasterizer) DrawText(s string, x, y int, colour uint16) (int, error) {
	f, ok := r.Font()
	if !ok {
		return 0, ErrNoFont
	}
	adv, cw, ch := int(f.AdvanceX), int(f.CellWidth), int(f.CellHeight)
	W, H := r.cfg.Width, r.cfg.Height
	n := len(s)
	if n == 0 || x >= W || x+adv*n <= 0 || y >= H || y+ch <= 0 {
		return 0, nil
	}

	start := 0
	if x < 0 {
		start = (-x + adv - 1) / adv
		x += start * adv
	}
	keep := n - start
	if x+cw > W {
		keep = 0
	} else {
		keep = min(keep, (W-cw-x)/adv+1)
	}
	if keep <= 0 {
		return 0, nil
	}

	stripe := y >> r.stripeShift
	dstRow := y & (r.stripeH - 1)
	first := min(ch, r.stripeH-dstRow)

	records := make([]cmdqueue.Text, 0, 2)
	stripes := make([]int, 0, 2)
	base := cmdqueue.Text{Font: uint8(r.cur), X: x, Colour: colour, NumChars: keep}
	if stripe >= 0 {
		t := base
		t.DstRow, t.GlyphRow, t.Rows = dstRow, 0, first
		records = append(records, t)
		stripes = append(stripes, stripe)
	}
	if first < ch && stripe+1 < r.cfg.Stripes {
		t := base
		t.DstRow, t.GlyphRow, t.Rows = 0, first, ch-first
		records = append(records, t)
		stripes = append(stripes, stripe+1)
	}

	sizes := make([]int, 0, 3)
	for range records {
		sizes = append(sizes, cmdqueue.TextRecord)
	}
	sizes = append(sizes, keep)
	if err := r.q.Reserve(sizes...); err != nil {
		return 0, err
	}

	// records first, then the character bytes they share
	handles := make([]cmdqueue.Handle, len(records))
	for i, t := range records {
		h, err := r.q.AllocText(t)
		if err != nil {
			return 0, err
		}
		handles[i] = h
	}
	off, chars, err := r.q.AllocChars(keep)
	if err != nil {
		return 0, err
	}
	for i := range chars {
		chars[i] = f.Code(s[start+i])
	}
	for i, h := range handles {
		if err := r.q.SetChars(h, off, keep); err != nil {
			return 0, err
		}
		if err := r.q.Enqueue(h, stripes[i]); err != nil {
			return 0, err
		}
	}
	return keep, nil
}

func (r *Rasterizer) execText(t cmdqueue.Text, dst []uint16) {
	f, ok := r.fonts.Get(font.ID(t.Font))
	if !ok {
		return
	}
	w := r.cfg.Width
	adv, cw := int(f.AdvanceX), int(f.CellWidth)
	for i, code := range r.q.Chars(t) {
		if code == font.Blank {
			continue
		}
		x := t.X + i*adv
		for row := 0; row < t.Rows; row++ {
			bits := f.Row(code, t.GlyphRow+row)
			d := dst[(t.DstRow+row)*w+x:]
			for c := 0; c < cw; c++ {
				if bits&(1<<uint(c)) != 0 {
					d[c] = t.Colour
				}
			}
		}
	}
}
