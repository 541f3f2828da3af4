package raster

import (
	"fmt"

	"github.com/picante-go/picante/internal/cmdqueue"
)

// Tile is a 4bpp bitmap. Each byte holds two pixels, the even one in the
// low nibble. Stride is the row length in pixels and must be even.
type Tile struct {
	Pixels []byte
	Width  int
	Height int
	Stride int
}

// NewTile returns a tile whose stride equals its (even) width.
func NewTile(pixels []byte, width, height int) Tile {
	return Tile{Pixels: pixels, Width: width, Height: height, Stride: width}
}

func (t Tile) Validate() error {
	switch {
	case t.Width <= 0 || t.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrBadTile, t.Width, t.Height)
	case t.Stride < t.Width || t.Stride%2 != 0:
		return fmt.Errorf("%w: stride %d for width %d", ErrBadTile, t.Stride, t.Width)
	case len(t.Pixels) < t.Height*t.Stride/2:
		return fmt.Errorf("%w: %d bytes, need %d", ErrBadTile, len(t.Pixels), t.Height*t.Stride/2)
	}
	return nil
}

// span is the part of a blit that lands in one stripe.
type span struct {
	stripe int
	dstRow int
	srcRow int
	rows   int
}

// spans calls fn for each stripe the rows of a tile at y cover, top to
// bottom, clipped to the screen.
func (r *Rasterizer) spans(y, height int, fn func(span)) {
	row := max(0, -y)
	end := min(height, r.cfg.Height-y)
	for row < end {
		sy := y + row
		s := span{
			stripe: sy >> r.stripeShift,
			dstRow: sy & (r.stripeH - 1),
			srcRow: row,
		}
		s.rows = min(r.stripeH-s.dstRow, end-row)
		fn(s)
		row += s.rows
	}
}

// Blit queues tile at (x, y) using palette. The current transparent index
// applies. It returns the number of commands queued; a tile entirely off
// screen queues none.
func (r *Rasterizer) Blit(t Tile, x, y int, palette *[16]uint16) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if palette == nil {
		return 0, fmt.Errorf("%w: nil palette", ErrBadTile)
	}
	W, H := r.cfg.Width, r.cfg.Height
	if x >= W || x+t.Width <= 0 || y >= H || y+t.Height <= 0 {
		return 0, nil
	}

	srcX := max(0, -x)
	dstX := max(0, x)
	width := min(x+t.Width, W) - dstX

	n := 0
	r.spans(y, t.Height, func(span) { n++ })
	if err := r.q.Reserve(n * cmdqueue.BlitRecord); err != nil {
		return 0, err
	}

	rowBytes := t.Stride / 2
	var err error
	queued := 0
	r.spans(y, t.Height, func(s span) {
		if err != nil {
			return
		}
		var h cmdqueue.Handle
		h, err = r.q.AllocBlit(cmdqueue.Blit{
			Pixels:      t.Pixels[s.srcRow*rowBytes:],
			Stride:      t.Stride,
			SrcX:        srcX,
			DstX:        dstX,
			DstRow:      s.dstRow,
			Width:       width,
			Rows:        s.rows,
			Palette:     palette,
			Transparent: r.transparent,
		})
		if err == nil {
			err = r.q.Enqueue(h, s.stripe)
		}
		if err == nil {
			queued++
		}
	})
	return queued, err
}

// execBlit draws b into a stripe buffer. b is a copy, so the column
// adjustments below never reach the queued record.
func (r *Rasterizer) execBlit(b cmdqueue.Blit, dst []uint16) {
	w := r.cfg.Width
	base := b.DstRow*w + b.DstX
	srcX, n := b.SrcX, b.Width

	if srcX&1 != 0 {
		r.blitColumn(b, b.Pixels[srcX>>1:], dst[base:], 4)
		srcX++
		base++
		n--
	}
	if n&1 != 0 {
		r.blitColumn(b, b.Pixels[(srcX+n-1)>>1:], dst[base+n-1:], 0)
		n--
	}
	if n > 0 {
		r.blitPairs(b, b.Pixels[srcX>>1:], dst[base:], n)
	}
}

// blitColumn draws one nibble column, selected by shift (0 low, 4 high).
func (r *Rasterizer) blitColumn(b cmdqueue.Blit, src []byte, dst []uint16, shift uint) {
	rowBytes := b.Stride / 2
	w := r.cfg.Width
	for row := 0; row < b.Rows; row++ {
		idx := (src[row*rowBytes] >> shift) & 0xF
		if idx != b.Transparent {
			dst[row*w] = b.Palette[idx]
		}
	}
}

// blitPairs draws an even pixel count two per source byte.
func (r *Rasterizer) blitPairs(b cmdqueue.Blit, src []byte, dst []uint16, n int) {
	rowBytes := b.Stride / 2
	w := r.cfg.Width
	pairs := n >> 1
	for row := 0; row < b.Rows; row++ {
		s := src[row*rowBytes : row*rowBytes+pairs]
		d := dst[row*w : row*w+n]
		for i, px := range s {
			if lo := px & 0xF; lo != b.Transparent {
				d[2*i] = b.Palette[lo]
			}
			if hi := px >> 4; hi != b.Transparent {
				d[2*i+1] = b.Palette[hi]
			}
		}
	}
}
