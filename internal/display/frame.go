// Package display assembles rendered stripes into whole frames and
// converts RGB565 pixels for panels and image export.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var ErrStripeRange = errors.New("display: stripe out of range")

// Frame is a full RGB565 frame built one stripe at a time.
type Frame struct {
	Width, Height int
	StripeHeight  int
	Pix           []uint16
}

func NewFrame(width, height, stripeHeight int) *Frame {
	return &Frame{
		Width:        width,
		Height:       height,
		StripeHeight: stripeHeight,
		Pix:          make([]uint16, width*height),
	}
}

// Present copies one rendered stripe into place. Its signature matches the
// callback picante.System.Draw hands stripes to.
func (f *Frame) Present(stripe int, px []uint16) error {
	y0 := stripe * f.StripeHeight
	if stripe < 0 || y0 >= f.Height {
		return fmt.Errorf("%w: %d", ErrStripeRange, stripe)
	}
	rows := f.StripeHeight
	if y0+rows > f.Height {
		rows = f.Height - y0
	}
	n := rows * f.Width
	if len(px) < n {
		n = len(px)
	}
	copy(f.Pix[y0*f.Width:], px[:n])
	return nil
}

func (f *Frame) At(x, y int) uint16 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	return f.Pix[y*f.Width+x]
}

// RGBA converts the frame for preview or export.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	f.CopyTo(img.Pix)
	return img
}

// CopyTo writes the frame as 8-bit RGBA into dst, which must hold
// 4*Width*Height bytes.
func (f *Frame) CopyTo(dst []byte) {
	for i, p := range f.Pix {
		if 4*i+3 >= len(dst) {
			return
		}
		r, g, b := RGB888(p)
		dst[4*i], dst[4*i+1], dst[4*i+2], dst[4*i+3] = r, g, b, 0xFF
	}
}

// Color is a pixel as a color.Color.
func Color(p uint16) color.RGBA {
	r, g, b := RGB888(p)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
