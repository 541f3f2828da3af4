package font

import (
	"fmt"
	"image/color"

	"golang.org/x/image/font/basicfont"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// cellCanvas is a one-glyph drivers.Displayer that records painted pixels as
// row bitmasks.
type cellCanvas struct {
	w, h int16
	rows []byte
}

var _ drivers.Displayer = (*cellCanvas)(nil)

func (c *cellCanvas) Size() (x, y int16) { return c.w, c.h }

func (c *cellCanvas) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h || col.A == 0 {
		return
	}
	c.rows[y] |= 1 << uint(x)
}

func (c *cellCanvas) Display() error { return nil }

func (c *cellCanvas) clear() {
	for i := range c.rows {
		c.rows[i] = 0
	}
}

var ink = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// FromFonter rasterises codes first..last of a tinyfont font into cellW x
// cellH cells. baseline is the y coordinate, within the cell, that tinyfont
// draws relative to. Pixels outside the cell are dropped.
func FromFonter(src tinyfont.Fonter, first, last byte, cellW, cellH uint8, baseline int16) (Font, error) {
	if last < first {
		return Font{}, fmt.Errorf("%w: last char %d before first %d", ErrInvalidFont, last, first)
	}
	canvas := &cellCanvas{w: int16(cellW), h: int16(cellH), rows: make([]byte, cellH)}
	f := Font{
		CellWidth:  cellW,
		CellHeight: cellH,
		AdvanceX:   cellW,
		AdvanceY:   src.GetYAdvance(),
		FirstChar:  first,
		LastChar:   last,
	}
	if adv := src.GetGlyph(rune(first)).Info().XAdvance; adv > 0 {
		f.AdvanceX = uint8(adv)
	}
	if f.AdvanceY == 0 {
		f.AdvanceY = cellH
	}
	f.Glyphs = make([]byte, 0, f.NumChars()*int(cellH))
	for c := int(first); c <= int(last); c++ {
		canvas.clear()
		tinyfont.DrawChar(canvas, src, 0, baseline, rune(c), ink)
		f.Glyphs = append(f.Glyphs, canvas.rows...)
	}
	if err := f.Validate(); err != nil {
		return Font{}, err
	}
	return f, nil
}

// FromBasicFace converts codes first..last of an x/image basicfont face.
// Runes not covered by the face's ranges become empty cells.
func FromBasicFace(face *basicfont.Face, first, last byte) (Font, error) {
	if face == nil || face.Mask == nil {
		return Font{}, fmt.Errorf("%w: nil face", ErrInvalidFont)
	}
	if last < first {
		return Font{}, fmt.Errorf("%w: last char %d before first %d", ErrInvalidFont, last, first)
	}
	if face.Width <= 0 || face.Width > 8 || face.Height <= 0 || face.Height > 0xFF || face.Advance <= 0 || face.Advance > 0xFF {
		return Font{}, fmt.Errorf("%w: face metrics %dx%d advance %d", ErrInvalidFont, face.Width, face.Height, face.Advance)
	}
	f := Font{
		CellWidth:  uint8(face.Width),
		CellHeight: uint8(face.Height),
		AdvanceX:   uint8(face.Advance),
		AdvanceY:   uint8(face.Height),
		FirstChar:  first,
		LastChar:   last,
	}
	f.Glyphs = make([]byte, f.NumChars()*face.Height)
	for c := int(first); c <= int(last); c++ {
		idx, ok := basicIndex(face, rune(c))
		if !ok {
			continue
		}
		base := (c - int(first)) * face.Height
		for row := 0; row < face.Height; row++ {
			var bits byte
			for col := 0; col < face.Width; col++ {
				if _, _, _, a := face.Mask.At(col, idx*face.Height+row).RGBA(); a >= 0x8000 {
					bits |= 1 << uint(col)
				}
			}
			f.Glyphs[base+row] = bits
		}
	}
	if err := f.Validate(); err != nil {
		return Font{}, err
	}
	return f, nil
}

func basicIndex(face *basicfont.Face, r rune) (int, bool) {
	for _, rr := range face.Ranges {
		if r >= rr.Low && r < rr.High {
			return int(r-rr.Low) + rr.Offset, true
		}
	}
	return 0, false
}
