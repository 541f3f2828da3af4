// Package font holds bitmap font metadata and a fixed-capacity registry of
// fonts available to the rasterizer.
//
// Glyphs are stored one byte per pixel row, CellHeight rows per glyph. Bit c
// of a row byte (LSB first) paints column c, so cells are at most 8 pixels
// wide. The glyph for code k starts at (k-FirstChar)*CellHeight.
package font

import (
	"errors"
	"fmt"
)

// Blank marks a character with no glyph; the renderer skips it but still
// advances.
const Blank = 0xFF

var (
	ErrRegistryFull = errors.New("font: registry full")
	ErrInvalidFont  = errors.New("font: invalid font")
)

// ID identifies a registered font.
type ID uint8

// None is the ID of "no font".
const None = ID(0xFF)

type Font struct {
	CellWidth  uint8
	CellHeight uint8
	AdvanceX   uint8
	AdvanceY   uint8 // line height
	FirstChar  uint8
	LastChar   uint8
	Glyphs     []byte
}

// NumChars is the number of codes the font covers.
func (f *Font) NumChars() int {
	if f.LastChar < f.FirstChar {
		return 0
	}
	return int(f.LastChar) - int(f.FirstChar) + 1
}

// Validate checks the metrics against the glyph layout.
func (f *Font) Validate() error {
	switch {
	case f.CellWidth == 0 || f.CellWidth > 8:
		return fmt.Errorf("%w: cell width %d not in 1..8", ErrInvalidFont, f.CellWidth)
	case f.CellHeight == 0:
		return fmt.Errorf("%w: zero cell height", ErrInvalidFont)
	case f.AdvanceX == 0:
		return fmt.Errorf("%w: zero advance", ErrInvalidFont)
	case f.LastChar < f.FirstChar:
		return fmt.Errorf("%w: last char %d before first %d", ErrInvalidFont, f.LastChar, f.FirstChar)
	case f.NumChars() >= Blank:
		return fmt.Errorf("%w: %d codes collide with the blank marker", ErrInvalidFont, f.NumChars())
	}
	if need := f.NumChars() * int(f.CellHeight); len(f.Glyphs) < need {
		return fmt.Errorf("%w: glyph buffer %d bytes, need %d", ErrInvalidFont, len(f.Glyphs), need)
	}
	return nil
}

// Code maps a character to its glyph index, or Blank when the font does not
// cover it.
func (f *Font) Code(c byte) uint8 {
	if c < f.FirstChar || c > f.LastChar {
		return Blank
	}
	return c - f.FirstChar
}

// Row returns glyph row bits for a remapped code.
func (f *Font) Row(code uint8, row int) byte {
	return f.Glyphs[int(code)*int(f.CellHeight)+row]
}

// Registry is a fixed-capacity font table. Fonts are never removed
// individually; Reset drops them all.
type Registry struct {
	fonts []Font
}

func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = 4
	}
	if capacity >= int(None) {
		capacity = int(None) - 1
	}
	return &Registry{fonts: make([]Font, 0, capacity)}
}

// Add registers f and returns its ID.
func (r *Registry) Add(f Font) (ID, error) {
	if err := f.Validate(); err != nil {
		return None, err
	}
	if len(r.fonts) == cap(r.fonts) {
		return None, ErrRegistryFull
	}
	r.fonts = append(r.fonts, f)
	return ID(len(r.fonts) - 1), nil
}

func (r *Registry) Get(id ID) (*Font, bool) {
	if int(id) >= len(r.fonts) {
		return nil, false
	}
	return &r.fonts[id], true
}

func (r *Registry) Len() int { return len(r.fonts) }

func (r *Registry) Cap() int { return cap(r.fonts) }

func (r *Registry) Reset() {
	r.fonts = r.fonts[:0]
}
