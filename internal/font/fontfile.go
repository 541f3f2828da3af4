package font

import (
	"bytes"
	"errors"
	"fmt"
)

var ErrBadFontFile = errors.New("font: bad font file")

var fnt1Tag = []byte("fnt1")

const fnt1HeaderLen = 8

// Decode parses a "fnt1" font file: the tag, a size byte (width | height<<4),
// an advance byte (x | y<<4), the first and last character codes, then
// height row bytes per glyph.
func Decode(data []byte) (Font, error) {
	if len(data) < fnt1HeaderLen || !bytes.Equal(data[:4], fnt1Tag) {
		return Font{}, fmt.Errorf("%w: missing fnt1 header", ErrBadFontFile)
	}
	f := Font{
		CellWidth:  data[4] & 0xF,
		CellHeight: data[4] >> 4,
		AdvanceX:   data[5] & 0xF,
		AdvanceY:   data[5] >> 4,
		FirstChar:  data[6],
		LastChar:   data[7],
	}
	need := f.NumChars() * int(f.CellHeight)
	body := data[fnt1HeaderLen:]
	if len(body) < need {
		return Font{}, fmt.Errorf("%w: %d glyph bytes, need %d", ErrBadFontFile, len(body), need)
	}
	f.Glyphs = append([]byte(nil), body[:need]...)
	if err := f.Validate(); err != nil {
		return Font{}, fmt.Errorf("%w: %w", ErrBadFontFile, err)
	}
	return f, nil
}

// Encode is the inverse of Decode. Metrics must fit in four bits each.
func Encode(f Font) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.CellHeight > 0xF || f.AdvanceX > 0xF || f.AdvanceY > 0xF {
		return nil, fmt.Errorf("%w: metrics do not fit fnt1 nibbles", ErrInvalidFont)
	}
	need := f.NumChars() * int(f.CellHeight)
	out := make([]byte, 0, fnt1HeaderLen+need)
	out = append(out, fnt1Tag...)
	out = append(out, f.CellWidth|f.CellHeight<<4, f.AdvanceX|f.AdvanceY<<4, f.FirstChar, f.LastChar)
	return append(out, f.Glyphs[:need]...), nil
}
