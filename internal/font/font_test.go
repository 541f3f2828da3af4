package font

import (
	"errors"
	"image/color"
	"testing"

	"golang.org/x/image/font/basicfont"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

func testFont() Font {
	return Font{
		CellWidth: 3, CellHeight: 2, AdvanceX: 4, AdvanceY: 3,
		FirstChar: 'A', LastChar: 'C',
		Glyphs: []byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6},
	}
}

func TestValidate(t *testing.T) {
	base := testFont()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid font rejected: %v", err)
	}
	tests := []struct {
		name string
		edit func(*Font)
	}{
		{"zero width", func(f *Font) { f.CellWidth = 0 }},
		{"too wide", func(f *Font) { f.CellWidth = 9 }},
		{"zero height", func(f *Font) { f.CellHeight = 0 }},
		{"zero advance", func(f *Font) { f.AdvanceX = 0 }},
		{"reversed range", func(f *Font) { f.FirstChar, f.LastChar = 'C', 'A' }},
		{"short glyphs", func(f *Font) { f.Glyphs = f.Glyphs[:5] }},
		{"blank collision", func(f *Font) {
			f.FirstChar, f.LastChar = 0, 254
			f.Glyphs = make([]byte, 255*2)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFont()
			tt.edit(&f)
			if err := f.Validate(); !errors.Is(err, ErrInvalidFont) {
				t.Fatalf("err = %v, want ErrInvalidFont", err)
			}
		})
	}
}

func TestCodeAndRow(t *testing.T) {
	f := testFont()
	if f.Code('A') != 0 || f.Code('C') != 2 {
		t.Fatalf("in-range codes not remapped")
	}
	if f.Code('@') != Blank || f.Code('D') != Blank {
		t.Fatalf("out-of-range codes should be blank")
	}
	if f.Row(1, 1) != 0x4 {
		t.Fatalf("Row(1,1) = %#x", f.Row(1, 1))
	}
}

func TestRegistryCapacity(t *testing.T) {
	r := NewRegistry(2)
	for i := 0; i < 2; i++ {
		id, err := r.Add(testFont())
		if err != nil || id != ID(i) {
			t.Fatalf("Add #%d = %d, %v", i, id, err)
		}
	}
	if _, err := r.Add(testFont()); !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("third Add err = %v, want ErrRegistryFull", err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d", r.Len())
	}
	if _, ok := r.Get(2); ok {
		t.Fatalf("Get beyond Len succeeded")
	}
	r.Reset()
	if r.Len() != 0 || r.Cap() != 2 {
		t.Fatalf("Reset left len %d cap %d", r.Len(), r.Cap())
	}
	if _, ok := r.Get(0); ok {
		t.Fatalf("Get after Reset succeeded")
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry(1)
	bad := testFont()
	bad.CellWidth = 0
	if _, err := r.Add(bad); !errors.Is(err, ErrInvalidFont) {
		t.Fatalf("err = %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("invalid font was stored")
	}
}

func TestDecodeFnt1(t *testing.T) {
	data := []byte{'f', 'n', 't', '1', 3 | 2<<4, 4 | 3<<4, 'A', 'C', 1, 2, 3, 4, 5, 6, 99}
	f, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := testFont()
	if f.CellWidth != want.CellWidth || f.CellHeight != want.CellHeight ||
		f.AdvanceX != want.AdvanceX || f.AdvanceY != want.AdvanceY ||
		f.FirstChar != want.FirstChar || f.LastChar != want.LastChar {
		t.Fatalf("metrics = %+v", f)
	}
	if string(f.Glyphs) != string(want.Glyphs) {
		t.Fatalf("glyphs = %v", f.Glyphs)
	}
	enc, err := Encode(f)
	if err != nil || string(enc) != string(data[:len(data)-1]) {
		t.Fatalf("Encode = %v, %v", enc, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	for name, data := range map[string][]byte{
		"short":     []byte("fnt"),
		"bad tag":   {'f', 'n', 't', '2', 0x23, 0x34, 'A', 'C', 1, 2, 3, 4, 5, 6},
		"truncated": {'f', 'n', 't', '1', 0x23, 0x34, 'A', 'C', 1, 2, 3},
		"zero size": {'f', 'n', 't', '1', 0x00, 0x34, 'A', 'A'},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(data); !errors.Is(err, ErrBadFontFile) {
				t.Fatalf("err = %v, want ErrBadFontFile", err)
			}
		})
	}
}

// stripesFont paints column (r % 3) on every row above the baseline, plus a
// pixel far outside any cell.
type stripesFont struct{ g stripesGlyph }

type stripesGlyph struct{ r rune }

func (g *stripesGlyph) Draw(d drivers.Displayer, x, y int16, c color.RGBA) {
	col := int16(g.r % 3)
	for row := int16(0); row < 4; row++ {
		d.SetPixel(x+col, y-row, c)
	}
	d.SetPixel(x+20, y, c)
}

func (g *stripesGlyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{Rune: g.r, Width: 3, Height: 4, XAdvance: 4}
}

func (f *stripesFont) GetYAdvance() uint8 { return 6 }

func (f *stripesFont) GetGlyph(r rune) tinyfont.Glypher {
	f.g.r = r
	return &f.g
}

func TestFromFonter(t *testing.T) {
	f, err := FromFonter(&stripesFont{}, '0', '2', 3, 5, 3)
	if err != nil {
		t.Fatalf("FromFonter: %v", err)
	}
	if f.AdvanceX != 4 || f.AdvanceY != 6 || f.NumChars() != 3 {
		t.Fatalf("metrics = %+v", f)
	}
	for c := byte('0'); c <= '2'; c++ {
		code := f.Code(c)
		want := byte(1) << (c % 3)
		for row := 0; row < 5; row++ {
			got := f.Row(code, row)
			if row <= 3 && got != want {
				t.Errorf("char %c row %d = %#x, want %#x", c, row, got, want)
			}
			if row == 4 && got != 0 {
				t.Errorf("char %c row 4 below baseline painted", c)
			}
		}
	}
}

func TestFromBasicFace(t *testing.T) {
	face := basicfont.Face7x13
	f, err := FromBasicFace(face, ' ', '~')
	if err != nil {
		t.Fatalf("FromBasicFace: %v", err)
	}
	if f.CellWidth != 6 || f.CellHeight != 13 || f.AdvanceX != 7 {
		t.Fatalf("metrics = %+v", f)
	}
	ink := func(c byte) int {
		n := 0
		code := f.Code(c)
		for row := 0; row < int(f.CellHeight); row++ {
			for b := f.Row(code, row); b != 0; b &= b - 1 {
				n++
			}
		}
		return n
	}
	if ink(' ') != 0 {
		t.Errorf("space has ink")
	}
	if ink('A') == 0 || ink('#') <= ink('.') {
		t.Errorf("glyph coverage looks wrong: A=%d #=%d .=%d", ink('A'), ink('#'), ink('.'))
	}
}
