package asset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"golang.org/x/image/bmp"

	"github.com/picante-go/picante/internal/display"
	"github.com/picante-go/picante/internal/font"
	"github.com/picante-go/picante/internal/raster"
)

var ErrTooManyColours = errors.New("asset: image uses more than 16 colours")

// TileFromImage packs a paletted image into a 4bpp tile. Only the first 16
// palette entries are usable; unused palette slots are zero.
func TileFromImage(img *image.Paletted) (raster.Tile, *Palette, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := raster.Tile{Width: w, Height: h, Stride: w + w%2}
	t.Pixels = make([]byte, t.Stride*h/2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := img.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
			if idx > 15 {
				return raster.Tile{}, nil, fmt.Errorf("%w: index %d at (%d,%d)", ErrTooManyColours, idx, x, y)
			}
			setNibble(t.Pixels, y*t.Stride+x, idx)
		}
	}
	pal := &Palette{}
	for i := 0; i < len(img.Palette) && i < 16; i++ {
		pal[i] = rgb565(img.Palette[i])
	}
	return t, pal, nil
}

// TileFromRGB indexes a true-colour image in first-seen colour order.
func TileFromRGB(img image.Image) (raster.Tile, *Palette, error) {
	if p, ok := img.(*image.Paletted); ok {
		return TileFromImage(p)
	}
	b := img.Bounds()
	pal := color.Palette{}
	seen := map[color.RGBA]uint8{}
	idx := image.NewPaletted(b, nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			i, ok := seen[c]
			if !ok {
				if len(pal) == 16 {
					return raster.Tile{}, nil, fmt.Errorf("%w at (%d,%d)", ErrTooManyColours, x, y)
				}
				i = uint8(len(pal))
				seen[c] = i
				pal = append(pal, c)
			}
			idx.Pix[idx.PixOffset(x, y)] = i
		}
	}
	idx.Palette = pal
	return TileFromImage(idx)
}

// DecodeBMPTile reads a BMP image as a tile and palette.
func DecodeBMPTile(r io.Reader) (raster.Tile, *Palette, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return raster.Tile{}, nil, fmt.Errorf("asset: decode bmp: %w", err)
	}
	return TileFromRGB(img)
}

// LoadSprites reads a sprite container file.
func LoadSprites(path string) (*Sprites, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeSprites(data)
}

// LoadFont reads an fnt1 font file.
func LoadFont(path string) (font.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return font.Font{}, err
	}
	return font.Decode(data)
}

func setNibble(px []byte, i int, v uint8) {
	if i%2 == 0 {
		px[i/2] = px[i/2]&0xF0 | v&0x0F
	} else {
		px[i/2] = px[i/2]&0x0F | v<<4
	}
}

func rgb565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return display.RGB565(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
