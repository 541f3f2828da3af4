// Package asset loads palettes, 4bpp tiles and fonts from their binary
// container formats and from paletted images.
package asset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/picante-go/picante/internal/raster"
)

var (
	ErrUnknownChunk = errors.New("asset: unknown chunk")
	ErrTruncated    = errors.New("asset: truncated chunk")
)

const (
	TileSize     = 32
	tileBytes    = TileSize * TileSize / 2
	paletteBytes = 16 * 2
)

var (
	tagPalette = []byte("pale")
	tagTile    = []byte("bp32")
)

// Palette is the colour table a blit takes.
type Palette = [16]uint16

// Sprites is the content of a sprite container, in file order per kind.
type Sprites struct {
	Palettes []*Palette
	Tiles    []raster.Tile
}

// DecodeSprites reads a sequence of "pale" (16 little-endian RGB565
// entries) and "bp32" (one 32x32 4bpp tile) chunks. Fewer than four bytes
// left end the container. On an unknown tag the chunks read so far are
// returned with ErrUnknownChunk.
func DecodeSprites(data []byte) (*Sprites, error) {
	s := &Sprites{}
	for len(data) >= 4 {
		tag := data[:4]
		data = data[4:]
		switch {
		case bytes.Equal(tag, tagPalette):
			if len(data) < paletteBytes {
				return s, fmt.Errorf("%w: palette has %d bytes", ErrTruncated, len(data))
			}
			var p Palette
			for i := range p {
				p[i] = binary.LittleEndian.Uint16(data[2*i:])
			}
			s.Palettes = append(s.Palettes, &p)
			data = data[paletteBytes:]
		case bytes.Equal(tag, tagTile):
			if len(data) < tileBytes {
				return s, fmt.Errorf("%w: tile has %d bytes", ErrTruncated, len(data))
			}
			px := make([]byte, tileBytes)
			copy(px, data)
			s.Tiles = append(s.Tiles, raster.NewTile(px, TileSize, TileSize))
			data = data[tileBytes:]
		default:
			return s, fmt.Errorf("%w: %q", ErrUnknownChunk, tag)
		}
	}
	return s, nil
}

// EncodeSprites writes palettes first, then tiles. Tiles must be 32x32.
func EncodeSprites(s *Sprites) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range s.Palettes {
		buf.Write(tagPalette)
		for _, c := range p {
			_ = binary.Write(&buf, binary.LittleEndian, c)
		}
	}
	for i, t := range s.Tiles {
		if t.Width != TileSize || t.Height != TileSize {
			return nil, fmt.Errorf("asset: tile %d is %dx%d, want %dx%d", i, t.Width, t.Height, TileSize, TileSize)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("asset: tile %d: %w", i, err)
		}
		buf.Write(tagTile)
		for row := 0; row < TileSize; row++ {
			off := row * t.Stride / 2
			buf.Write(t.Pixels[off : off+TileSize/2])
		}
	}
	return buf.Bytes(), nil
}
