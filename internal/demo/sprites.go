package demo

import (
	"image"

	"github.com/picante-go/picante/internal/asset"
	"github.com/picante-go/picante/internal/display"
	"github.com/picante-go/picante/internal/raster"
)

// builtinTiles draws a small dungeon-ish tile set: brick, flagstone and
// a checker.
func builtinTiles() *asset.Sprites {
	pal := &asset.Palette{
		display.RGB565(24, 20, 28),
		display.RGB565(90, 60, 50),
		display.RGB565(140, 90, 70),
		display.RGB565(70, 70, 80),
		display.RGB565(110, 110, 120),
		display.RGB565(40, 80, 40),
	}
	patterns := []func(x, y int) uint8{
		func(x, y int) uint8 { // brick
			if y%8 == 0 || (x+(y/8%2)*8)%16 == 0 {
				return 0
			}
			return 1 + uint8((x^y)&1)
		},
		func(x, y int) uint8 { // flagstone
			if x%16 == 0 || y%16 == 0 {
				return 0
			}
			return 3 + uint8(((x/16)+(y/16))&1)
		},
		func(x, y int) uint8 { // checker
			if (x/4+y/4)%2 == 0 {
				return 5
			}
			return 0
		},
	}
	set := &asset.Sprites{Palettes: []*asset.Palette{pal}}
	for _, p := range patterns {
		set.Tiles = append(set.Tiles, paint(p))
	}
	return set
}

// builtinBall is a shaded disc on index 0, which the scene treats as
// transparent.
func builtinBall() *asset.Sprites {
	pal := &asset.Palette{
		0,
		display.RGB565(200, 30, 30),
		display.RGB565(240, 90, 90),
		display.RGB565(255, 220, 220),
	}
	ball := paint(func(x, y int) uint8 {
		dx, dy := 2*x-31, 2*y-31
		d := dx*dx + dy*dy
		switch {
		case d > 31*31:
			return 0
		case d < 9*9 && dx < 0 && dy < 0:
			return 3
		case dx+dy < 0:
			return 2
		}
		return 1
	})
	return &asset.Sprites{Palettes: []*asset.Palette{pal}, Tiles: []raster.Tile{ball}}
}

func paint(fn func(x, y int) uint8) raster.Tile {
	img := image.NewPaletted(image.Rect(0, 0, tileSize, tileSize), nil)
	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			img.SetColorIndex(x, y, fn(x, y))
		}
	}
	t, _, _ := asset.TileFromImage(img)
	return t
}
