// Package demo is the scene the picante binaries run: a tile field, a
// bouncing ball drawn with a transparent index, sliding text and an FM
// tune.
package demo

import (
	"fmt"

	"golang.org/x/image/font/basicfont"

	"github.com/picante-go/picante"
	"github.com/picante-go/picante/internal/asset"
	"github.com/picante-go/picante/internal/display"
	"github.com/picante-go/picante/internal/font"
	"github.com/picante-go/picante/internal/raster"
	"github.com/picante-go/picante/internal/synth"
	"github.com/picante-go/picante/internal/tune"
	"github.com/picante-go/picante/internal/waveform"
)

// Tune is the opening of the Blue Danube.
const Tune = "C4 C4 E4 G4 G4 - G5 G5 - E5 E5 -"

const (
	ballSpeed = 3
	tileSize  = asset.TileSize
)

type Options struct {
	Sprites *asset.Sprites // tiles and palettes, nil for the built-in set
	Ball    *asset.Sprites // ball sprite, nil for the built-in one
	Font    *font.Font     // nil for basicfont 7x13
	Text    string
}

type Scene struct {
	sys *picante.System

	tiles   []raster.Tile
	tilePal *asset.Palette
	ball    raster.Tile
	ballPal *asset.Palette

	ballX, ballY int
	dirX, dirY   int
	text         string
	textX        int
	frame        int
}

func NewScene(sys *picante.System, opts Options) (*Scene, error) {
	sc := &Scene{sys: sys, dirX: ballSpeed, dirY: ballSpeed, text: opts.Text}
	if sc.text == "" {
		sc.text = "Hello!"
	}

	set := opts.Sprites
	if set == nil {
		set = builtinTiles()
	}
	if len(set.Tiles) == 0 || len(set.Palettes) == 0 {
		return nil, fmt.Errorf("demo: sprite set needs a tile and a palette")
	}
	sc.tiles, sc.tilePal = set.Tiles, set.Palettes[0]

	ball := opts.Ball
	if ball == nil {
		ball = builtinBall()
	}
	if len(ball.Tiles) == 0 || len(ball.Palettes) == 0 {
		return nil, fmt.Errorf("demo: ball sprite needs a tile and a palette")
	}
	sc.ball, sc.ballPal = ball.Tiles[0], ball.Palettes[0]

	f := opts.Font
	if f == nil {
		bf, err := font.FromBasicFace(basicfont.Face7x13, ' ', '~')
		if err != nil {
			return nil, err
		}
		f = &bf
	}
	if _, err := sys.Graphics().AddFont(*f); err != nil {
		return nil, err
	}
	sc.textX = sys.Graphics().Config().Width
	return sc, nil
}

// StartTune sets up the FM voice pair and plays the tune on voice 0.
func (sc *Scene) StartTune(bpm float64, loop bool) error {
	if err := sc.sys.SetVoice(0, waveform.Sine, 4, 8, 192, 32); err != nil {
		return err
	}
	if err := sc.sys.SetVoice(1, waveform.Sine, 0, 0, 64, 0); err != nil {
		return err
	}
	if err := sc.sys.SetModulation(0, synth.ModExponential, 3, 64); err != nil {
		return err
	}
	if err := sc.sys.Synth(func(e *synth.Engine) error { return e.SetAmplitude(0, 64) }); err != nil {
		return err
	}
	return sc.sys.PlayTune(Tune, tune.Options{Voice: 0, BPM: bpm, Loop: loop})
}

// Step advances the animation one frame and queues its commands.
func (sc *Scene) Step() error {
	gfx := sc.sys.Graphics()
	cfg := gfx.Config()
	sc.frame++

	sc.ballX, sc.dirX = bounce(sc.ballX+sc.dirX, sc.dirX, cfg.Width-tileSize)
	sc.ballY, sc.dirY = bounce(sc.ballY+sc.dirY, sc.dirY, cfg.Height-tileSize)
	sc.textX -= 2
	if f, ok := gfx.Font(); ok && sc.textX < -len(sc.text)*int(f.AdvanceX) {
		sc.textX = cfg.Width
	}

	if err := gfx.Clear(display.RGB565(0, 0, 0)); err != nil {
		return err
	}
	gfx.SetTransparentIndex(-1)
	cols := cfg.Width / tileSize
	for row := 0; row < cfg.Height/tileSize-1; row++ {
		for col := 0; col < cols; col++ {
			t := sc.tiles[(row*cols+col)%len(sc.tiles)]
			if _, err := gfx.Blit(t, col*tileSize, row*tileSize, sc.tilePal); err != nil {
				return err
			}
		}
	}
	gfx.SetTransparentIndex(0)
	if _, err := gfx.Blit(sc.ball, sc.ballX, sc.ballY, sc.ballPal); err != nil {
		return err
	}
	_, err := gfx.DrawText(sc.text, sc.textX, cfg.Height-tileSize+8, display.RGB565(255, 255, 0))
	return err
}

func (sc *Scene) Frame() int { return sc.frame }

func bounce(pos, dir, limit int) (int, int) {
	switch {
	case pos >= limit:
		return limit, -ballSpeed
	case pos <= 0:
		return 0, ballSpeed
	}
	return pos, dir
}
