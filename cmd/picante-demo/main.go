package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/picante-go/picante"
	"github.com/picante-go/picante/internal/asset"
	intaudio "github.com/picante-go/picante/internal/audio"
	"github.com/picante-go/picante/internal/demo"
	"github.com/picante-go/picante/internal/display"
)

type audioPlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	Stop() error
}

type game struct {
	sys    *picante.System
	scene  *demo.Scene
	frame  *display.Frame
	pixels []byte
	player audioPlayer
	once   bool
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.player != nil {
		if g.player.IsPlaying() {
			g.player.Pause()
		} else {
			g.player.Play()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.once && g.sys.Finished() && (g.player == nil || !g.player.IsPlaying()) {
		return ebiten.Termination
	}
	if err := g.scene.Step(); err != nil {
		return err
	}
	return g.sys.Draw(g.frame.Present)
}

func (g *game) Draw(screen *ebiten.Image) {
	g.frame.CopyTo(g.pixels)
	screen.WritePixels(g.pixels)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	return g.frame.Width, g.frame.Height
}

func (g *game) Close() {
	if g.player != nil {
		_ = g.player.Stop()
	}
}

func newAudio(backend string, sys *picante.System) (audioPlayer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "ebiten":
		return intaudio.NewPlayer(sys.SampleRate(), sys)
	case "oto":
		return intaudio.NewOtoPlayer(sys.SampleRate(), sys)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid -backend %q (expected ebiten|oto|none)", backend)
	}
}

func main() {
	var (
		backend    = flag.String("backend", "ebiten", "audio output: ebiten|oto|none")
		sampleRate = flag.Int("sample-rate", 16000, "synth sample rate")
		bpm        = flag.Float64("bpm", 120, "tune tempo")
		scale      = flag.Int("scale", 2, "window scale")
		sprites    = flag.String("sprites", "", "sprite container for the tile field")
		ball       = flag.String("ball", "", "sprite container for the ball")
		fontPath   = flag.String("font", "", "fnt1 font file")
		text       = flag.String("text", "Hello!", "sliding text")
		once       = flag.Bool("once", false, "play the tune once and quit when the audio ends")
	)
	flag.Parse()

	sys, err := picante.New(picante.WithSampleRate(*sampleRate))
	if err != nil {
		log.Fatal(err)
	}
	opts := demo.Options{Text: *text}
	if *sprites != "" {
		if opts.Sprites, err = asset.LoadSprites(*sprites); err != nil {
			log.Fatalf("load %q: %v", *sprites, err)
		}
	}
	if *ball != "" {
		if opts.Ball, err = asset.LoadSprites(*ball); err != nil {
			log.Fatalf("load %q: %v", *ball, err)
		}
	}
	if *fontPath != "" {
		f, err := asset.LoadFont(*fontPath)
		if err != nil {
			log.Fatalf("load %q: %v", *fontPath, err)
		}
		opts.Font = &f
	}
	scene, err := demo.NewScene(sys, opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := scene.StartTune(*bpm, !*once); err != nil {
		log.Fatal(err)
	}

	cfg := sys.Graphics().Config()
	g := &game{
		sys:    sys,
		scene:  scene,
		frame:  display.NewFrame(cfg.Width, cfg.Height, cfg.StripeHeight()),
		pixels: make([]byte, 4*cfg.Width*cfg.Height),
		once:   *once,
	}
	if g.player, err = newAudio(*backend, sys); err != nil {
		log.Fatal(err)
	}
	defer g.Close()
	if g.player != nil {
		g.player.Play()
	}

	ebiten.SetWindowSize(cfg.Width**scale, cfg.Height**scale)
	ebiten.SetWindowTitle("picante demo")
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
