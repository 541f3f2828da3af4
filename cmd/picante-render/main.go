package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/picante-go/picante"
	"github.com/picante-go/picante/internal/demo"
	"github.com/picante-go/picante/internal/display"
	"github.com/picante-go/picante/internal/tune"
)

func main() {
	var (
		outDir     = flag.String("out", ".", "output directory")
		frames     = flag.Int("frames", 4, "number of BMP frames to write")
		every      = flag.Int("every", 15, "animation steps between written frames")
		seconds    = flag.Float64("seconds", 6, "length of the WAV tune")
		sampleRate = flag.Int("sample-rate", 16000, "synth sample rate")
		bpm        = flag.Float64("bpm", 120, "tune tempo")
		steps      = flag.String("tune", demo.Tune, "step list to render")
		status     = flag.Bool("status", false, "print a status line over each frame")
	)
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}
	sys, err := picante.New(picante.WithSampleRate(*sampleRate))
	if err != nil {
		log.Fatal(err)
	}
	scene, err := demo.NewScene(sys, demo.Options{})
	if err != nil {
		log.Fatal(err)
	}

	for n := 0; n < *frames; n++ {
		for i := 0; i < *every-1; i++ {
			if err := scene.Step(); err != nil {
				log.Fatal(err)
			}
			sys.Graphics().ClearQueue()
		}
		if err := scene.Step(); err != nil {
			log.Fatal(err)
		}
		frame, err := picante.RenderFrame(sys)
		if err != nil {
			log.Fatal(err)
		}
		if *status {
			if err := display.Annotate(frame, fmt.Sprintf("frame %d", scene.Frame())); err != nil {
				log.Fatal(err)
			}
		}
		path := filepath.Join(*outDir, fmt.Sprintf("frame%03d.bmp", scene.Frame()))
		if err := writeFile(path, func(f *os.File) error { return picante.WriteBMP(f, frame) }); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", path)
	}

	if err := scene.StartTune(*bpm, true); err != nil {
		log.Fatal(err)
	}
	if *steps != demo.Tune {
		if err := sys.PlayTune(*steps, tune.Options{Voice: 0, BPM: *bpm}); err != nil {
			log.Fatal(err)
		}
	}
	samples := picante.RenderSamples(sys, int(*seconds*float64(*sampleRate)))
	path := filepath.Join(*outDir, "tune.wav")
	if err := writeFile(path, func(f *os.File) error { return picante.WriteWAV(f, samples, *sampleRate) }); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d samples)", path, len(samples))
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
