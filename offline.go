package picante

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/image/bmp"

	intaudio "github.com/picante-go/picante/internal/audio"
	"github.com/picante-go/picante/internal/display"
)

// RenderFrame draws the queued commands into a new frame.
func RenderFrame(sys *System) (*display.Frame, error) {
	cfg := sys.Graphics().Config()
	frame := display.NewFrame(cfg.Width, cfg.Height, cfg.StripeHeight())
	if err := sys.Draw(frame.Present); err != nil {
		return nil, err
	}
	return frame, nil
}

func RenderSamples(src intaudio.SampleSource, n int) []int16 {
	out := make([]int16, n)
	src.Render(out)
	return out
}

// WriteWAV encodes mono 16-bit PCM.
func WriteWAV(w io.WriteSeeker, samples []int16, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("wav: %w", err)
	}
	return enc.Close()
}

// ReadWAV decodes a 16-bit WAV file, keeping the first channel.
func ReadWAV(r io.ReadSeeker) ([]int16, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("wav: not a valid wav file")
	}
	if dec.BitDepth != 16 {
		return nil, 0, fmt.Errorf("wav: %d-bit samples, want 16", dec.BitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}
	ch := int(dec.NumChans)
	out := make([]int16, 0, len(buf.Data)/ch)
	for i := 0; i < len(buf.Data); i += ch {
		out = append(out, int16(buf.Data[i]))
	}
	return out, int(dec.SampleRate), nil
}

func WriteBMP(w io.Writer, frame *display.Frame) error {
	return bmp.Encode(w, frame.RGBA())
}
