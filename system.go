// Package picante ties the stripe rasterizer and the voice synth into one
// System: queue drawing commands during a frame, then Draw replays them
// stripe by stripe while audio is rendered on its own goroutine.
package picante

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/picante-go/picante/internal/effects"
	"github.com/picante-go/picante/internal/raster"
	"github.com/picante-go/picante/internal/synth"
	"github.com/picante-go/picante/internal/tune"
	"github.com/picante-go/picante/internal/waveform"
)

type Option func(*systemConfig)

type systemConfig struct {
	raster raster.Config
	synth  synth.Params
	echo   *echoConfig
}

type echoConfig struct {
	delayMs       float64
	feedback, wet int
}

func defaultSystemConfig() systemConfig {
	return systemConfig{raster: raster.DefaultConfig(), synth: synth.DefaultParams()}
}

func WithStripes(n int) Option {
	return func(cfg *systemConfig) {
		cfg.raster.Stripes = n
	}
}

func WithArenaBytes(n int) Option {
	return func(cfg *systemConfig) {
		cfg.raster.ArenaBytes = n
	}
}

func WithMaxFonts(n int) Option {
	return func(cfg *systemConfig) {
		cfg.raster.MaxFonts = n
	}
}

func WithVoices(n int) Option {
	return func(cfg *systemConfig) {
		cfg.synth.Voices = n
	}
}

func WithSampleRate(hz int) Option {
	return func(cfg *systemConfig) {
		cfg.synth.SampleRate = hz
	}
}

// WithSharedNoise makes all noise voices read a single generator.
func WithSharedNoise(enabled bool) Option {
	return func(cfg *systemConfig) {
		cfg.synth.SharedNoise = enabled
	}
}

// WithEcho adds a feedback echo to the mix. feedback and wet are in
// 1/256ths.
func WithEcho(delayMs float64, feedback, wet int) Option {
	return func(cfg *systemConfig) {
		cfg.echo = &echoConfig{delayMs: delayMs, feedback: feedback, wet: wet}
	}
}

// System owns one rasterizer and one synth engine. Graphics calls belong to
// the frame loop; audio calls may come from any goroutine and are
// serialized with Render.
type System struct {
	gfx     *raster.Rasterizer
	scratch []uint16

	mu     sync.Mutex
	engine *synth.Engine
	seq    *tune.Sequencer
	fx     *effects.Chain
}

func New(opts ...Option) (*System, error) {
	cfg := defaultSystemConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	gfx, err := raster.New(cfg.raster)
	if err != nil {
		return nil, err
	}
	engine, err := synth.New(cfg.synth)
	if err != nil {
		return nil, err
	}
	sys := &System{
		gfx:     gfx,
		scratch: make([]uint16, cfg.raster.StripePixels()),
		engine:  engine,
		fx:      effects.NewChain(),
	}
	if e := cfg.echo; e != nil {
		sys.fx.Add(effects.NewDelay(cfg.synth.SampleRate, e.delayMs, e.feedback, e.wet))
	}
	return sys, nil
}

// Graphics returns the rasterizer commands are queued on.
func (s *System) Graphics() *raster.Rasterizer { return s.gfx }

func (s *System) SampleRate() int { return s.engine.SampleRate() }

// Draw renders every stripe top to bottom into one scratch buffer and
// hands it to present, then empties the command queue. The buffer is reused
// for the next stripe, so present must copy or send it before returning.
// The queue is emptied even when present fails.
func (s *System) Draw(present func(stripe int, px []uint16) error) error {
	defer s.gfx.ClearQueue()
	for stripe := 0; stripe < s.gfx.Config().Stripes; stripe++ {
		if err := s.gfx.RenderStripe(stripe, s.scratch); err != nil {
			return err
		}
		if err := present(stripe, s.scratch); err != nil {
			return fmt.Errorf("present stripe %d: %w", stripe, err)
		}
	}
	return nil
}

// Synth runs fn with exclusive access to the engine.
func (s *System) Synth(fn func(e *synth.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// PlayNote tunes voice to a note name such as "C4", sets its amplitude and
// starts it.
func (s *System) PlayNote(voice int, note string, amplitude uint8) error {
	inc, err := synth.NoteIncrement(note, s.engine.SampleRate())
	if err != nil {
		return err
	}
	return s.Synth(func(e *synth.Engine) error {
		return errors.Join(
			e.SetPhaseIncrement(voice, inc),
			e.SetAmplitude(voice, amplitude),
			e.NoteOn(voice),
		)
	})
}

func (s *System) ReleaseNote(voice int) error {
	return s.Synth(func(e *synth.Engine) error { return e.NoteOff(voice) })
}

// SetVoice sets a voice's waveform and its envelope from attack, decay and
// release times in 64-sample steps and a sustain level out of 255.
func (s *System) SetVoice(voice int, wave waveform.Kind, attack, decay, sustain, release uint8) error {
	env := synth.EnvelopeFromTimes(attack, decay, sustain, release)
	return s.Synth(func(e *synth.Engine) error {
		if err := e.SetWaveform(voice, wave); err != nil {
			return err
		}
		return e.SetEnvelope(voice, env)
	})
}

// SetModulation makes the next voice modulate voice at multiplier times its
// frequency, with the modulator's amplitude setting the depth. The
// multiplier is stored with 4 fractional bits.
func (s *System) SetModulation(voice int, mode synth.Modulation, multiplier float64, amplitude uint8) error {
	ratio := uint16(min(max(math.Round(multiplier*16), 0), math.MaxUint16))
	return s.Synth(func(e *synth.Engine) error {
		if err := e.SetModulation(voice, mode, ratio); err != nil {
			return err
		}
		return e.SetAmplitude((voice+1)%e.Voices(), amplitude)
	})
}

func (s *System) SetLowPass(level uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetLowPass(level)
}

// PlayTune starts a step list on opts.Voice, replacing any running tune.
func (s *System) PlayTune(steps string, opts tune.Options) error {
	parsed, err := tune.Parse(steps)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != nil {
		_ = s.engine.NoteOff(s.seq.Voice())
	}
	s.seq = tune.New(parsed, s.engine, opts)
	return nil
}

func (s *System) StopTune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != nil {
		_ = s.engine.NoteOff(s.seq.Voice())
		s.seq = nil
	}
}

// TuneFinished reports whether the last tune has played out.
func (s *System) TuneFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == nil || s.seq.Finished()
}

// Finished reports that a one-shot tune has played out, which ends an
// audio stream reading from the System. It is false while no tune is set
// and for looping tunes.
func (s *System) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != nil && s.seq.Finished()
}

// Render produces the next len(dst) samples of the mix. It satisfies
// audio.FinishingSource.
func (s *System) Render(dst []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != nil && !s.seq.Finished() {
		s.seq.Process(dst)
	} else {
		s.engine.Render(dst)
	}
	s.fx.Apply(dst)
}
