// Package raster records clear, blit and text operations into per-stripe
// command queues and replays them one stripe at a time into a caller-owned
// RGB565 buffer. Nothing is drawn until RenderStripe.
package raster

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/picante-go/picante/internal/cmdqueue"
	"github.com/picante-go/picante/internal/font"
)

// Opaque disables transparency.
const Opaque = 0xFF

var (
	ErrBadConfig    = errors.New("raster: bad config")
	ErrBadTile      = errors.New("raster: bad tile")
	ErrNoFont       = errors.New("raster: no font selected")
	ErrUnknownFont  = errors.New("raster: unknown font")
	ErrFontTooTall  = errors.New("raster: font taller than a stripe")
	ErrStripeRange  = errors.New("raster: stripe out of range")
	ErrStripeBuffer = errors.New("raster: stripe buffer too small")
)

type Config struct {
	Width      int
	Height     int
	Stripes    int
	ArenaBytes int
	MaxFonts   int
}

func DefaultConfig() Config {
	return Config{
		Width:      320,
		Height:     240,
		Stripes:    15,
		ArenaBytes: 8192,
		MaxFonts:   4,
	}
}

func (c Config) StripeHeight() int {
	if c.Stripes <= 0 {
		return 0
	}
	return c.Height / c.Stripes
}

// StripePixels is the buffer length RenderStripe needs.
func (c Config) StripePixels() int { return c.Width * c.StripeHeight() }

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: screen %dx%d", ErrBadConfig, c.Width, c.Height)
	case c.Stripes <= 0 || c.Height%c.Stripes != 0:
		return fmt.Errorf("%w: height %d not divisible into %d stripes", ErrBadConfig, c.Height, c.Stripes)
	case bits.OnesCount(uint(c.StripeHeight())) != 1:
		return fmt.Errorf("%w: stripe height %d not a power of two", ErrBadConfig, c.StripeHeight())
	case c.ArenaBytes < cmdqueue.Align:
		return fmt.Errorf("%w: arena of %d bytes", ErrBadConfig, c.ArenaBytes)
	case c.MaxFonts <= 0 || c.MaxFonts >= int(font.None):
		return fmt.Errorf("%w: %d fonts", ErrBadConfig, c.MaxFonts)
	}
	return nil
}

// Rasterizer owns the command queue, font registry and drawing state for
// one screen.
type Rasterizer struct {
	cfg         Config
	stripeH     int
	stripeShift uint
	q           *cmdqueue.Queue
	fonts       *font.Registry
	cur         font.ID
	transparent uint8
}

func New(cfg Config) (*Rasterizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sh := cfg.StripeHeight()
	r := &Rasterizer{
		cfg:         cfg,
		stripeH:     sh,
		stripeShift: uint(bits.TrailingZeros(uint(sh))),
		q:           cmdqueue.New(cfg.ArenaBytes, cfg.Stripes),
		fonts:       font.NewRegistry(cfg.MaxFonts),
	}
	r.Reset()
	return r, nil
}

func (r *Rasterizer) Config() Config { return r.cfg }

// Reset restores the initial state: opaque blits, no fonts, empty queue.
func (r *Rasterizer) Reset() {
	r.transparent = Opaque
	r.cur = font.None
	r.fonts.Reset()
	r.q.Reset()
}

// ClearQueue drops every queued command and keeps fonts and settings.
func (r *Rasterizer) ClearQueue() { r.q.Reset() }

// SetTransparentIndex makes palette index i transparent for subsequent
// blits. Values outside 0..15 select Opaque.
func (r *Rasterizer) SetTransparentIndex(i int) {
	if i < 0 || i > 15 {
		r.transparent = Opaque
		return
	}
	r.transparent = uint8(i)
}

func (r *Rasterizer) TransparentIndex() uint8 { return r.transparent }

// AddFont registers f. The first font added becomes current.
func (r *Rasterizer) AddFont(f font.Font) (font.ID, error) {
	if int(f.CellHeight) > r.stripeH {
		return font.None, fmt.Errorf("%w: %d rows, stripe is %d", ErrFontTooTall, f.CellHeight, r.stripeH)
	}
	id, err := r.fonts.Add(f)
	if err != nil {
		return font.None, err
	}
	if r.cur == font.None {
		r.cur = id
	}
	return id, nil
}

// SetFont selects a registered font. An unknown id leaves the current font
// unchanged.
func (r *Rasterizer) SetFont(id font.ID) error {
	if _, ok := r.fonts.Get(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFont, id)
	}
	r.cur = id
	return nil
}

func (r *Rasterizer) CurrentFont() (font.ID, bool) {
	return r.cur, r.cur != font.None
}

// Font returns the current font's metrics.
func (r *Rasterizer) Font() (*font.Font, bool) {
	if r.cur == font.None {
		return nil, false
	}
	return r.fonts.Get(r.cur)
}

// Pending is the number of commands recorded since the last reset.
func (r *Rasterizer) Pending() int { return r.q.Len() }

func (r *Rasterizer) ArenaUsed() int { return r.q.Arena().Used() }

// Depth counts the commands queued on stripe.
func (r *Rasterizer) Depth(stripe int) int { return r.q.Depth(stripe) }

// Clear queues a fill of every stripe with colour.
func (r *Rasterizer) Clear(colour uint16) error {
	if err := r.q.Reserve(r.cfg.Stripes * cmdqueue.ClearRecord); err != nil {
		return err
	}
	for s := 0; s < r.cfg.Stripes; s++ {
		h, err := r.q.AllocClear(cmdqueue.Clear{Colour: colour})
		if err != nil {
			return err
		}
		if err := r.q.Enqueue(h, s); err != nil {
			return err
		}
	}
	return nil
}
