package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

var _ drivers.Displayer = (*Frame)(nil)

func (f *Frame) Size() (int16, int16) { return int16(f.Width), int16(f.Height) }

func (f *Frame) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || int(x) >= f.Width || int(y) >= f.Height {
		return
	}
	f.Pix[int(y)*f.Width+int(x)] = RGB565(c.R, c.G, c.B)
}

func (f *Frame) Display() error { return nil }

const (
	statusFontHeight = 10
	statusFontOffset = 6
	statusLines      = 2
)

// statusStrip is a terminal surface over the top rows of a frame. It is
// exactly statusLines rows of text tall, so the terminal's scroll wraps its
// first line to the top. Rows below the lines in use are never touched.
type statusStrip struct {
	f     *Frame
	limit int16
}

var _ tinyterm.Displayer = (*statusStrip)(nil)

func (s *statusStrip) Size() (int16, int16) {
	return int16(s.f.Width), statusLines * statusFontHeight
}

func (s *statusStrip) SetPixel(x, y int16, c color.RGBA) {
	if y < 0 || y >= s.limit {
		return
	}
	s.f.SetPixel(x, y, c)
}

func (s *statusStrip) Display() error { return s.f.Display() }

func (s *statusStrip) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	for yy := y; yy < y+height; yy++ {
		for xx := x; xx < x+width; xx++ {
			s.SetPixel(xx, yy, c)
		}
	}
	return nil
}

func (s *statusStrip) SetScroll(int16) {}

func (s *statusStrip) SetRotation(drivers.Rotation) error { return nil }

// Annotate prints up to two lines in a terminal strip across the top of the
// frame. Extra lines are dropped.
func Annotate(f *Frame, lines ...string) error {
	if len(lines) > statusLines {
		lines = lines[:statusLines]
	}
	strip := &statusStrip{f: f, limit: int16(len(lines)) * statusFontHeight}
	term := tinyterm.NewTerminal(strip)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: statusFontHeight,
		FontOffset: statusFontOffset,
	})
	for i, l := range lines {
		if i > 0 {
			term.Write([]byte("\n"))
		}
		term.Write([]byte(l))
	}
	return strip.Display()
}
