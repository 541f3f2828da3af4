package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/picante-go/picante/internal/waveform"
)

func newEngine(t *testing.T, p Params) *Engine {
	t.Helper()
	e, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// scaled applies full-scale base amplitude and envelope the way a voice does.
func scaled(v int16) int16 {
	s := int32(v)
	s = (s * MaxLevel) >> 15
	s = (s * MaxLevel) >> 15
	return int16(s)
}

func TestNewRejectsBadParams(t *testing.T) {
	for _, p := range []Params{{SampleRate: 0, Voices: 4}, {SampleRate: 16000, Voices: 0}, {SampleRate: 16000, Voices: 300}} {
		if _, err := New(p); !errors.Is(err, ErrBadParams) {
			t.Errorf("New(%+v) err = %v", p, err)
		}
	}
}

func TestSilenceWithNoVoices(t *testing.T) {
	e := newEngine(t, DefaultParams())
	buf := make([]int16, 256)
	for i := range buf {
		buf[i] = 123
	}
	e.Render(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %d, want silence", i, s)
		}
	}
	raw := []byte{1, 2, 3, 4, 5}
	e.RenderBytes(raw)
	for i, b := range raw {
		if b != 0 {
			t.Fatalf("byte %d = %d", i, b)
		}
	}
}

func TestSine220Scenario(t *testing.T) {
	e := newEngine(t, DefaultParams())
	delta := uint32(math.Round(220 * 65536.0 / 16000))
	_ = e.SetWaveform(0, waveform.Sine)
	_ = e.SetPhaseIncrement(0, delta<<16)
	_ = e.SetAmplitude(0, 255)
	_ = e.SetEnvelope(0, Envelope{Attack: envMax, Decay: 0, Sustain: MaxLevel, Release: envMax})
	if err := e.NoteOn(0); err != nil {
		t.Fatal(err)
	}
	buf := make([]int16, 16)
	e.Render(buf)
	for k, got := range buf {
		want := scaled(waveform.SineAt(uint16(uint32(k) * delta)))
		if got != want {
			t.Fatalf("sample %d = %d, want %d", k, got, want)
		}
	}
}

func TestSetAmplitudeScale(t *testing.T) {
	e := newEngine(t, DefaultParams())
	for a, want := range map[uint8]int32{0: 0, 1: 128, 128: 16448, 255: 32767} {
		_ = e.SetAmplitude(2, a)
		if got := e.voices[2].base; got != want {
			t.Errorf("SetAmplitude(%d) -> %d, want %d", a, got, want)
		}
	}
}

func stepUntil(e *Engine, v int, stage Stage, limit int) int {
	one := make([]int16, 1)
	for n := 1; n <= limit; n++ {
		e.Render(one)
		if e.Stage(v) == stage {
			return n
		}
	}
	return -1
}

func TestEnvelopeTiming(t *testing.T) {
	e := newEngine(t, DefaultParams())
	_ = e.SetAmplitude(0, 255)
	_ = e.SetPhaseIncrement(0, 1000<<16)
	env := Envelope{Attack: 1000 << 16, Decay: 500 << 16, Sustain: 16000, Release: 100 << 16}
	_ = e.SetEnvelope(0, env)
	_ = e.NoteOn(0)
	if e.Stage(0) != Attack {
		t.Fatalf("NoteOn stage = %v", e.Stage(0))
	}

	want := int(math.Ceil(32768.0/1000) + math.Ceil((32768.0-16000)/500))
	n := stepUntil(e, 0, Sustain, 1000)
	if n < want-1 || n > want+1 {
		t.Fatalf("reached sustain after %d samples, want %d±1", n, want)
	}

	_ = e.NoteOff(0)
	if e.Stage(0) != Release {
		t.Fatalf("NoteOff stage = %v", e.Stage(0))
	}
	want = int(math.Ceil(16000.0 / 100))
	n = stepUntil(e, 0, NotPlaying, 1000)
	if n < want-1 || n > want+1 {
		t.Fatalf("release took %d samples, want %d±1", n, want)
	}
	if e.Playing(0) || e.ActiveVoiceCount() != 0 {
		t.Fatalf("voice still playing after release")
	}
}

func TestNoteOffFromAttack(t *testing.T) {
	e := newEngine(t, DefaultParams())
	_ = e.SetAmplitude(0, 255)
	_ = e.SetEnvelope(0, Envelope{Attack: 10 << 16, Decay: 1 << 16, Sustain: 100, Release: 5 << 16})
	_ = e.NoteOn(0)
	e.Render(make([]int16, 30)) // level 300
	_ = e.NoteOff(0)
	if n := stepUntil(e, 0, NotPlaying, 1000); n < 59 || n > 61 {
		t.Fatalf("release from attack took %d samples", n)
	}
}

func TestMixingIsLinear(t *testing.T) {
	setup := func(e *Engine, v int, wave waveform.Kind, inc uint32) {
		_ = e.SetWaveform(v, wave)
		_ = e.SetPhaseIncrement(v, inc)
		_ = e.SetAmplitude(v, 90)
		_ = e.SetEnvelope(v, Envelope{Attack: 300 << 16, Decay: 20 << 16, Sustain: 20000, Release: 50 << 16})
		_ = e.NoteOn(v)
	}
	both := newEngine(t, DefaultParams())
	only0 := newEngine(t, DefaultParams())
	only1 := newEngine(t, DefaultParams())
	setup(both, 0, waveform.Triangle, 1234<<16)
	setup(both, 1, waveform.Noise, 3001<<16)
	setup(only0, 0, waveform.Triangle, 1234<<16)
	setup(only1, 1, waveform.Noise, 3001<<16)

	n := 2000
	a, b, c := make([]int16, n), make([]int16, n), make([]int16, n)
	both.Render(a)
	only0.Render(b)
	only1.Render(c)
	for i := range a {
		if int32(a[i]) != int32(b[i])+int32(c[i]) {
			t.Fatalf("sample %d: mix %d != %d + %d", i, a[i], b[i], c[i])
		}
	}
}

func TestSharedNoiseCouplesVoices(t *testing.T) {
	p := DefaultParams()
	p.SharedNoise = true
	shared := newEngine(t, p)
	alone := [2]*Engine{newEngine(t, p), newEngine(t, p)}
	incs := [2]uint32{3000 << 16, 5000 << 16}
	for v := 0; v < 2; v++ {
		for _, e := range []*Engine{shared, alone[v]} {
			_ = e.SetWaveform(v, waveform.Noise)
			_ = e.SetPhaseIncrement(v, incs[v])
			_ = e.SetAmplitude(v, 60)
			_ = e.NoteOn(v)
		}
	}
	n := 500
	mix, a, b := make([]int16, n), make([]int16, n), make([]int16, n)
	shared.Render(mix)
	alone[0].Render(a)
	alone[1].Render(b)
	for i := range mix {
		if int32(mix[i]) != int32(a[i])+int32(b[i]) {
			return
		}
	}
	t.Fatalf("shared noise generator behaved like independent ones")
}

func TestSaturation(t *testing.T) {
	e := newEngine(t, DefaultParams())
	for v := 0; v < 4; v++ {
		_ = e.SetWaveform(v, waveform.Square)
		_ = e.SetAmplitude(v, 255)
		_ = e.NoteOn(v)
	}
	buf := make([]int16, 4)
	e.Render(buf)
	if buf[0] != waveform.MinSample {
		t.Fatalf("sum of four full squares = %d, want clipped to %d", buf[0], waveform.MinSample)
	}
}

func TestLowPass(t *testing.T) {
	e := newEngine(t, DefaultParams())
	_ = e.SetWaveform(0, waveform.Square)
	_ = e.SetAmplitude(0, 255)
	_ = e.NoteOn(0)
	e.SetLowPass(3)
	buf := make([]int16, 64)
	e.Render(buf)
	full := int32(scaled(waveform.SquareAt(0)))
	if want := int16(full >> 3); buf[0] != want {
		t.Fatalf("first filtered sample = %d, want %d", buf[0], want)
	}
	for i := 1; i < len(buf); i++ {
		if buf[i] > buf[i-1] {
			t.Fatalf("filter output not settling at %d: %d after %d", i, buf[i], buf[i-1])
		}
	}
	e.SetLowPass(0)
	e.Render(buf[:1])
	if int32(buf[0]) != full {
		t.Fatalf("unfiltered square = %d", buf[0])
	}
	e.SetLowPass(20)
	if e.LowPass() != 8 {
		t.Fatalf("level not clamped: %d", e.LowPass())
	}
}

func TestModulatorIsOwned(t *testing.T) {
	e := newEngine(t, DefaultParams())
	_ = e.SetPhaseIncrement(0, 901<<16)
	_ = e.SetAmplitude(0, 0) // carrier silent
	_ = e.SetAmplitude(1, 255)
	if err := e.SetModulation(0, ModLinear, 32); err != nil {
		t.Fatal(err)
	}
	_ = e.NoteOn(0)
	if !e.Playing(1) || e.ActiveVoiceCount() != 1 {
		t.Fatalf("modulator should play but not count: playing=%v active=%d", e.Playing(1), e.ActiveVoiceCount())
	}
	if e.voices[1].inc != 2*901<<16 {
		t.Fatalf("modulator increment = %d", e.voices[1].inc)
	}
	buf := make([]int16, 100)
	e.Render(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %d: modulator leaked into the mix", i, s)
		}
	}
	_ = e.NoteOff(0)
	if e.Stage(1) != Release {
		t.Fatalf("modulator stage after carrier NoteOff = %v", e.Stage(1))
	}
	e.Render(make([]int16, 4))
	if e.Playing(0) || e.Playing(1) {
		t.Fatalf("voices still playing after instant release")
	}
}

func TestDisablingModulationStopsModulator(t *testing.T) {
	e := newEngine(t, DefaultParams())
	_ = e.SetPhaseIncrement(0, 901<<16)
	_ = e.SetAmplitude(0, 255)
	_ = e.SetAmplitude(1, 255)
	_ = e.SetModulation(0, ModLinear, 16)
	_ = e.NoteOn(0)
	e.Render(make([]int16, 64))
	if err := e.SetModulation(0, ModNone, 0); err != nil {
		t.Fatal(err)
	}
	if e.Playing(1) {
		t.Fatalf("modulator stage %v after modulation was disabled", e.Stage(1))
	}
	_ = e.NoteOff(0)
	e.Render(make([]int16, 1600))
	if n := e.ActiveVoiceCount(); n != 0 || e.Playing(1) {
		t.Fatalf("active=%d modulator stage=%v after carrier release", n, e.Stage(1))
	}
}

func TestNoteOnRejectsOwnedModulator(t *testing.T) {
	e := newEngine(t, DefaultParams())
	_ = e.SetPhaseIncrement(0, 901<<16)
	_ = e.SetModulation(0, ModLinear, 16)
	_ = e.NoteOn(0)
	if err := e.NoteOn(1); !errors.Is(err, ErrVoiceOwned) {
		t.Fatalf("NoteOn on owned modulator err = %v", err)
	}
	if e.ActiveVoiceCount() != 1 {
		t.Fatalf("active = %d, modulator joined the mix", e.ActiveVoiceCount())
	}
	// once the carrier has ended the voice is free again
	_ = e.NoteOff(0)
	e.Render(make([]int16, 4))
	if err := e.NoteOn(1); err != nil {
		t.Fatalf("NoteOn after carrier ended: %v", err)
	}
}

func TestModulationHalvesIncrementWithSilentModulator(t *testing.T) {
	for _, mode := range []Modulation{ModLinear, ModExponential} {
		e := newEngine(t, DefaultParams())
		inc := uint32(901 << 16)
		_ = e.SetPhaseIncrement(0, inc)
		_ = e.SetAmplitude(0, 255)
		_ = e.SetModulation(0, mode, 16)
		_ = e.NoteOn(0)
		buf := make([]int16, 32)
		e.Render(buf)
		var phase uint32
		for k, got := range buf {
			if want := scaled(waveform.SineAt(uint16(phase >> 16))); got != want {
				t.Fatalf("mode %d sample %d = %d, want %d", mode, k, got, want)
			}
			phase += inc / 2
		}
	}
}

func TestModulatorRingTerminates(t *testing.T) {
	e := newEngine(t, DefaultParams())
	for v := 0; v < 4; v++ {
		_ = e.SetAmplitude(v, 200)
		_ = e.SetPhaseIncrement(v, 700<<16)
		_ = e.SetModulation(v, ModLinear, 24)
	}
	_ = e.NoteOn(0)
	e.Render(make([]int16, 64))
	if e.ActiveVoiceCount() != 1 {
		t.Fatalf("active = %d", e.ActiveVoiceCount())
	}
}

func TestSelectorsOutOfRange(t *testing.T) {
	e := newEngine(t, DefaultParams())
	checks := map[string]error{
		"waveform":   e.SetWaveform(4, waveform.Sine),
		"amplitude":  e.SetAmplitude(-1, 1),
		"increment":  e.SetPhaseIncrement(9, 1),
		"envelope":   e.SetEnvelope(4, Instant),
		"modulation": e.SetModulation(4, ModLinear, 16),
		"note on":    e.NoteOn(4),
		"note off":   e.NoteOff(-2),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrVoiceRange) {
			t.Errorf("%s: err = %v, want ErrVoiceRange", name, err)
		}
	}
	if err := e.SetWaveform(0, waveform.Kind(9)); !errors.Is(err, ErrBadWaveform) {
		t.Errorf("bad waveform err = %v", err)
	}
	if err := e.SetModulation(0, Modulation(7), 16); !errors.Is(err, ErrBadModulation) {
		t.Errorf("bad modulation err = %v", err)
	}
	if e.Playing(7) || e.Stage(-1) != NotPlaying {
		t.Errorf("out-of-range queries should report silence")
	}
}

func BenchmarkRender(b *testing.B) {
	e, _ := New(DefaultParams())
	for v := 0; v < 4; v++ {
		_ = e.SetWaveform(v, waveform.Kind(v))
		_ = e.SetAmplitude(v, 60)
		_ = e.SetPhaseIncrement(v, uint32(v+1)*900<<16)
		_ = e.NoteOn(v)
	}
	buf := make([]int16, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Render(buf)
	}
}
