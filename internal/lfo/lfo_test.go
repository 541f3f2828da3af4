package lfo

import "testing"

func near(got, want, tol int32) bool {
	d := got - want
	return d >= -tol && d <= tol
}

func TestLFOTriangleBasicShape(t *testing.T) {
	l := &LFO{}
	l.Set(1000, 1, 100, WaveTriangle) // 100 samples per cycle

	samples := make([]int32, 100)
	for i := range samples {
		samples[i] = l.Advance(1)
	}
	if !near(samples[0], -1000, 1) {
		t.Errorf("triangle at phase 0: got %d, want -1000", samples[0])
	}
	if !near(samples[25], 0, 5) {
		t.Errorf("triangle at phase 0.25: got %d, want ~0", samples[25])
	}
	if !near(samples[50], 1000, 5) {
		t.Errorf("triangle at phase 0.5: got %d, want 1000", samples[50])
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := &LFO{}
	l.Set(-200, 1, 100, WaveSquare)
	if v := l.Advance(10); !near(v, 200, 1) {
		t.Errorf("square first half: got %d, want 200", v)
	}
	l.Advance(45)
	if v := l.Value(); v != -200 {
		t.Errorf("square second half: got %d, want -200", v)
	}
}

func TestLFOSawFalls(t *testing.T) {
	l := &LFO{}
	l.Set(100, 4, 400, WaveSaw)
	prev := l.Advance(1)
	for i := 1; i < 99; i++ {
		v := l.Advance(1)
		if v > prev {
			t.Fatalf("saw rose at sample %d: %d after %d", i, v, prev)
		}
		prev = v
	}
}

func TestLFOInactive(t *testing.T) {
	l := &LFO{}
	l.Set(0, 5, 100, WaveSaw)
	if l.Active() || l.Advance(10) != 0 {
		t.Fatalf("zero depth LFO produced output")
	}
	l.Set(10, 0, 100, 9)
	if l.Active() || l.waveform != WaveTriangle {
		t.Fatalf("zero rate LFO active or bad waveform kept")
	}
}
