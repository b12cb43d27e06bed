package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

// render advances the engine clock by frames and returns the left channel
func render(e *Engine, frames int) []float32 {
	p := make([]byte, frames*bytesPerFrame)
	n, _ := e.Read(p)
	left := make([]float32, n/bytesPerFrame)
	for i := range left {
		left[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*bytesPerFrame:]))
	}
	return left
}

func constBuffer(rate, frames int, value float32) *Buffer {
	s := make([]float32, frames)
	for i := range s {
		s[i] = value
	}
	return NewBuffer(rate, s)
}

func TestTriggerNilBuffer(t *testing.T) {
	e := NewEngine(1000)
	e.Attach()
	if v := e.Trigger(nil); v != nil {
		t.Fatalf("Trigger(nil) = %v, want nil", v)
	}
	var v *Voice
	if v.IsPlaying() || v.ElapsedFraction() != 0 {
		t.Error("nil voice reports progress")
	}
	v.Stop()
	if v.StartTime() != 0 || v.Duration() != 0 || v.Buffer() != nil {
		t.Error("nil voice reports a playback")
	}
}

func TestTriggerWithoutOutputIsInert(t *testing.T) {
	e := NewEngine(1000)
	b := constBuffer(1000, 100, 0.5)

	for i := 0; i < 1000; i++ {
		if v := e.Trigger(b); v != nil {
			t.Fatalf("trigger %d on an engine nothing pulls from returned a voice", i)
		}
	}
	if n := e.Active(); n != 0 {
		t.Errorf("Active() = %d, want 0", n)
	}

	e.Attach()
	if v := e.Trigger(b); v == nil || !v.IsPlaying() {
		t.Fatal("attached engine should start voices")
	}

	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if e.Active() != 0 {
		t.Error("Close should drop voices in flight")
	}
	if v := e.Trigger(b); v != nil {
		t.Error("closed engine started a voice")
	}
}

func TestVoiceProgressFollowsClock(t *testing.T) {
	e := NewEngine(1000)
	e.Attach()
	v := e.Trigger(constBuffer(1000, 100, 0.25))

	if !v.IsPlaying() || v.ElapsedFraction() != 0 {
		t.Fatalf("fresh voice: playing=%v fraction=%v", v.IsPlaying(), v.ElapsedFraction())
	}

	out := render(e, 50)
	if out[0] != 0.25 || out[49] != 0.25 {
		t.Errorf("rendered %v..%v, want 0.25", out[0], out[49])
	}
	if got := v.ElapsedFraction(); got != 0.5 {
		t.Errorf("fraction after half = %v", got)
	}

	render(e, 60)
	if v.IsPlaying() {
		t.Error("still playing after end")
	}
	if got := v.ElapsedFraction(); got != 1 {
		t.Errorf("fraction after end = %v, want 1", got)
	}
	if e.Active() != 0 {
		t.Errorf("finished voice still mixing: %d", e.Active())
	}
}

func TestOverlappingVoicesAreIndependent(t *testing.T) {
	e := NewEngine(1000)
	e.Attach()
	buf := constBuffer(1000, 100, 0.25)

	first := e.Trigger(buf)
	render(e, 40)
	second := e.Trigger(buf)

	if e.Active() != 2 {
		t.Fatalf("active = %d, want 2", e.Active())
	}

	out := render(e, 10)
	if out[0] != 0.5 {
		t.Errorf("overlap sum = %v, want 0.5", out[0])
	}
	if got := first.ElapsedFraction(); got != 0.5 {
		t.Errorf("first = %v, want 0.5", got)
	}
	if got := second.ElapsedFraction(); got != 0.1 {
		t.Errorf("second = %v, want 0.1", got)
	}

	first.Stop()
	render(e, 20)
	if first.IsPlaying() {
		t.Error("stopped voice playing")
	}
	if got := first.ElapsedFraction(); got != 0.5 {
		t.Errorf("stopped voice fraction moved to %v", got)
	}
	if !second.IsPlaying() {
		t.Error("stopping first stopped second")
	}
	if got := second.ElapsedFraction(); got != 0.3 {
		t.Errorf("second = %v, want 0.3", got)
	}

	render(e, 100)
	if second.IsPlaying() || second.ElapsedFraction() != 1 {
		t.Errorf("second not complete: %v", second.ElapsedFraction())
	}
}

func TestTriggerResamples(t *testing.T) {
	e := NewEngine(1000)
	e.Attach()
	v := e.Trigger(constBuffer(500, 50, 0.5)) // 100ms of source

	if v.length != 100 {
		t.Fatalf("length = %d frames at engine rate, want 100", v.length)
	}
	render(e, 100)
	if v.IsPlaying() {
		t.Error("voice outlived its duration")
	}
}

func TestMixClamps(t *testing.T) {
	e := NewEngine(1000)
	e.Attach()
	buf := constBuffer(1000, 10, 0.75)
	e.Trigger(buf)
	e.Trigger(buf)
	out := render(e, 1)
	if out[0] != 1 {
		t.Errorf("clamped = %v, want 1", out[0])
	}
}

func TestEmptyBufferCompletesImmediately(t *testing.T) {
	e := NewEngine(1000)
	e.Attach()
	v := e.Trigger(NewBuffer(1000))
	if v.IsPlaying() || v.ElapsedFraction() != 1 {
		t.Errorf("empty voice playing=%v fraction=%v", v.IsPlaying(), v.ElapsedFraction())
	}
	if e.Active() != 0 {
		t.Error("empty voice mixed")
	}
}

func TestClock(t *testing.T) {
	e := NewEngine(1000)
	e.Attach()
	render(e, 250)
	if got := e.Now(); got != 0.25 {
		t.Errorf("Now = %v", got)
	}
	v := e.Trigger(constBuffer(1000, 10, 0))
	if v.StartTime() != 0.25 {
		t.Errorf("StartTime = %v", v.StartTime())
	}
}
