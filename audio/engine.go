package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"fractunes/debug"
)

const (
	DefaultSampleRate = 44100

	outChannels   = 2
	bytesPerFrame = outChannels * 4 // float32 little endian
)

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// sharedContext opens the process-wide output context. oto allows only one.
func sharedContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: outChannels,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Engine mixes any number of voices into one stereo stream. The number of
// frames it has rendered is the audio clock; voice progress and completion
// are measured against it.
type Engine struct {
	rate int
	pos  atomic.Int64 // frames rendered

	mu     sync.Mutex
	voices []*Voice
	live   bool // something pulls frames; Trigger is a no-op otherwise

	player *oto.Player
	log    *log.Logger
}

// NewEngine creates an engine rendering at sampleRate. Nothing is heard
// until Open attaches it to the output device.
func NewEngine(sampleRate int) *Engine {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Engine{rate: sampleRate, log: debug.For("audio")}
}

// Open starts pulling audio into the output device
func (e *Engine) Open() error {
	ctx, err := sharedContext(e.rate)
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	player := ctx.NewPlayer(e)
	player.SetBufferSize(e.rate / 50 * bytesPerFrame) // 20ms

	e.mu.Lock()
	e.player = player
	e.live = true
	e.mu.Unlock()

	player.Play()
	e.log.Info("output open", "rate", e.rate)
	return nil
}

// Attach makes the engine live without an output device. The caller
// drives the clock by calling Read.
func (e *Engine) Attach() {
	e.mu.Lock()
	e.live = true
	e.mu.Unlock()
}

// Close stops output. Voices in flight are dropped and later triggers
// are no-ops.
func (e *Engine) Close() error {
	e.mu.Lock()
	player := e.player
	e.player = nil
	e.live = false
	e.voices = nil
	e.mu.Unlock()

	if player == nil {
		return nil
	}
	return player.Close()
}

func (e *Engine) SampleRate() int { return e.rate }

// Now is the audio clock in seconds
func (e *Engine) Now() float64 {
	return float64(e.pos.Load()) / float64(e.rate)
}

// Active is the number of voices still mixing
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

// Trigger starts an independent playback of b at the current clock frame.
// A nil buffer, or an engine that is neither open nor attached, is a no-op
// and returns nil.
func (e *Engine) Trigger(b *Buffer) *Voice {
	if b == nil {
		return nil
	}
	v := &Voice{engine: e, buf: b, step: 1}
	if b.SampleRate() > 0 {
		v.step = float64(b.SampleRate()) / float64(e.rate)
	}
	v.length = int64(math.Ceil(float64(b.Frames()) / v.step))
	v.stopAt.Store(-1)

	e.mu.Lock()
	if !e.live {
		e.mu.Unlock()
		return nil
	}
	v.start = e.pos.Load()
	if v.length > 0 {
		e.voices = append(e.voices, v)
	}
	e.mu.Unlock()

	debug.LogEvery(32, "audio", "trigger at frame %d, %d voices", v.start, e.Active())
	return v
}

// Read renders the next frames. It implements io.Reader for the oto player.
func (e *Engine) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame

	e.mu.Lock()
	defer e.mu.Unlock()

	base := e.pos.Load()
	for i := 0; i < frames; i++ {
		now := base + int64(i)
		var l, r float32
		for _, v := range e.voices {
			if !v.audible(now) {
				continue
			}
			vl, vr := v.frame(now - v.start)
			l += vl
			r += vr
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame:], math.Float32bits(clamp(l)))
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame+4:], math.Float32bits(clamp(r)))
	}
	end := base + int64(frames)
	e.pos.Store(end)

	kept := e.voices[:0]
	for _, v := range e.voices {
		if v.audible(end) {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = kept

	return frames * bytesPerFrame, nil
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// Voice is one in-flight playback of a buffer
type Voice struct {
	engine *Engine
	buf    *Buffer
	start  int64   // clock frame of the first rendered frame
	length int64   // frames at the engine rate
	step   float64 // source frames per output frame
	stopAt atomic.Int64
}

func (v *Voice) audible(now int64) bool {
	if s := v.stopAt.Load(); s >= 0 && now >= s {
		return false
	}
	k := now - v.start
	return k >= 0 && k < v.length
}

// frame returns the stereo sample at output offset k, interpolating
// between source frames when the rates differ
func (v *Voice) frame(k int64) (float32, float32) {
	pos := float64(k) * v.step
	i := int(pos)
	frac := float32(pos - float64(i))

	left := sampleAt(v.buf.Channel(0), i, frac)
	right := left
	if v.buf.NumChannels() > 1 {
		right = sampleAt(v.buf.Channel(1), i, frac)
	}
	return left, right
}

func sampleAt(s []float32, i int, frac float32) float32 {
	if i >= len(s) {
		return 0
	}
	if i+1 >= len(s) || frac == 0 {
		return s[i]
	}
	return s[i] + (s[i+1]-s[i])*frac
}

func (v *Voice) elapsed() int64 {
	end := v.engine.pos.Load()
	if s := v.stopAt.Load(); s >= 0 && s < end {
		end = s
	}
	return end - v.start
}

// ElapsedFraction is 0 at start and 1 once the clock passes the end of
// the buffer. A stopped voice keeps the fraction it reached.
func (v *Voice) ElapsedFraction() float64 {
	if v == nil {
		return 0
	}
	if v.length == 0 {
		return 1
	}
	f := float64(v.elapsed()) / float64(v.length)
	return math.Max(0, math.Min(1, f))
}

// IsPlaying reports whether the clock is still inside the voice
func (v *Voice) IsPlaying() bool {
	if v == nil || v.stopAt.Load() >= 0 {
		return false
	}
	return v.elapsed() < v.length
}

// Stop silences this voice only
func (v *Voice) Stop() {
	if v == nil {
		return
	}
	v.stopAt.CompareAndSwap(-1, v.engine.pos.Load())
}

// StartTime is the clock time in seconds the voice started at
func (v *Voice) StartTime() float64 {
	if v == nil {
		return 0
	}
	return float64(v.start) / float64(v.engine.rate)
}

func (v *Voice) Duration() time.Duration {
	if v == nil {
		return 0
	}
	return v.buf.Duration()
}

func (v *Voice) Buffer() *Buffer {
	if v == nil {
		return nil
	}
	return v.buf
}
