package slot

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"fractunes/audio"
	"fractunes/debug"
)

// ErrStale is returned by Load when the slot changed mode while loading;
// the loaded sample is discarded.
var ErrStale = errors.New("slot: load superseded")

// Player starts playback of a buffer
type Player interface {
	Trigger(b *audio.Buffer) *audio.Voice
}

// SampleLoader fetches and decodes the sample of a slot in a mode
type SampleLoader interface {
	Load(ctx context.Context, mode, slot string) (*audio.Buffer, error)
}

// RegisterFunc receives the slot's rule and trigger every time either changes
type RegisterFunc func(name string, rule MatchRule, trigger func())

// Options wires a slot to its collaborators
type Options struct {
	Player   Player
	Loader   SampleLoader
	Store    RuleStore
	Register RegisterFunc
	OnPlay   func(name string, v *audio.Voice)
}

// Slot is one playable pad: a sample and a match rule, both scoped to the
// current mode, and the most recent voice it started.
type Slot struct {
	name  string
	color string
	opts  Options

	mu      sync.Mutex
	mode    string
	rule    MatchRule
	buf     *audio.Buffer
	loadErr error
	gen     uint64
	latest  *audio.Voice

	peaks      []audio.Peak
	peaksWidth int

	log *log.Logger
}

func New(name, color string, opts Options) *Slot {
	return &Slot{
		name:  name,
		color: color,
		opts:  opts,
		log:   debug.For("slot").With("slot", name),
	}
}

// SetMode switches the slot to mode: the mode's rule is loaded (or
// defaulted) and registered, and the sample is cleared until Load.
func (s *Slot) SetMode(mode string) {
	rule := LoadRule(s.opts.Store, mode, s.name)

	s.mu.Lock()
	s.mode = mode
	s.rule = rule
	s.buf = nil
	s.loadErr = nil
	s.latest = nil
	s.peaks = nil
	s.gen++
	s.mu.Unlock()

	debug.Forget(s.errKey(mode))
	s.publish(rule)
}

// Load fetches the sample for the current mode. On failure the slot stays
// silent; the error is reported once and returned.
func (s *Slot) Load(ctx context.Context) error {
	s.mu.Lock()
	mode, gen := s.mode, s.gen
	s.mu.Unlock()

	if s.opts.Loader == nil {
		return nil
	}
	buf, err := s.opts.Loader.Load(ctx, mode, s.name)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("discarding stale load", "mode", mode)
		return ErrStale
	}
	if err != nil {
		s.loadErr = err
		s.mu.Unlock()
		debug.Report(s.errKey(mode), err)
		return err
	}
	s.buf = buf
	s.peaks = nil
	rule := s.rule
	s.mu.Unlock()

	s.log.Info("sample ready", "mode", mode, "duration", buf.Duration())
	s.publish(rule)
	return nil
}

func (s *Slot) errKey(mode string) string {
	return "sample." + mode + "." + s.name
}

func (s *Slot) publish(rule MatchRule) {
	if s.opts.Register != nil {
		s.opts.Register(s.name, rule, s.trigger)
	}
}

func (s *Slot) trigger() { s.Tap() }

// Tap plays the sample. Without a loaded sample it does nothing and
// returns nil.
func (s *Slot) Tap() *audio.Voice {
	s.mu.Lock()
	buf := s.buf
	s.mu.Unlock()
	if buf == nil || s.opts.Player == nil {
		return nil
	}

	v := s.opts.Player.Trigger(buf)
	if v == nil {
		return nil
	}

	s.mu.Lock()
	if s.buf == buf {
		s.latest = v
	}
	s.mu.Unlock()

	if s.opts.OnPlay != nil {
		s.opts.OnPlay(s.name, v)
	}
	return v
}

// UpdateRule changes one filter, persists the rule and re-registers
func (s *Slot) UpdateRule(field Field, f Filter) error {
	s.mu.Lock()
	rule, err := s.rule.With(field, f)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.rule = rule
	mode := s.mode
	s.mu.Unlock()

	if err := SaveRule(s.opts.Store, mode, s.name, rule); err != nil {
		debug.Report("rule.save."+StorageKey(mode, s.name), err)
	}
	s.log.Info("rule updated", "mode", mode, "rule", rule.String())
	s.publish(rule)
	return nil
}

// Playhead returns the latest voice's progress and whether it is playing
func (s *Slot) Playhead() (float64, bool) {
	v := s.Latest()
	if v == nil {
		return 0, false
	}
	return v.ElapsedFraction(), v.IsPlaying()
}

// Envelope returns the waveform of the loaded sample, computed once per
// buffer and width. Nil when nothing is loaded.
func (s *Slot) Envelope(width int) []audio.Peak {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil {
		return nil
	}
	if s.peaks == nil || s.peaksWidth != width {
		s.peaks = s.buf.Envelope(width)
		s.peaksWidth = width
	}
	return s.peaks
}

func (s *Slot) Name() string { return s.name }

func (s *Slot) Color() string { return s.color }

func (s *Slot) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Slot) Rule() MatchRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rule
}

// Loaded reports whether a sample is ready to play
func (s *Slot) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf != nil
}

// Err is the last load failure for the current mode
func (s *Slot) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Latest is the most recently started voice, which drives the playhead
func (s *Slot) Latest() *audio.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
