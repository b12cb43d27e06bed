package slot

import (
	"context"
	"errors"
	"sync"

	"fractunes/audio"
	"fractunes/midi"
)

// Play is sent when a slot starts a voice
type Play struct {
	Slot  string
	Voice *audio.Voice
}

// Bank holds every slot of the session and the registry they publish to
type Bank struct {
	registry *Registry
	slots    []*Slot
	byName   map[string]*Slot
	plays    chan Play

	mu   sync.Mutex
	mode string
}

// NewBank creates one slot per pad. opts.Register and opts.OnPlay are
// supplied by the bank.
func NewBank(pads []Pad, opts Options) *Bank {
	b := &Bank{
		registry: NewRegistry(),
		byName:   make(map[string]*Slot, len(pads)),
		plays:    make(chan Play, 64),
	}
	opts.Register = b.registry.Register
	opts.OnPlay = b.onPlay
	for _, p := range pads {
		s := New(p.Name, p.Color, opts)
		b.slots = append(b.slots, s)
		b.byName[p.Name] = s
	}
	return b
}

func (b *Bank) onPlay(name string, v *audio.Voice) {
	select {
	case b.plays <- Play{Slot: name, Voice: v}:
	default:
		// renderer is behind; the voice still plays, only its playhead is skipped
	}
}

// Plays delivers started voices to the renderer
func (b *Bank) Plays() <-chan Play {
	return b.plays
}

// SetMode switches every slot to mode and loads their samples concurrently.
// Failed loads leave those slots silent and are returned joined.
func (b *Bank) SetMode(ctx context.Context, mode string) error {
	b.mu.Lock()
	b.mode = mode
	b.mu.Unlock()

	for _, s := range b.slots {
		s.SetMode(mode)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(b.slots))
	for i, s := range b.slots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Load(ctx); err != nil && !errors.Is(err, ErrStale) {
				errs[i] = err
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (b *Bank) Mode() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// Dispatch forwards a note-on event to the registry
func (b *Bank) Dispatch(ev midi.NoteOnEvent) int {
	return b.registry.Dispatch(ev)
}

// Tap plays the named slot directly
func (b *Bank) Tap(name string) *audio.Voice {
	if s := b.byName[name]; s != nil {
		return s.Tap()
	}
	return nil
}

func (b *Bank) Slots() []*Slot { return b.slots }

func (b *Bank) Slot(name string) *Slot { return b.byName[name] }

func (b *Bank) Registry() *Registry { return b.registry }
