package midi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"fractunes/debug"
)

// State of the MIDI access request
type State int

const (
	StateUnrequested State = iota
	StateRequesting
	StateGranted
	StateDenied
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUnrequested:
		return "unrequested"
	case StateRequesting:
		return "requesting"
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	case StateUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Dispatcher receives every decoded note-on event
type Dispatcher interface {
	Dispatch(ev NoteOnEvent) int
}

// Port enumeration can hang on some platforms (CoreMIDI); give up after this
const scanTimeout = 3 * time.Second

// InputManager requests MIDI access, tracks inputs, keeps exactly one of
// them subscribed and fans decoded note-on events out to the dispatcher.
type InputManager struct {
	host       Host
	dispatcher Dispatcher
	history    *History

	mu       sync.RWMutex
	state    State
	devices  []Port
	selected string // the user's choice, kept even while that device is absent
	active   string // the subscribed device
	stop     func()
	onSelect func(id string)

	// events are handled one at a time, in delivery order
	dispatchMu sync.Mutex

	updates  chan struct{}
	pollRate time.Duration
	now      func() time.Time
	log      *log.Logger
}

// NewInputManager creates a manager. host may be nil when the environment
// has no MIDI support; preferred is the previously chosen device id.
func NewInputManager(host Host, d Dispatcher, preferred string) *InputManager {
	return &InputManager{
		host:       host,
		dispatcher: d,
		history:    NewHistory(HistorySize),
		selected:   preferred,
		updates:    make(chan struct{}, 1),
		pollRate:   time.Second,
		now:        time.Now,
		log:        debug.For("midi"),
	}
}

// OnSelect registers a callback run after the user picks a device
func (im *InputManager) OnSelect(fn func(id string)) {
	im.mu.Lock()
	im.onSelect = fn
	im.mu.Unlock()
}

// Updates signals device list, selection, state or history changes.
// Signals are coalesced; read the accessors for the current values.
func (im *InputManager) Updates() <-chan struct{} {
	return im.updates
}

func (im *InputManager) notify() {
	select {
	case im.updates <- struct{}{}:
	default:
	}
}

// Request asks the host for MIDI access and subscribes the selected input.
// Unavailability and denial are reported once and leave the manager inert.
func (im *InputManager) Request(ctx context.Context) error {
	im.mu.Lock()
	if im.host == nil {
		im.state = StateUnavailable
		im.mu.Unlock()
		debug.Report("midi.capability", ErrCapabilityUnavailable)
		im.notify()
		return ErrCapabilityUnavailable
	}
	im.state = StateRequesting
	im.mu.Unlock()
	im.notify()

	im.log.Info("requesting MIDI access")
	ports, err := im.scan(ctx)

	im.mu.Lock()
	defer im.notify()
	defer im.mu.Unlock()

	if err != nil {
		im.unsubscribeLocked()
		im.devices = nil
		if errors.Is(err, ErrCapabilityUnavailable) {
			im.state = StateUnavailable
			debug.Report("midi.capability", err)
			return err
		}
		im.state = StateDenied
		if !errors.Is(err, ErrPermissionDenied) {
			err = errors.Join(ErrPermissionDenied, err)
		}
		debug.Report("midi.permission", err)
		return err
	}

	im.state = StateGranted
	im.devices = ports
	im.log.Info("MIDI access granted", "inputs", len(ports))
	im.resubscribeLocked()
	return nil
}

// Select subscribes the input with id, dropping the previous subscription
// first. An id that is not present falls back to the first input. After a
// denial, choosing a device requests access again.
func (im *InputManager) Select(id string) {
	im.mu.Lock()
	im.selected = id
	state := im.state
	if state == StateGranted {
		im.resubscribeLocked()
	}
	fn := im.onSelect
	im.mu.Unlock()

	if fn != nil {
		fn(id)
	}
	if state == StateDenied {
		if err := im.Request(context.Background()); err != nil {
			im.log.Warn("MIDI access still refused", "err", err)
		}
		return
	}
	im.notify()
}

// Run rescans inputs until ctx is done (hot-plug), then closes the manager.
// Blocking - run in a goroutine.
func (im *InputManager) Run(ctx context.Context) {
	ticker := time.NewTicker(im.pollRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			im.Close()
			return
		case <-ticker.C:
			im.rescan(ctx)
		}
	}
}

func (im *InputManager) rescan(ctx context.Context) {
	if im.State() != StateGranted {
		return
	}
	ports, err := im.scan(ctx)
	if err != nil {
		im.log.Warn("rescan failed", "err", err)
		return
	}

	im.mu.Lock()
	if samePorts(ports, im.devices) {
		im.mu.Unlock()
		return
	}
	im.devices = ports
	im.resubscribeLocked()
	im.mu.Unlock()

	im.log.Info("inputs changed", "inputs", len(ports))
	im.notify()
}

func (im *InputManager) scan(ctx context.Context) ([]Port, error) {
	type result struct {
		ports []Port
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		ports, err := im.host.Inputs()
		ch <- result{ports: ports, err: err}
	}()

	select {
	case r := <-ch:
		return r.ports, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(scanTimeout):
		return nil, errors.New("midi: timed out listing inputs")
	}
}

func (im *InputManager) resubscribeLocked() {
	target := pickPort(im.devices, im.selected)
	if target == im.active && im.stop != nil {
		return
	}
	im.unsubscribeLocked()
	if target == "" {
		return
	}

	stop, err := im.host.Listen(target, im.handle)
	if err != nil {
		debug.Report("midi.listen."+target, err)
		return
	}
	im.active = target
	im.stop = stop
	im.log.Info("subscribed", "input", target)
}

func (im *InputManager) unsubscribeLocked() {
	if im.stop != nil {
		im.stop()
		im.log.Info("unsubscribed", "input", im.active)
	}
	im.stop = nil
	im.active = ""
}

func (im *InputManager) handle(msg []byte, timestampms int32) {
	debug.LogEvery(64, "midi", "raw % X at %dms", msg, timestampms)

	ev, ok := Decode(msg, im.now())
	if !ok {
		return
	}

	im.dispatchMu.Lock()
	im.history.Add(ev)
	n := 0
	if im.dispatcher != nil {
		n = im.dispatcher.Dispatch(ev)
	}
	im.dispatchMu.Unlock()

	im.log.Debug("note on", "note", ev.Note, "vel", ev.Velocity, "ch", ev.Channel, "triggered", n)
	im.notify()
}

// Close unsubscribes the active input
func (im *InputManager) Close() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.unsubscribeLocked()
}

// State returns the access state
func (im *InputManager) State() State {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.state
}

// Devices returns a snapshot of the known inputs
func (im *InputManager) Devices() []Port {
	im.mu.RLock()
	defer im.mu.RUnlock()
	out := make([]Port, len(im.devices))
	copy(out, im.devices)
	return out
}

// Selected returns the id of the subscribed input, or "" if none
func (im *InputManager) Selected() string {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.active
}

// History returns the recent note-on events, newest first
func (im *InputManager) History() []NoteOnEvent {
	return im.history.Events()
}

func pickPort(ports []Port, preferred string) string {
	if preferred != "" {
		for _, p := range ports {
			if p.ID == preferred {
				return p.ID
			}
		}
	}
	if len(ports) > 0 {
		return ports[0].ID
	}
	return ""
}

func samePorts(a, b []Port) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
