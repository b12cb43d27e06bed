package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"fractunes/audio"
	"fractunes/debug"
	"fractunes/midi"
	"fractunes/slot"
	"fractunes/theme"
)

// frameInterval paces the playhead redraw
const frameInterval = time.Second / 60

type view int

const (
	viewPads view = iota
	viewDevices
	viewRules
)

// Options wires the model to the running session
type Options struct {
	Bank          *slot.Bank
	Inputs        *midi.InputManager // may be nil
	Theme         *theme.Theme
	WaveformWidth int
	OnMode        func(mode string) // persists the chosen mode
}

type Model struct {
	bank   *slot.Bank
	inputs *midi.InputManager
	theme  *theme.Theme
	keys   keyMap
	onMode func(string)

	width    int // waveform columns
	view     view
	cursor   int        // device list row
	focus    int        // slot being edited
	field    slot.Field // rule field being edited
	loading  bool
	pending  string // mode being loaded at the user's request
	status   string
	quitting bool

	log *log.Logger
}

// PlayMsg is a voice started by a tap or a MIDI trigger
type PlayMsg slot.Play

// InputsMsg signals a change in MIDI state, devices or history
type InputsMsg struct{}

// ModeMsg reports a finished mode switch
type ModeMsg struct {
	Mode string
	Err  error
}

// frameMsg drives one slot's playhead while voice plays
type frameMsg struct {
	slot  string
	voice *audio.Voice
}

func NewModel(opts Options) Model {
	th := opts.Theme
	if th == nil {
		th = theme.New(nil)
	}
	width := opts.WaveformWidth
	if width <= 0 {
		width = 28
	}
	return Model{
		bank:   opts.Bank,
		inputs: opts.Inputs,
		theme:  th,
		keys:   defaultKeyMap(),
		onMode: opts.OnMode,
		width:  width,
		log:    debug.For("tui"),
	}
}

// ListenForPlays waits for the next started voice
func ListenForPlays(bank *slot.Bank) tea.Cmd {
	return func() tea.Msg {
		return PlayMsg(<-bank.Plays())
	}
}

// ListenForInputs waits for the next MIDI manager update
func ListenForInputs(im *midi.InputManager) tea.Cmd {
	if im == nil {
		return nil
	}
	return func() tea.Msg {
		<-im.Updates()
		return InputsMsg{}
	}
}

// SwitchMode loads mode on every slot in the background
func SwitchMode(bank *slot.Bank, mode string) tea.Cmd {
	return func() tea.Msg {
		err := bank.SetMode(context.Background(), mode)
		return ModeMsg{Mode: mode, Err: err}
	}
}

func nextFrame(name string, v *audio.Voice) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{slot: name, voice: v}
	})
}

// keepTicking reports whether a playhead loop following v should request
// another frame: only while v is still the slot's latest voice and has not
// reached the end.
func keepTicking(latest, v *audio.Voice) bool {
	return v != nil && latest == v && v.ElapsedFraction() < 1
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForPlays(m.bank),
		ListenForInputs(m.inputs),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case PlayMsg:
		// every playback starts its own loop; an older loop for the same
		// slot stops on its next frame
		return m, tea.Batch(ListenForPlays(m.bank), nextFrame(msg.Slot, msg.Voice))

	case frameMsg:
		s := m.bank.Slot(msg.slot)
		if s == nil || !keepTicking(s.Latest(), msg.voice) {
			return m, nil
		}
		return m, nextFrame(msg.slot, msg.voice)

	case InputsMsg:
		if n := len(m.devices()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, ListenForInputs(m.inputs)

	case ModeMsg:
		if m.pending != "" && msg.Mode != m.pending {
			// superseded by a later switch that is still loading
			return m, nil
		}
		m.loading = false
		m.pending = ""
		if msg.Err != nil {
			m.status = "some samples failed to load"
			m.log.Warn("mode loaded with errors", "mode", msg.Mode, "err", msg.Err)
		} else {
			m.status = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.view {
	case viewDevices:
		return m.handleDevicesKey(msg)
	case viewRules:
		return m.handleRulesKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Tap):
		idx := int(msg.String()[0] - '1')
		if slots := m.bank.Slots(); idx < len(slots) {
			slots[idx].Tap()
		}

	case key.Matches(msg, m.keys.Mode):
		current := m.bank.Mode()
		if m.pending != "" {
			current = m.pending
		}
		mode := nextMode(current)
		m.loading = true
		m.pending = mode
		m.status = "loading " + mode + " mode…"
		if m.onMode != nil {
			m.onMode(mode)
		}
		return m, SwitchMode(m.bank, mode)

	case key.Matches(msg, m.keys.Devices):
		m.view = viewDevices
		m.cursor = m.selectedIndex()

	case key.Matches(msg, m.keys.Rules):
		m.view = viewRules
		m.field = slot.FieldNote
	}
	return m, nil
}

func (m Model) handleDevicesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	devices := m.devices()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.view = viewPads
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(devices)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.cursor < len(devices) {
			m.inputs.Select(devices[m.cursor].ID)
		}
	}
	return m, nil
}

func (m Model) handleRulesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slots := m.bank.Slots()
	if len(slots) == 0 {
		m.view = viewPads
		return m, nil
	}
	s := slots[m.focus%len(slots)]
	fields := slot.Fields

	switch {
	case key.Matches(msg, m.keys.Back):
		m.view = viewPads
	case key.Matches(msg, m.keys.Next):
		m.focus = (m.focus + 1) % len(slots)
	case key.Matches(msg, m.keys.Up):
		m.field = fields[(int(m.field)+len(fields)-1)%len(fields)]
	case key.Matches(msg, m.keys.Down):
		m.field = fields[(int(m.field)+1)%len(fields)]
	case key.Matches(msg, m.keys.Left):
		m.updateRule(s, step(s.Rule().Get(m.field), m.field.Max(), -1))
	case key.Matches(msg, m.keys.Right):
		m.updateRule(s, step(s.Rule().Get(m.field), m.field.Max(), 1))
	case key.Matches(msg, m.keys.Any):
		m.updateRule(s, slot.Any())
	case key.Matches(msg, m.keys.Tap):
		idx := int(msg.String()[0] - '1')
		if idx < len(slots) {
			slots[idx].Tap()
		}
	}
	return m, nil
}

func (m *Model) updateRule(s *slot.Slot, f slot.Filter) {
	if err := s.UpdateRule(m.field, f); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// step moves a filter one value up or down. From "all", up starts at 0
// and down at max; values stop at the ends of the range.
func step(f slot.Filter, maxValue uint8, dir int) slot.Filter {
	v, ok := f.Value()
	if !ok {
		if dir > 0 {
			return slot.Only(0)
		}
		return slot.Only(maxValue)
	}
	switch {
	case dir > 0 && v < maxValue:
		v++
	case dir < 0 && v > 0:
		v--
	}
	return slot.Only(v)
}

func nextMode(current string) string {
	modes := slot.Modes()
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func (m Model) devices() []midi.Port {
	if m.inputs == nil {
		return nil
	}
	return m.inputs.Devices()
}

func (m Model) selectedIndex() int {
	if m.inputs == nil {
		return 0
	}
	id := m.inputs.Selected()
	for i, d := range m.inputs.Devices() {
		if d.ID == id {
			return i
		}
	}
	return 0
}
