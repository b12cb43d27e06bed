package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fractunes/debug"
	"fractunes/midi"
	"fractunes/slot"
	"fractunes/widgets"
)

const (
	waveformHeight = 4
	monitorRows    = 12
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.theme.Warning())

	header := headerStyle.Render(fmt.Sprintf("fractunes  %s mode", m.bank.Mode())) +
		"  " + dimStyle.Render(m.midiStatus())
	if m.loading {
		header += "  " + dimStyle.Render("loading…")
	}

	var body, keys string
	switch m.view {
	case viewDevices:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.devicesView(), "    ", m.monitorView())
		keys = widgets.RenderKeyLine(helpLine(m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Back, m.keys.Quit))
	case viewRules:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.rulesView(), "    ", m.monitorView())
		keys = widgets.RenderKeyLine(helpLine(m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Any, m.keys.Next, m.keys.Back))
	default:
		body = m.padsView()
		keys = widgets.RenderKeyLine(helpLine(m.keys.Tap, m.keys.Mode, m.keys.Devices, m.keys.Rules, m.keys.Quit))
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	if status := m.statusLine(); status != "" {
		out.WriteString(warnStyle.Render(status))
		out.WriteString("\n")
	}
	out.WriteString(dimStyle.Render(keys))
	return out.String()
}

func (m Model) midiStatus() string {
	if m.inputs == nil {
		return "MIDI: unavailable"
	}
	switch m.inputs.State() {
	case midi.StateGranted:
		id := m.inputs.Selected()
		if id == "" {
			return "MIDI: no inputs"
		}
		for _, d := range m.inputs.Devices() {
			if d.ID == id {
				return "MIDI: " + d.Label()
			}
		}
		return "MIDI: " + id
	case midi.StateDenied:
		return "MIDI: access denied"
	}
	return "MIDI: " + m.inputs.State().String()
}

// statusLine shows the model's own status, else the newest diagnostic
func (m Model) statusLine() string {
	if m.status != "" {
		return m.status
	}
	diags := debug.Diagnostics()
	if len(diags) == 0 {
		return ""
	}
	d := diags[len(diags)-1]
	return fmt.Sprintf("%s: %v", d.Key, d.Err)
}

func (m Model) card(i int, s *slot.Slot) string {
	fraction, playing := s.Playhead()
	return widgets.RenderSlot(widgets.SlotCard{
		Key:      fmt.Sprint(i + 1),
		Name:     s.Name(),
		Color:    m.theme.Slot(s.Color()),
		Rule:     s.Rule().String(),
		Peaks:    s.Envelope(m.width),
		Fraction: fraction,
		Playing:  playing,
		Loaded:   s.Loaded(),
		Err:      s.Err(),
		Focused:  m.view == viewRules && i == m.focus,
	}, m.width, waveformHeight, widgets.CardColors{
		FG:       m.theme.FG(),
		Muted:    m.theme.Muted(),
		Playhead: m.theme.Playhead(),
		Warning:  m.theme.Warning(),
	})
}

func (m Model) padsView() string {
	slots := m.bank.Slots()
	cards := make([]string, len(slots))
	for i, s := range slots {
		cards[i] = m.card(i, s)
	}
	// two rows keep the cards inside an 80-column terminal
	if len(cards) > 3 {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) devicesView() string {
	title := lipgloss.NewStyle().Foreground(m.theme.Accent()).Render("MIDI input")
	devices := m.devices()
	if len(devices) == 0 {
		return title + "\n" + lipgloss.NewStyle().Foreground(m.theme.Muted()).Render(m.midiStatus())
	}

	labels := make([]string, len(devices))
	active := -1
	selected := ""
	if m.inputs != nil {
		selected = m.inputs.Selected()
	}
	for i, d := range devices {
		labels[i] = d.Label()
		if d.ID == selected {
			active = i
		}
	}
	return title + "\n" + widgets.RenderList(labels, m.cursor, active, m.theme.FG(), m.theme.Accent())
}

func (m Model) rulesView() string {
	slots := m.bank.Slots()
	if len(slots) == 0 {
		return ""
	}
	s := slots[m.focus%len(slots)]
	rule := s.Rule()

	items := make([]string, len(slot.Fields))
	for i, f := range slot.Fields {
		items[i] = fmt.Sprintf("%-9s %s", f.String(), rule.Get(f).String())
	}
	list := widgets.RenderList(items, int(m.field), -1, m.theme.FG(), m.theme.Accent())
	return lipgloss.JoinVertical(lipgloss.Left, m.card(m.focus%len(slots), s), "", list)
}

func (m Model) monitorView() string {
	var events []midi.NoteOnEvent
	if m.inputs != nil {
		events = m.inputs.History()
	}
	title := lipgloss.NewStyle().Foreground(m.theme.Accent()).Render("MIDI monitor")
	return title + "\n" + widgets.RenderMonitor(events, monitorRows, m.theme.Muted(), m.theme.FG())
}
