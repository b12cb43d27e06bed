package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"fractunes/widgets"
)

type keyMap struct {
	Tap     key.Binding
	Mode    key.Binding
	Devices key.Binding
	Rules   key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Any     key.Binding
	Next    key.Binding
	Enter   key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Tap: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "tap"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mode"),
		),
		Devices: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "midi input"),
		),
		Rules: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "slot settings"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "decrease"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "increase"),
		),
		Any: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "match all"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next slot"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func helpLine(bindings ...key.Binding) []widgets.KeyBinding {
	out := make([]widgets.KeyBinding, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, widgets.KeyBinding{Key: h.Key, Desc: h.Desc})
	}
	return out
}

// Help lists every binding, grouped by view
func Help() []widgets.KeySection {
	k := defaultKeyMap()
	return []widgets.KeySection{
		{Title: "Pads", Keys: helpLine(k.Tap, k.Mode, k.Devices, k.Rules, k.Quit)},
		{Title: "MIDI input", Keys: helpLine(k.Up, k.Down, k.Enter, k.Back)},
		{Title: "Slot settings", Keys: helpLine(k.Up, k.Down, k.Left, k.Right, k.Any, k.Next, k.Back)},
	}
}
