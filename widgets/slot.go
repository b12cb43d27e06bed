package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fractunes/audio"
)

// SlotCard is everything the pad card shows
type SlotCard struct {
	Key      string // keyboard shortcut
	Name     string
	Color    lipgloss.Color
	Rule     string
	Peaks    []audio.Peak
	Fraction float64
	Playing  bool
	Loaded   bool
	Err      error
	Focused  bool
}

// CardColors are the shared colours of all cards
type CardColors struct {
	FG       lipgloss.Color
	Muted    lipgloss.Color
	Playhead lipgloss.Color
	Warning  lipgloss.Color
}

// RenderSlot renders a bordered pad card: title, waveform (or load
// status) and the match rule. width is the waveform width in columns.
func RenderSlot(c SlotCard, width, height int, colors CardColors) string {
	title := fmt.Sprintf("%s %s %s", RenderSwatch(c.Color), c.Key, c.Name)
	if c.Playing {
		title += lipgloss.NewStyle().Foreground(colors.Playhead).Render(" ▶")
	}

	var body string
	switch {
	case c.Err != nil:
		body = placeholder("unavailable", width, height, colors.Warning)
	case !c.Loaded:
		body = placeholder("loading…", width, height, colors.Muted)
	default:
		body = RenderWaveform(c.Peaks, height, c.Fraction, c.Playing, c.Color, colors.Playhead)
	}

	rule := lipgloss.NewStyle().Foreground(colors.Muted).Render(c.Rule)

	border := lipgloss.RoundedBorder()
	if c.Focused {
		border = lipgloss.ThickBorder()
	}
	box := lipgloss.NewStyle().
		Border(border).
		BorderForeground(c.Color).
		Padding(0, 1)

	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, body, rule))
}

func placeholder(text string, width, height int, color lipgloss.Color) string {
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(" ", width)
	}
	if height > 0 {
		lines[height/2] = lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Join(lines, "\n"))
}
