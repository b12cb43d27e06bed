package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fractunes/midi"
)

// RenderMonitor lists recent note-on events newest first. Channels are
// shown 1-based. rows limits the listing; 0 shows everything.
func RenderMonitor(events []midi.NoteOnEvent, rows int, header, fg lipgloss.Color) string {
	var out strings.Builder
	out.WriteString(lipgloss.NewStyle().Foreground(header).Render(fmt.Sprintf("%-12s %4s %4s %3s  %s", "TIME", "NOTE", "VEL", "CH", "NAME")))

	if len(events) == 0 {
		out.WriteString("\n")
		out.WriteString(lipgloss.NewStyle().Foreground(fg).Render("(no events yet)"))
		return out.String()
	}

	if rows > 0 && len(events) > rows {
		events = events[:rows]
	}
	style := lipgloss.NewStyle().Foreground(fg)
	for _, ev := range events {
		out.WriteString("\n")
		out.WriteString(style.Render(fmt.Sprintf("%-12s %4d %4d %3d  %s",
			ev.Timestamp.Format("15:04:05.000"), ev.Note, ev.Velocity, int(ev.Channel)+1, midi.Describe(ev.Note))))
	}
	return out.String()
}
