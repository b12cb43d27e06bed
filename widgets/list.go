package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderList renders a vertical menu with the cursor row highlighted and
// a check mark on the active row (-1 for none)
func RenderList(items []string, cursor, active int, fg, accent lipgloss.Color) string {
	normal := lipgloss.NewStyle().Foreground(fg)
	hi := lipgloss.NewStyle().Foreground(accent).Bold(true)

	lines := make([]string, len(items))
	for i, item := range items {
		prefix := "  "
		if i == cursor {
			prefix = "▶ "
		}
		mark := ""
		if i == active {
			mark = " ✓"
		}
		style := normal
		if i == cursor {
			style = hi
		}
		lines[i] = style.Render(prefix + item + mark)
	}
	return strings.Join(lines, "\n")
}
