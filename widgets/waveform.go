package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fractunes/audio"
)

var (
	bars     = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	baseline = '·'
	playhead = '│'
)

// PlayheadColumn maps elapsed fraction to a column: fraction*width,
// clamped to the last column.
func PlayheadColumn(fraction float64, width int) int {
	if width <= 0 {
		return -1
	}
	x := int(math.Floor(fraction * float64(width)))
	if x < 0 {
		return 0
	}
	if x >= width {
		return width - 1
	}
	return x
}

// RenderWaveform draws the envelope as a column chart height rows tall,
// one column per peak. Column height follows the larger of |min| and
// |max|. While playing, the playhead column is drawn as a vertical line
// in marker.
func RenderWaveform(peaks []audio.Peak, height int, fraction float64, playing bool, fg, marker lipgloss.Color) string {
	if height <= 0 || len(peaks) == 0 {
		return ""
	}

	head := -1
	if playing {
		head = PlayheadColumn(fraction, len(peaks))
	}

	levels := make([]float64, len(peaks))
	for i, p := range peaks {
		amp := math.Max(math.Abs(float64(p.Min)), math.Abs(float64(p.Max)))
		levels[i] = math.Min(amp, 1) * float64(height)
	}

	fgStyle := lipgloss.NewStyle().Foreground(fg)
	markStyle := lipgloss.NewStyle().Foreground(marker)

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		fromBottom := height - 1 - row

		var line strings.Builder
		var run strings.Builder
		for col, level := range levels {
			if col == head {
				line.WriteString(fgStyle.Render(run.String()))
				run.Reset()
				line.WriteString(markStyle.Render(string(playhead)))
				continue
			}
			run.WriteRune(cell(level, fromBottom))
		}
		line.WriteString(fgStyle.Render(run.String()))
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}

// cell picks the glyph for one row of a column whose level is measured in rows
func cell(level float64, fromBottom int) rune {
	fill := level - float64(fromBottom)
	switch {
	case fill >= 1:
		return bars[len(bars)-1]
	case fill > 0:
		i := int(fill * float64(len(bars)))
		if i >= len(bars) {
			i = len(bars) - 1
		}
		return bars[i]
	case fromBottom == 0:
		return baseline
	}
	return ' '
}
