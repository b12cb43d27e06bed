package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// PlayheadHex is the playhead marker colour
const PlayheadHex = "#FF4136"

type Theme struct {
	Palette *Palette
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Builtin()
	}
	return &Theme{Palette: palette}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

func (t *Theme) Playhead() lipgloss.Color {
	return lipgloss.Color(PlayheadHex)
}

// Slot returns the display colour for a pad, or FG if hex does not parse
func (t *Theme) Slot(hex string) lipgloss.Color {
	c, err := ParseHex(hex)
	if err != nil {
		return t.FG()
	}
	return rgbToLipgloss(c)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
