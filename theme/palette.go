package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type RGB [3]uint8

// Hex formats the colour as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// ParseHex reads #rrggbb or rrggbb
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("bad colour %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("bad colour %q: %w", s, err)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

type Palette struct {
	Name   string
	Colors []RGB
}

// Builtin is the palette used when none is configured: dark violet
// through magenta and red to yellow.
func Builtin() *Palette {
	return &Palette{
		Name: "fractunes",
		Colors: []RGB{
			{0x1a, 0x10, 0x2b},
			{0x2d, 0x1b, 0x4e},
			{0x5b, 0x2a, 0x86},
			{0x8e, 0x44, 0xad},
			{0xc7, 0x6b, 0xc9},
			{0xe0, 0x3e, 0xa8},
			{0xff, 0x6f, 0x91},
			{0xff, 0x41, 0x36},
			{0xff, 0x85, 0x1b},
			{0xff, 0xc1, 0x07},
			{0xff, 0xdc, 0x00},
		},
	}
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseGPL(f, path)
}

// ParseGPL reads a GIMP palette; name is only used in errors
func ParseGPL(r io.Reader, name string) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// Parse RGB values (first 3 fields are R G B)
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", name)
	}

	return p, nil
}

// LoadOrBuiltin loads path, falling back to Builtin when path is empty
func LoadOrBuiltin(path string) (*Palette, error) {
	if path == "" {
		return Builtin(), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return Builtin(), fmt.Errorf("load palette: %w", err)
	}
	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	// Find the two colors to interpolate between
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i]
	c1 := p.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
