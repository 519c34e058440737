package terminal

import (
	"fmt"
	"strings"
)

// Color is a foreground color; background is always black
type Color uint8

const (
	ColorBlack Color = iota
	ColorBlue
	ColorRed
	ColorGreen
	ColorYellow
	ColorMagenta
	ColorWhite

	colorCount
)

// colorSpec holds per-backend numeric codes for a Color
type colorSpec struct {
	name    string
	curses  int16  // curses COLOR_* value
	console uint16 // console character attribute
}

var colorSpecs = [colorCount]colorSpec{
	ColorBlack:   {"black", 0, 0x0},
	ColorBlue:    {"blue", 4, 0x1},
	ColorRed:     {"red", 1, 0x4},
	ColorGreen:   {"green", 2, 0x2},
	ColorYellow:  {"yellow", 3, 0xE},
	ColorMagenta: {"magenta", 5, 0x5},
	ColorWhite:   {"white", 7, 0xF},
}

// Colors lists every valid Color in declaration order
func Colors() []Color {
	out := make([]Color, colorCount)
	for i := range out {
		out[i] = Color(i)
	}
	return out
}

// Valid reports whether c is one of the declared colors
func (c Color) Valid() bool {
	return c < colorCount
}

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("color(%d)", uint8(c))
	}
	return colorSpecs[c].name
}

// CursesCode returns the curses COLOR_* value
func (c Color) CursesCode() int16 {
	if !c.Valid() {
		return -1
	}
	return colorSpecs[c].curses
}

// ConsoleAttr returns the console foreground attribute bits (blue=1, green=2, red=4, intensity=8)
func (c Color) ConsoleAttr() uint16 {
	if !c.Valid() {
		return 0
	}
	return colorSpecs[c].console
}

// ParseColor resolves a case-insensitive color name
func ParseColor(name string) (Color, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range colorSpecs {
		if s.name == n {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidColor, name)
}
