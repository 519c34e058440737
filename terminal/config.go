package terminal

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Kind selects a backend implementation
type Kind string

const (
	KindAuto    Kind = "auto"    // console on windows, curses elsewhere
	KindCurses  Kind = "curses"  // terminal-library backend
	KindConsole Kind = "console" // native console backend
)

// ParseKind resolves a case-insensitive backend name, empty meaning auto
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindCurses, KindConsole:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Resolve replaces KindAuto with the platform default
func (k Kind) Resolve() Kind {
	if k != KindAuto && k != "" {
		return k
	}
	if runtime.GOOS == "windows" {
		return KindConsole
	}
	return KindCurses
}

// Config selects and parameterizes a backend
type Config struct {
	Kind Kind
	// PaletteSize bounds distinct colors on the curses backend
	PaletteSize int
	// Screen overrides the curses screen
	Screen tcell.Screen
	// Device overrides the console device
	Device Device
}

// New builds the backend described by cfg without initializing it
func New(cfg Config) (Backend, error) {
	switch cfg.Kind.Resolve() {
	case KindCurses:
		return NewCurses(CursesOptions{Screen: cfg.Screen, PaletteSize: cfg.PaletteSize})
	case KindConsole:
		dev := cfg.Device
		if dev == nil {
			dev = newDefaultDevice()
		}
		return NewConsole(dev), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Kind)
}
