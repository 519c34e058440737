// Package config loads demo settings from a TOML file layered over defaults
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/termwrap/terminal"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of the demo program
type Config struct {
	Backend     string   `toml:"backend"`
	PaletteSize int      `toml:"palette_size"`
	FrameMs     int      `toml:"frame_ms"`
	IntroMs     int      `toml:"intro_ms"`
	Fill        string   `toml:"fill"`
	Marker      string   `toml:"marker"`
	Dot         string   `toml:"dot"`
	MarkerColor string   `toml:"marker_color"`
	Sound       bool     `toml:"sound"`
	Debug       bool     `toml:"debug"`
	QuitKeys    []string `toml:"quit_keys"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Backend:     string(terminal.KindAuto),
		PaletteSize: terminal.DefaultPaletteSize,
		FrameMs:     16,
		IntroMs:     1000,
		Fill:        ".",
		Marker:      "A",
		Dot:         ".",
		MarkerColor: "yellow",
		QuitKeys:    []string{"q", "esc"},
	}
}

// Load decodes path over the defaults; unknown keys are rejected
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and names
func (c Config) Validate() error {
	if _, err := terminal.ParseKind(c.Backend); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.PaletteSize < 0 {
		return fmt.Errorf("%w: palette_size %d", ErrInvalidConfig, c.PaletteSize)
	}
	if c.FrameMs < 0 || c.IntroMs < 0 {
		return fmt.Errorf("%w: negative delay", ErrInvalidConfig)
	}
	if utf8.RuneCountInString(c.Fill) != 1 {
		return fmt.Errorf("%w: fill must be one character, got %q", ErrInvalidConfig, c.Fill)
	}
	if utf8.RuneCountInString(c.Marker) != 1 {
		return fmt.Errorf("%w: marker must be one character, got %q", ErrInvalidConfig, c.Marker)
	}
	if utf8.RuneCountInString(c.Dot) != 1 {
		return fmt.Errorf("%w: dot must be one character, got %q", ErrInvalidConfig, c.Dot)
	}
	if _, err := terminal.ParseColor(c.MarkerColor); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.QuitKeySet(); err != nil {
		return err
	}
	return nil
}

// Terminal converts the backend settings
func (c Config) Terminal() (terminal.Config, error) {
	kind, err := terminal.ParseKind(c.Backend)
	if err != nil {
		return terminal.Config{}, err
	}
	return terminal.Config{Kind: kind, PaletteSize: c.PaletteSize}, nil
}

// Color returns the parsed marker color
func (c Config) Color() terminal.Color {
	col, err := terminal.ParseColor(c.MarkerColor)
	if err != nil {
		return terminal.ColorWhite
	}
	return col
}

// QuitKeySet resolves quit key names
func (c Config) QuitKeySet() (map[terminal.Key]bool, error) {
	set := make(map[terminal.Key]bool, len(c.QuitKeys))
	for _, name := range c.QuitKeys {
		k, err := terminal.ParseKey(name)
		if err != nil {
			return nil, fmt.Errorf("%w: quit key: %w", ErrInvalidConfig, err)
		}
		set[k] = true
	}
	return set, nil
}
