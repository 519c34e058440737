package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// CursesOptions configures the terminal-library backend
type CursesOptions struct {
	// Screen overrides the tcell screen, e.g. a tcell.SimulationScreen in tests
	Screen tcell.Screen
	// PaletteSize bounds distinct colors per session, DefaultPaletteSize if zero
	PaletteSize int
}

// Curses implements Backend on top of a tcell screen
type Curses struct {
	screen  tcell.Screen
	palette *palette
	styles  []tcell.Style // by palette slot
	style   tcell.Style

	cursorX int
	cursorY int
}

// NewCurses creates a terminal-library backend. The screen is not touched until Init
func NewCurses(opts CursesOptions) (*Curses, error) {
	screen := opts.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("tcell screen: %w", err)
		}
	}
	return &Curses{
		screen:  screen,
		palette: newPalette(opts.PaletteSize),
		style:   tcell.StyleDefault,
	}, nil
}

// Name implements Backend
func (c *Curses) Name() string {
	return "curses"
}

// Init implements Backend. tcell reads keypad sequences and does not echo by default
func (c *Curses) Init() error {
	if err := c.screen.Init(); err != nil {
		return err
	}
	c.screen.HideCursor()
	c.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	c.screen.Clear()
	c.cursorX, c.cursorY = 0, 0
	return nil
}

// Fini implements Backend
func (c *Curses) Fini() error {
	c.screen.Fini()
	return nil
}

// Print implements Backend. Cells past the right edge are clipped
func (c *Curses) Print(s string) error {
	for _, r := range s {
		c.screen.SetContent(c.cursorX, c.cursorY, r, nil, c.style)
		c.cursorX++
	}
	return nil
}

// MoveCursor implements Backend. No upper bound is checked
func (c *Curses) MoveCursor(x, y int) bool {
	c.cursorX, c.cursorY = x, y
	return true
}

// Cursor implements Backend
func (c *Curses) Cursor() (int, int) {
	return c.cursorX, c.cursorY
}

// SetColor implements Backend, registering a palette slot on first use of c
func (c *Curses) SetColor(col Color) error {
	slot, fresh, err := c.palette.acquire(col)
	if err != nil {
		return err
	}
	if fresh {
		c.styles = append(c.styles, tcell.StyleDefault.
			Foreground(tcell.PaletteColor(int(col.CursesCode()))).
			Background(tcell.ColorBlack))
	}
	c.style = c.styles[slot]
	return nil
}

// Refresh implements Backend
func (c *Curses) Refresh() error {
	c.screen.Show()
	return nil
}

// Clear implements Backend
func (c *Curses) Clear() error {
	c.screen.Clear()
	c.cursorX, c.cursorY = 0, 0
	return nil
}

// Size implements Backend
func (c *Curses) Size() (int, int) {
	return c.screen.Size()
}

// ReadRawKey implements Backend
// Ordinary keys return their rune, control keys their ASCII code and named keys
// cursesSpecialBase plus their tcell.Key; non-key events are discarded
func (c *Curses) ReadRawKey() int {
	for c.screen.HasPendingEvent() {
		ev, ok := c.screen.PollEvent().(*tcell.EventKey)
		if !ok {
			continue
		}
		return rawCursesKey(ev)
	}
	return RawNone
}

// DecodeKey implements Backend. tcell delivers special keys as single codes
func (c *Curses) DecodeKey(raw int, _ func() int) Key {
	return decodeCursesKey(raw)
}

// cursesSpecialBase lifts named tcell keys above every rune and every logical Key
const cursesSpecialBase = 1 << 22

func rawCursesKey(ev *tcell.EventKey) int {
	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		return int(ev.Rune())
	case k < tcell.KeyRune:
		// Ctrl keys, Enter, Tab, Backspace and Escape carry their ASCII value
		return int(k)
	default:
		return cursesSpecialBase + int(k)
	}
}

// cursesKeys maps raw named keys to logical keys
var cursesKeys = map[int]Key{
	cursesSpecialBase + int(tcell.KeyUp):    KeyArrowUp,
	cursesSpecialBase + int(tcell.KeyDown):  KeyArrowDown,
	cursesSpecialBase + int(tcell.KeyLeft):  KeyArrowLeft,
	cursesSpecialBase + int(tcell.KeyRight): KeyArrowRight,
}

// decodeCursesKey passes runes and control codes through; unmapped named keys yield KeyNone
func decodeCursesKey(raw int) Key {
	if k, ok := cursesKeys[raw]; ok {
		return k
	}
	if raw >= cursesSpecialBase {
		return KeyNone
	}
	return Key(raw)
}
