package terminal

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDevice is an in-memory Device: input is injected, output is captured
type memDevice struct {
	mu      sync.Mutex
	out     bytes.Buffer
	in      chan []byte
	width   int
	height  int
	opened  bool
	closed  bool
	openErr error
}

func newMemDevice(w, h int) *memDevice {
	return &memDevice{in: make(chan []byte, 16), width: w, height: h}
}

func (d *memDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return d.openErr
	}
	d.opened = true
	return nil
}

func (d *memDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *memDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.Write(p)
}

func (d *memDevice) Read(stopCh <-chan struct{}) ([]byte, error) {
	select {
	case <-stopCh:
		return nil, nil
	case data := <-d.in:
		return data, nil
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	}
}

func (d *memDevice) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *memDevice) output() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.String()
}

// vtCell is one cell of the decoded screen
type vtCell struct {
	r  rune
	fg int
	bg int
}

// vtScreen replays the subset of VT output the console backend emits
type vtScreen struct {
	w, h  int
	cells []vtCell
	x, y  int
	fg    int
	bg    int
}

func replay(out string, w, h int) *vtScreen {
	s := &vtScreen{w: w, h: h, cells: make([]vtCell, w*h)}
	s.erase()
	for i := 0; i < len(out); {
		if out[i] != 0x1b {
			if s.x < s.w && s.y < s.h {
				s.cells[s.y*s.w+s.x] = vtCell{rune(out[i]), s.fg, s.bg}
			}
			s.x++
			i++
			continue
		}
		if i+1 < len(out) && out[i+1] == 'c' {
			i += 2
			continue
		}
		// ESC [ params final
		j := i + 2
		for j < len(out) && !(out[j] >= 0x40 && out[j] <= 0x7e) {
			j++
		}
		s.apply(out[i+2:j], out[j])
		i = j + 1
	}
	return s
}

func (s *vtScreen) erase() {
	for i := range s.cells {
		s.cells[i] = vtCell{' ', s.fg, s.bg}
	}
}

func (s *vtScreen) apply(params string, final byte) {
	if strings.HasPrefix(params, "?") {
		return // mode switches
	}
	var args []int
	for _, p := range strings.Split(params, ";") {
		n, _ := strconv.Atoi(p)
		args = append(args, n)
	}
	switch final {
	case 'H':
		s.x, s.y = 0, 0
		if len(args) == 2 {
			s.y, s.x = args[0]-1, args[1]-1
		}
	case 'J':
		s.erase()
	case 'm':
		for _, a := range args {
			switch {
			case a == 0:
				s.fg, s.bg = 0, 0
			case (a >= 30 && a <= 37) || (a >= 90 && a <= 97):
				s.fg = a
			case a >= 40 && a <= 47:
				s.bg = a
			}
		}
	}
}

func (s *vtScreen) at(x, y int) vtCell {
	return s.cells[y*s.w+x]
}

func (s *vtScreen) row(y int) string {
	var b strings.Builder
	for x := 0; x < s.w; x++ {
		b.WriteRune(s.at(x, y).r)
	}
	return strings.TrimRight(b.String(), " ")
}

func openConsole(t *testing.T) (*Session, *Console, *memDevice) {
	t.Helper()
	dev := newMemDevice(40, 12)
	c := NewConsole(dev)
	s, err := Open(c)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, c, dev
}

func TestConsoleInitAndFini(t *testing.T) {
	s, _, dev := openConsole(t)
	out := dev.output()
	assert.True(t, dev.opened)
	assert.Contains(t, out, string(csiAltScreenEnter))
	assert.Contains(t, out, string(csiCursorHide))

	require.NoError(t, s.Close())
	out = dev.output()
	assert.True(t, dev.closed)
	assert.True(t, strings.HasSuffix(out, string(csiSGR0)+string(csiCursorShow)+string(csiAltScreenExit)+string(csiAutoWrapOn)))
}

func TestConsoleOpenFailure(t *testing.T) {
	dev := newMemDevice(10, 10)
	dev.openErr = ErrNotTerminal
	_, err := Open(NewConsole(dev))
	require.ErrorIs(t, err, ErrNotTerminal)
}

func TestConsoleWriteReadBack(t *testing.T) {
	s, _, dev := openConsole(t)

	require.NoError(t, s.Print(0, 0, "A"))
	scr := replay(dev.output(), 40, 12)
	assert.Equal(t, 'A', scr.at(0, 0).r)

	require.NoError(t, s.Print(3, 2, "abc"))
	scr = replay(dev.output(), 40, 12)
	assert.Equal(t, "   abc", scr.row(2))
	x, y := s.Cursor()
	assert.Equal(t, 6, x)
	assert.Equal(t, 2, y)
}

func TestConsoleYellowOnBlack(t *testing.T) {
	s, _, dev := openConsole(t)

	require.NoError(t, s.SetColor(ColorYellow))
	require.NoError(t, s.Print(2, 3, "A"))

	scr := replay(dev.output(), 40, 12)
	want := vtCell{r: 'A', fg: 93, bg: 40}
	if diff := cmp.Diff(want, scr.at(2, 3), cmp.AllowUnexported(vtCell{})); diff != "" {
		t.Errorf("cell (2,3) mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, s.Close())
}

func TestConsoleSetColorIdempotent(t *testing.T) {
	s, _, dev := openConsole(t)

	require.NoError(t, s.SetColor(ColorMagenta))
	require.NoError(t, s.Print(0, 0, "a"))
	require.NoError(t, s.SetColor(ColorMagenta))
	require.NoError(t, s.SetColor(ColorMagenta))
	require.NoError(t, s.Print(1, 0, "b"))

	scr := replay(dev.output(), 40, 12)
	assert.Equal(t, scr.at(0, 0).fg, scr.at(1, 0).fg)
	assert.Equal(t, scr.at(0, 0).bg, scr.at(1, 0).bg)
	assert.Equal(t, 35, scr.at(1, 0).fg)
}

func TestConsoleMoveCursorOverflow(t *testing.T) {
	s, _, _ := openConsole(t)
	require.True(t, s.MoveCursor(1, 1))

	assert.False(t, s.MoveCursor(100000, 0))
	assert.False(t, s.MoveCursor(0, maxConsoleCoord+1))
	assert.True(t, s.MoveCursor(maxConsoleCoord, 0))

	assert.False(t, s.MoveCursor(-1, 0))
	x, y := s.Cursor()
	assert.Equal(t, maxConsoleCoord, x)
	assert.Equal(t, 0, y)
}

func TestConsolePrintOverflowDropped(t *testing.T) {
	s, _, dev := openConsole(t)
	before := dev.output()
	require.NoError(t, s.Print(100000, 0, "x"))
	assert.Equal(t, before, dev.output())
}

func TestConsoleMoveCursorReadBack(t *testing.T) {
	s, _, dev := openConsole(t)

	require.True(t, s.MoveCursor(5, 7))
	require.NoError(t, s.Refresh())
	scr := replay(dev.output(), 40, 12)
	assert.Equal(t, 5, scr.x)
	assert.Equal(t, 7, scr.y)
}

func TestConsoleClearKeepsGeometry(t *testing.T) {
	s, _, dev := openConsole(t)
	require.NoError(t, s.Print(1, 1, "junk"))
	w, h := s.Size()

	require.NoError(t, s.Clear())

	w2, h2 := s.Size()
	assert.Equal(t, w, w2)
	assert.Equal(t, h, h2)
	scr := replay(dev.output(), 40, 12)
	assert.Empty(t, scr.row(1))
	x, y := s.Cursor()
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestConsoleReadKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Key
	}{
		{"down", "\x1b[B", KeyArrowDown},
		{"up", "\x1b[A", KeyArrowUp},
		{"left ss3", "\x1bOD", KeyArrowLeft},
		{"right", "\x1b[C", KeyArrowRight},
		{"bare escape", "\x1b", KeyEscape},
		{"letter", "q", Key('q')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, dev := openConsole(t)
			dev.in <- []byte(tt.input)
			assert.Equal(t, tt.want, waitKey(t, s))
			require.NoError(t, s.Close())
		})
	}
}

func TestConsoleUnmappedFollowByte(t *testing.T) {
	s, _, dev := openConsole(t)

	// Home arrives as prefix + scan code 71, which is not an arrow
	dev.in <- []byte("\x1b[H")
	var raw []int
	require.Eventually(t, func() bool {
		if r := s.ReadRawKey(); r != RawNone {
			raw = append(raw, r)
		}
		return len(raw) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{consolePrefix, scanHome}, raw)

	dev.in <- []byte("\x1b[H")
	require.Eventually(t, func() bool {
		// Wait until both codes are queued, then decode
		return len(snapshotQueue(s)) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, KeyNone, s.ReadKey())
	assert.Equal(t, RawNone, s.ReadRawKey())
}

func snapshotQueue(s *Session) []int {
	c := s.backend.(*Console)
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.queue...)
}

func TestConsoleSplitSequence(t *testing.T) {
	s, _, dev := openConsole(t)
	dev.in <- []byte("\x1b[")
	dev.in <- []byte("B")
	assert.Equal(t, KeyArrowDown, waitKey(t, s))
}

func TestConsoleNoInput(t *testing.T) {
	s, _, _ := openConsole(t)
	assert.Equal(t, RawNone, s.ReadRawKey())
	assert.Equal(t, KeyNone, s.ReadKey())
}

func TestConsoleReopenDropsStaleInput(t *testing.T) {
	dev := newMemDevice(40, 12)
	c := NewConsole(dev)

	s, err := Open(c)
	require.NoError(t, err)
	dev.in <- []byte("x")
	require.Eventually(t, func() bool {
		return len(snapshotQueue(s)) == 1
	}, time.Second, 5*time.Millisecond)
	// Partial CSI left in the translator
	dev.in <- []byte("\x1b[")
	require.Eventually(t, func() bool {
		return len(dev.in) == 0
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Close())

	s, err = Open(c)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, RawNone, s.ReadRawKey())

	dev.in <- []byte("B")
	assert.Equal(t, Key('B'), waitKey(t, s))
}
