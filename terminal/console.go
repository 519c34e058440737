// @lixen: #focus{sys[term,io,output]}
package terminal

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"
)

// maxConsoleCoord is the largest coordinate a console COORD (int16) can hold
const maxConsoleCoord = math.MaxInt16

// maxQueuedCodes bounds unread key codes; newer input is dropped beyond it
const maxQueuedCodes = 256

// defaultConsoleAttr is the console's stock light-gray on black
const defaultConsoleAttr uint16 = attrRed | attrGreen | attrBlue

// Console implements Backend with native console semantics over a VT Device:
// int16 coordinates, console color attributes, getch-style key codes
type Console struct {
	dev    Device
	writer *bufio.Writer
	attr   uint16

	cursorX int16
	cursorY int16

	input   *inputTranslator
	batch   []int
	queue   []int // pending key codes, guarded by mu
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
	readErr error
}

// NewConsole creates a console backend over dev. The device is not opened until Init
func NewConsole(dev Device) *Console {
	return &Console{
		dev:    dev,
		writer: bufio.NewWriterSize(deviceWriter{dev}, 16384),
		attr:   defaultConsoleAttr,
		input:  newInputTranslator(),
		queue:  make([]int, 0, maxQueuedCodes),
	}
}

// deviceWriter adapts Device to io.Writer for bufio
type deviceWriter struct{ dev Device }

func (w deviceWriter) Write(p []byte) (int, error) { return w.dev.Write(p) }

// Name implements Backend
func (c *Console) Name() string {
	return "console"
}

// Init implements Backend: raw input, alternate screen, hidden cursor, cleared screen
func (c *Console) Init() error {
	if err := c.dev.Open(); err != nil {
		return err
	}

	w := c.writer
	w.Write(csiAltScreenEnter)
	w.Write(csiCursorHide)
	w.Write(csiAutoWrapOff)
	writeAttr(w, c.attr)
	w.Write(csiClear)
	if err := w.Flush(); err != nil {
		c.dev.Close()
		return err
	}
	c.cursorX, c.cursorY = 0, 0
	c.resetInput()

	c.start()
	return nil
}

// Fini implements Backend, restoring the primary screen and cooked mode
func (c *Console) Fini() error {
	c.stop()

	w := c.writer
	w.Write(csiSGR0)
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	// Re-enable auto-wrap after leaving the alt screen so the main buffer keeps it
	w.Write(csiAutoWrapOn)
	flushErr := w.Flush()

	if err := c.dev.Close(); err != nil {
		return err
	}
	return flushErr
}

// Print implements Backend
func (c *Console) Print(s string) error {
	if _, err := c.writer.WriteString(s); err != nil {
		return err
	}
	x := int(c.cursorX) + utf8.RuneCountInString(s)
	c.cursorX = int16(min(x, maxConsoleCoord))
	return nil
}

// MoveCursor implements Backend. Fails when x or y overflows a console coordinate
func (c *Console) MoveCursor(x, y int) bool {
	if x > maxConsoleCoord || y > maxConsoleCoord {
		return false
	}
	writeCursorPos(c.writer, x, y)
	c.cursorX, c.cursorY = int16(x), int16(y)
	return true
}

// Cursor implements Backend
func (c *Console) Cursor() (int, int) {
	return int(c.cursorX), int(c.cursorY)
}

// SetColor implements Backend. Console attributes need no palette registration
func (c *Console) SetColor(col Color) error {
	c.attr = col.ConsoleAttr()
	writeAttr(c.writer, c.attr)
	return nil
}

// Refresh implements Backend
func (c *Console) Refresh() error {
	return c.writer.Flush()
}

// Clear implements Backend
func (c *Console) Clear() error {
	if _, err := c.writer.Write(csiClear); err != nil {
		return err
	}
	c.cursorX, c.cursorY = 0, 0
	return nil
}

// Size implements Backend
func (c *Console) Size() (int, int) {
	return c.dev.Size()
}

// ReadRawKey implements Backend
func (c *Console) ReadRawKey() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return RawNone
	}
	code := c.queue[0]
	copy(c.queue, c.queue[1:])
	c.queue = c.queue[:len(c.queue)-1]
	return code
}

// DecodeKey implements Backend
func (c *Console) DecodeKey(raw int, next func() int) Key {
	return decodeConsoleKey(raw, next)
}

// Err returns the error that stopped the input reader, if any
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// resetInput drops codes and partial sequences left from a previous session
// Called only while the reader is stopped
func (c *Console) resetInput() {
	c.mu.Lock()
	c.queue = c.queue[:0]
	c.mu.Unlock()
	c.batch = c.batch[:0]
	c.input.reset()
}

// start begins reading input in a goroutine
func (c *Console) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.readErr = nil
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	go c.readLoop(c.stopCh, c.doneCh)
}

// stop signals the reader to stop
func (c *Console) stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stopCh, doneCh := c.stopCh, c.doneCh
	c.mu.Unlock()

	close(stopCh)
	// Don't block forever if the device read is stuck
	select {
	case <-doneCh:
	case <-time.After(100 * time.Millisecond):
	}
}

// readLoop translates device input into console codes until stopped
func (c *Console) readLoop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	defer func() {
		if r := recover(); r != nil {
			EmergencyReset(deviceWriter{c.dev})
			// Use \r\n for raw mode compatibility
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCONSOLE INPUT CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		data, err := c.dev.Read(stopCh)
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}

		if len(data) == 0 {
			if c.input.pending() {
				c.input.timeout(c.collect)
				c.enqueue()
			}
			select {
			case <-stopCh:
				return
			default:
				continue
			}
		}

		c.input.feed(data, c.collect)
		c.enqueue()
	}
}

// collect gathers codes from one translation pass
func (c *Console) collect(code int) {
	c.batch = append(c.batch, code)
}

// enqueue publishes the collected batch at once so a prefix never arrives without its scan code
// A batch that does not fit is dropped whole
func (c *Console) enqueue() {
	if len(c.batch) == 0 {
		return
	}
	c.mu.Lock()
	if len(c.queue)+len(c.batch) <= maxQueuedCodes {
		c.queue = append(c.queue, c.batch...)
	}
	c.mu.Unlock()
	c.batch = c.batch[:0]
}
