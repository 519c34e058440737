//go:build windows

package terminal

import (
	"errors"
	"io"
	"syscall"
	"time"
	"unicode/utf8"
	"unsafe"

	"github.com/mattn/go-colorable"
	tty "github.com/mattn/go-tty"
)

var kernel32 = syscall.NewLazyDLL("kernel32.dll")

var (
	procGetNumberOfConsoleInputEvents = kernel32.NewProc("GetNumberOfConsoleInputEvents")
	procPeekConsoleInputW             = kernel32.NewProc("PeekConsoleInputW")
	procReadConsoleInputW             = kernel32.NewProc("ReadConsoleInputW")
)

// maxPeekRecords bounds one PeekConsoleInput call
const maxPeekRecords = 64

const (
	keyEventType = 0x0001

	vkLeft  = 0x25
	vkUp    = 0x26
	vkRight = 0x27
	vkDown  = 0x28
)

// inputRecord is INPUT_RECORD with the KEY_EVENT_RECORD arm of the union
type inputRecord struct {
	eventType   uint16
	_           uint16
	keyDown     int32
	repeatCount uint16
	virtualKey  uint16
	scanCode    uint16
	unicodeChar uint16
	controlKeys uint32
}

// yieldsRune reports whether go-tty's ReadRune returns on this record instead of skipping it
func (r inputRecord) yieldsRune() bool {
	if r.eventType != keyEventType || r.keyDown == 0 {
		return false
	}
	if r.unicodeChar != 0 {
		return true
	}
	switch r.virtualKey {
	case vkLeft, vkUp, vkRight, vkDown:
		return true
	}
	return false
}

// firstRuneRecord returns the index of the first record ReadRune consumes, -1 if none
func firstRuneRecord(records []inputRecord) int {
	for i, r := range records {
		if r.yieldsRune() {
			return i
		}
	}
	return -1
}

// pollInterval is how often Read re-checks the console input queue
const pollInterval = 10 * time.Millisecond

// TTYDevice is a Device over the Win32 console
// go-tty translates key events to VT sequences; go-colorable maps VT output onto console calls
type TTYDevice struct {
	tty    *tty.TTY
	writer io.Writer
}

// NewTTYDevice returns a device bound to the process console
func NewTTYDevice() *TTYDevice {
	return &TTYDevice{}
}

// Open implements Device
func (d *TTYDevice) Open() error {
	t, err := tty.Open()
	if err != nil {
		return errors.Join(ErrNotTerminal, err)
	}
	d.tty = t
	d.writer = colorable.NewColorable(t.Output())
	return nil
}

// Close implements Device
func (d *TTYDevice) Close() error {
	if d.tty == nil {
		return nil
	}
	err := d.tty.Close()
	d.tty = nil
	return err
}

// Write implements Device
func (d *TTYDevice) Write(p []byte) (int, error) {
	if d.writer == nil {
		return 0, io.ErrClosedPipe
	}
	return d.writer.Write(p)
}

// Read implements Device. Polls the console input queue so ReadRune never blocks past stop
func (d *TTYDevice) Read(stopCh <-chan struct{}) ([]byte, error) {
	t := d.tty
	if t == nil {
		return nil, io.ErrClosedPipe
	}

	select {
	case <-stopCh:
		return nil, nil
	default:
	}

	var ev uint32
	r0, _, err := procGetNumberOfConsoleInputEvents.Call(t.Input().Fd(), uintptr(unsafe.Pointer(&ev)))
	if r0 == 0 {
		return nil, err
	}
	if ev == 0 {
		time.Sleep(pollInterval)
		return nil, nil
	}

	// Key-up, focus, mouse and modifier-only records are counted too; ReadRune
	// would block on them, so they are discarded here
	fd := t.Input().Fd()
	records := make([]inputRecord, min(ev, maxPeekRecords))
	var n uint32
	r0, _, err = procPeekConsoleInputW.Call(fd, uintptr(unsafe.Pointer(&records[0])), uintptr(len(records)), uintptr(unsafe.Pointer(&n)))
	if r0 == 0 {
		return nil, err
	}
	idx := firstRuneRecord(records[:n])
	skip := uint32(idx)
	if idx < 0 {
		skip = n
	}
	if skip > 0 {
		var read uint32
		r0, _, err = procReadConsoleInputW.Call(fd, uintptr(unsafe.Pointer(&records[0])), uintptr(skip), uintptr(unsafe.Pointer(&read)))
		if r0 == 0 {
			return nil, err
		}
	}
	if idx < 0 {
		time.Sleep(pollInterval)
		return nil, nil
	}

	r, err := t.ReadRune()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 16)
	buf = utf8.AppendRune(buf, r)
	for t.Buffered() {
		r, err := t.ReadRune()
		if err != nil {
			break
		}
		buf = utf8.AppendRune(buf, r)
	}
	return buf, nil
}

// Size implements Device
func (d *TTYDevice) Size() (int, int) {
	if d.tty == nil {
		return defaultWidth, defaultHeight
	}
	w, h, err := d.tty.Size()
	if err != nil || w == 0 || h == 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

// resetTerminalMode is a no-op; console mode is owned by go-tty and restored on Close
func resetTerminalMode() {}

func newDefaultDevice() Device {
	return NewTTYDevice()
}
