//go:build unix

package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// pollTimeoutMs bounds how long Read waits before re-checking stop
const pollTimeoutMs = 50

// TTYDevice is a Device over a pair of terminal file descriptors
type TTYDevice struct {
	in      *os.File
	out     *os.File
	writer  io.Writer
	inFd    int
	outFd   int
	oldTerm *term.State
	buf     []byte
}

// NewTTYDevice wraps in/out; nil arguments default to os.Stdin/os.Stdout
func NewTTYDevice(in, out *os.File) *TTYDevice {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &TTYDevice{
		in:     in,
		out:    out,
		writer: colorable.NewColorable(out),
		inFd:   int(in.Fd()),
		outFd:  int(out.Fd()),
		buf:    make([]byte, 256),
	}
}

// Open implements Device
func (d *TTYDevice) Open() error {
	if !term.IsTerminal(d.inFd) {
		return fmt.Errorf("%w: fd %d", ErrNotTerminal, d.inFd)
	}
	old, err := term.MakeRaw(d.inFd)
	if err != nil {
		return err
	}
	d.oldTerm = old
	return nil
}

// Close implements Device
func (d *TTYDevice) Close() error {
	if d.oldTerm == nil {
		return nil
	}
	err := term.Restore(d.inFd, d.oldTerm)
	d.oldTerm = nil
	return err
}

// Write implements Device
func (d *TTYDevice) Write(p []byte) (int, error) {
	return d.writer.Write(p)
}

// Read implements Device, polling so the stop channel is honored
func (d *TTYDevice) Read(stopCh <-chan struct{}) ([]byte, error) {
	for {
		select {
		case <-stopCh:
			return nil, nil
		default:
		}

		fds := []unix.PollFd{
			{Fd: int32(d.inFd), Events: unix.POLLIN},
		}
		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		if n == 0 {
			return nil, nil // Timeout, lets the caller flush a lone ESC
		}

		rn, err := unix.Read(d.inFd, d.buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return nil, err
		}
		if rn == 0 {
			return nil, io.EOF
		}

		ret := make([]byte, rn)
		copy(ret, d.buf[:rn])
		return ret, nil
	}
}

// Size implements Device
func (d *TTYDevice) Size() (int, int) {
	ws, err := unix.IoctlGetWinsize(d.outFd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return defaultWidth, defaultHeight
	}
	return int(ws.Col), int(ws.Row)
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return
	}
	defer tty.Close()
	fd := int(tty.Fd())
	if termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios); err == nil {
		termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
		termios.Iflag |= unix.ICRNL
		unix.IoctlSetTermios(fd, ioctlWriteTermios, termios)
	}
}

func newDefaultDevice() Device {
	return NewTTYDevice(nil, nil)
}
