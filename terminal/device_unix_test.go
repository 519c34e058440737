//go:build unix

package terminal

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openPty(t *testing.T) (ptmx, tty *os.File) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})
	require.NoError(t, pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}))
	return ptmx, tty
}

// drain collects everything written to the slave side
type drain struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (d *drain) run(r io.Reader) {
	b := make([]byte, 1024)
	for {
		n, err := r.Read(b)
		d.mu.Lock()
		d.buf.Write(b[:n])
		d.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (d *drain) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.String()
}

func TestTTYDeviceRawReadAndSize(t *testing.T) {
	ptmx, tty := openPty(t)

	dev := NewTTYDevice(tty, tty)
	require.NoError(t, dev.Open())
	defer dev.Close()

	w, h := dev.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)

	_, err := ptmx.Write([]byte("\x1b[B"))
	require.NoError(t, err)

	stop := make(chan struct{})
	var got []byte
	require.Eventually(t, func() bool {
		data, err := dev.Read(stop)
		if err != nil {
			return false
		}
		got = append(got, data...)
		return bytes.Equal(got, []byte("\x1b[B"))
	}, 2*time.Second, time.Millisecond)
}

func TestTTYDeviceReadStops(t *testing.T) {
	_, tty := openPty(t)
	dev := NewTTYDevice(tty, tty)
	require.NoError(t, dev.Open())
	defer dev.Close()

	stop := make(chan struct{})
	close(stop)
	data, err := dev.Read(stop)
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestTTYDeviceRejectsNonTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	dev := NewTTYDevice(r, w)
	assert.ErrorIs(t, dev.Open(), ErrNotTerminal)
	assert.NoError(t, dev.Close())
}

func TestConsoleSessionOverPty(t *testing.T) {
	ptmx, tty := openPty(t)
	out := &drain{}
	go out.run(ptmx)

	s, err := Open(NewConsole(NewTTYDevice(tty, tty)))
	require.NoError(t, err)
	defer s.Close()

	w, h := s.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)

	require.NoError(t, s.SetColor(ColorYellow))
	require.NoError(t, s.Print(2, 3, "A"))
	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("\x1b[0;93;40m\x1b[4;3HA"))
	}, 2*time.Second, 5*time.Millisecond)

	_, err = ptmx.Write([]byte("\x1b[A"))
	require.NoError(t, err)
	assert.Equal(t, KeyArrowUp, waitKey(t, s))

	require.NoError(t, s.Close())
	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), csiAltScreenExit)
	}, 2*time.Second, 5*time.Millisecond)
}
