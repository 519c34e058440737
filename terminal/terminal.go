package terminal

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"
)

var (
	ErrSessionActive    = errors.New("terminal session already active")
	ErrSessionClosed    = errors.New("terminal session closed")
	ErrInvalidColor     = errors.New("invalid color")
	ErrPaletteExhausted = errors.New("color palette exhausted")
	ErrUnknownBackend   = errors.New("unknown backend")
	ErrNotTerminal      = errors.New("not a terminal")
)

// active guards the one-session-per-process invariant
var active atomic.Bool

// Session is the process-wide handle to a managed terminal
// Not safe for concurrent use
type Session struct {
	backend Backend
	logger  *log.Logger
	closed  bool
}

// Option configures a Session
type Option func(*Session)

// WithLogger routes session diagnostics to l
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open enters managed mode on b: echo off, cursor hidden, non-blocking key reads
// Fails with ErrSessionActive while another Session is open
func Open(b Backend, opts ...Option) (*Session, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrUnknownBackend)
	}
	if !active.CompareAndSwap(false, true) {
		return nil, ErrSessionActive
	}

	s := &Session{
		backend: b,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := b.Init(); err != nil {
		active.Store(false)
		return nil, fmt.Errorf("terminal init (%s): %w", b.Name(), err)
	}

	w, h := b.Size()
	s.logger.Printf("terminal: %s session open, %dx%d", b.Name(), w, h)
	return s, nil
}

// Backend returns the name of the backend driving the session
func (s *Session) Backend() string {
	return s.backend.Name()
}

// Print moves to (x, y) and writes str, then refreshes
// Coordinates the backend cannot address are dropped without error
func (s *Session) Print(x, y int, str string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.MoveCursor(x, y) {
		s.logger.Printf("terminal: print at (%d,%d) dropped", x, y)
		return nil
	}
	if err := s.backend.Print(str); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return s.Refresh()
}

// PrintRune is Print for a single character
func (s *Session) PrintRune(x, y int, r rune) error {
	return s.Print(x, y, string(r))
}

// MoveCursor repositions the output cursor without writing
// False for negative coordinates or ones outside the backend's representable range
func (s *Session) MoveCursor(x, y int) bool {
	if s.closed || x < 0 || y < 0 {
		return false
	}
	return s.backend.MoveCursor(x, y)
}

// Cursor returns the current output position
func (s *Session) Cursor() (x, y int) {
	return s.backend.Cursor()
}

// SetColor sets the foreground for all subsequent output, background black
func (s *Session) SetColor(c Color) error {
	if s.closed {
		return ErrSessionClosed
	}
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidColor, uint8(c))
	}
	if err := s.backend.SetColor(c); err != nil {
		return fmt.Errorf("set color %s: %w", c, err)
	}
	return nil
}

// Refresh flushes pending output to the display
func (s *Session) Refresh() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.backend.Refresh(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Clear blanks every cell, homes the cursor and refreshes
func (s *Session) Clear() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.backend.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return s.Refresh()
}

// Close restores the terminal. Safe to call multiple times
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer active.Store(false)

	if err := s.backend.Fini(); err != nil {
		return fmt.Errorf("terminal fini (%s): %w", s.backend.Name(), err)
	}
	s.logger.Printf("terminal: %s session closed", s.backend.Name())
	return nil
}

// Sleep blocks the calling goroutine for ms milliseconds
func (s *Session) Sleep(ms int) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Size returns current terminal dimensions, re-queried on every call
func (s *Session) Size() (width, height int) {
	return s.backend.Size()
}

// ReadRawKey returns one raw platform code, RawNone if nothing is pending
func (s *Session) ReadRawKey() int {
	if s.closed {
		return RawNone
	}
	return s.backend.ReadRawKey()
}

// ReadKey returns the next key normalized across backends, KeyNone if nothing is pending
func (s *Session) ReadKey() Key {
	if s.closed {
		return KeyNone
	}
	raw := s.backend.ReadRawKey()
	if raw == RawNone {
		return KeyNone
	}
	return s.backend.DecodeKey(raw, s.backend.ReadRawKey)
}
