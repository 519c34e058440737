// @focus: #terminal { ansi }
package terminal

import (
	"bufio"
)

// Pre-allocated ANSI sequence fragments
var (
	csi      = []byte("\x1b[")
	csiClear = []byte("\x1b[2J\x1b[H")
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)
	csiSGR0  = []byte("\x1b[0m")

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// DECAWM: ?7l keeps the cursor at the right edge so a bottom-right write cannot scroll
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")
)

// Console attribute bits
const (
	attrBlue      uint16 = 0x1
	attrGreen     uint16 = 0x2
	attrRed       uint16 = 0x4
	attrIntensity uint16 = 0x8
)

// writeInt writes a non-negative integer without allocation
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	w.Write(buf[i:])
}

// writeCursorPos writes cursor positioning sequence (0-indexed input)
func writeCursorPos(w *bufio.Writer, x, y int) {
	w.Write(csi)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}

// sgrForeground converts console foreground bits to an ANSI SGR color parameter
// Console orders bits BGR, ANSI orders them RGB
func sgrForeground(attr uint16) int {
	idx := 0
	if attr&attrRed != 0 {
		idx |= 1
	}
	if attr&attrGreen != 0 {
		idx |= 2
	}
	if attr&attrBlue != 0 {
		idx |= 4
	}
	if attr&attrIntensity != 0 {
		return 90 + idx
	}
	return 30 + idx
}

// writeAttr emits a full SGR reset plus fg from attr on a black background
func writeAttr(w *bufio.Writer, attr uint16) {
	w.Write(csi)
	w.WriteString("0;")
	writeInt(w, sgrForeground(attr))
	w.WriteString(";40m")
}
