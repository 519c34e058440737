package terminal

// Console key codes as delivered by getch-style console reads
const (
	consolePrefix = 224 // precedes a scan code for extended keys
	consoleEscape = 27
	consoleBack   = 8

	scanUp       = 72
	scanDown     = 80
	scanLeft     = 75
	scanRight    = 77
	scanHome     = 71
	scanEnd      = 79
	scanPageUp   = 73
	scanPageDown = 81
	scanInsert   = 82
	scanDelete   = 83
)

// csiScanCodes maps the part of a CSI sequence after ESC [ to a console scan code
var csiScanCodes = map[string]int{
	"A":  scanUp,
	"B":  scanDown,
	"C":  scanRight,
	"D":  scanLeft,
	"H":  scanHome,
	"F":  scanEnd,
	"1~": scanHome,
	"4~": scanEnd,
	"5~": scanPageUp,
	"6~": scanPageDown,
	"2~": scanInsert,
	"3~": scanDelete,
}

// ss3ScanCodes maps the byte after ESC O (application cursor mode)
var ss3ScanCodes = map[string]int{
	"A": scanUp,
	"B": scanDown,
	"C": scanRight,
	"D": scanLeft,
	"H": scanHome,
	"F": scanEnd,
}

// consoleArrows decodes the scan code following consolePrefix
var consoleArrows = map[int]Key{
	scanDown:  KeyArrowDown,
	scanUp:    KeyArrowUp,
	scanLeft:  KeyArrowLeft,
	scanRight: KeyArrowRight,
}

// decodeConsoleKey normalizes a console code, consuming the scan code after a prefix
func decodeConsoleKey(raw int, next func() int) Key {
	switch raw {
	case consolePrefix:
		if k, ok := consoleArrows[next()]; ok {
			return k
		}
		return KeyNone
	case consoleEscape:
		return KeyEscape
	}
	return Key(raw)
}

// maxCSILen bounds the scan for a CSI terminator
const maxCSILen = 16

// inputTranslator turns a VT input byte stream into console key codes
// Keeps partial escape sequences across reads
type inputTranslator struct {
	buf []byte
}

func newInputTranslator() *inputTranslator {
	return &inputTranslator{buf: make([]byte, 0, 64)}
}

// feed appends data and emits every complete code
func (t *inputTranslator) feed(data []byte, emit func(int)) {
	t.buf = append(t.buf, data...)
	t.compact(t.parse(t.buf, emit))
}

// timeout resolves a pending escape prefix as a standalone ESC
func (t *inputTranslator) timeout(emit func(int)) {
	if len(t.buf) == 0 || t.buf[0] != 0x1b {
		return
	}
	emit(consoleEscape)
	t.compact(1)
	if len(t.buf) > 0 {
		t.compact(t.parse(t.buf, emit))
	}
}

// reset discards any partial sequence
func (t *inputTranslator) reset() {
	t.buf = t.buf[:0]
}

// pending reports whether bytes are held waiting for more input
func (t *inputTranslator) pending() bool {
	return len(t.buf) > 0
}

func (t *inputTranslator) compact(consumed int) {
	if consumed <= 0 {
		return
	}
	if consumed >= len(t.buf) {
		t.buf = t.buf[:0]
		return
	}
	copy(t.buf, t.buf[consumed:])
	t.buf = t.buf[:len(t.buf)-consumed]
}

// parse emits codes for data and returns bytes consumed, stopping at an incomplete sequence
func (t *inputTranslator) parse(data []byte, emit func(int)) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		switch {
		case b == 0x1b:
			// Need at least 2 bytes to determine sequence type
			if i+1 >= n {
				return i
			}
			consumed := t.parseEscape(data[i:], emit)
			if consumed == 0 {
				return i
			}
			i += consumed

		case b == 0x7f:
			emit(consoleBack)
			i++

		case b >= 0x80:
			// No wide characters; 0xE0 would also alias consolePrefix
			i++

		default:
			emit(int(b))
			i++
		}
	}
	return i
}

// parseEscape handles data starting at ESC, returns 0 on incomplete
func (t *inputTranslator) parseEscape(data []byte, emit func(int)) int {
	switch data[1] {
	case '[':
		return t.parseCSI(data, emit)
	case 'O':
		return t.parseSS3(data, emit)
	}
	// ESC followed by anything else is a standalone ESC; the next byte is parsed on its own
	emit(consoleEscape)
	return 1
}

// parseCSI parses ESC [ params final
func (t *inputTranslator) parseCSI(data []byte, emit func(int)) int {
	if len(data) < 3 {
		return 0
	}

	maxScan := min(len(data), maxCSILen)
	end := 2
	for ; end < maxScan; end++ {
		b := data[end]
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			break
		}
		if b < 0x20 || b > 0x7e {
			// Not a sequence after all
			emit(consoleEscape)
			return 1
		}
	}

	if end == maxScan {
		if len(data) < maxCSILen {
			return 0 // Incomplete
		}
		return maxCSILen // Overlong garbage, swallow
	}

	if code, ok := csiScanCodes[string(data[2:end+1])]; ok {
		emit(consolePrefix)
		emit(code)
	}
	// Unknown but valid CSI syntax is consumed silently
	return end + 1
}

// parseSS3 parses ESC O final
func (t *inputTranslator) parseSS3(data []byte, emit func(int)) int {
	if len(data) < 3 {
		return 0
	}
	if code, ok := ss3ScanCodes[string(data[2:3])]; ok {
		emit(consolePrefix)
		emit(code)
	}
	return 3
}
