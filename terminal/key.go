// @focus: #sys { io } #input { keys }
package terminal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Key is a logical key code: a character code for ordinary keys or one of the constants below
type Key int

// RawNone is returned by ReadRawKey when no input is pending
const RawNone = -1

// Logical keys, distinct from each other and from any character code
const (
	KeyNone   Key = RawNone
	KeyEscape Key = 27
)

// Arrow keys sit beyond utf8.MaxRune so no character can collide
const (
	KeyArrowUp Key = utf8.MaxRune + 1 + iota
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// keyToName maps special keys to canonical config names
var keyToName = map[Key]string{
	KeyNone:       "none",
	KeyEscape:     "escape",
	KeyArrowUp:    "up",
	KeyArrowDown:  "down",
	KeyArrowLeft:  "left",
	KeyArrowRight: "right",
}

// nameToKey is the reverse lookup, with aliases
var nameToKey = func() map[string]Key {
	m := make(map[string]Key, len(keyToName)+2)
	for k, n := range keyToName {
		m[n] = k
	}
	m["esc"] = KeyEscape
	m["space"] = Key(' ')
	m["enter"] = Key('\r')
	return m
}()

// IsArrow reports whether k is one of the four arrow keys
func (k Key) IsArrow() bool {
	return k >= KeyArrowUp && k <= KeyArrowRight
}

func (k Key) String() string {
	if n, ok := keyToName[k]; ok {
		return n
	}
	if k >= 0x20 && k < 0x7f {
		return string(rune(k))
	}
	return fmt.Sprintf("key(%d)", int(k))
}

// ParseKey resolves a canonical key name or a single printable character
func ParseKey(name string) (Key, error) {
	if k, ok := nameToKey[strings.ToLower(name)]; ok {
		return k, nil
	}
	if len(name) == 1 && name[0] >= 0x20 && name[0] < 0x7f {
		return Key(name[0]), nil
	}
	return KeyNone, fmt.Errorf("unknown key name %q", name)
}
