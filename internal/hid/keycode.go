package hid

import "strings"

// Modifier bits of byte 0 in a boot keyboard report.
const (
	ModCtrl  byte = 0x01
	ModShift byte = 0x02
	ModAlt   byte = 0x04
	ModGUI   byte = 0x08
)

// Usage IDs from the HID keyboard/keypad page (0x07).
const (
	KeyA         byte = 0x04
	KeyOne       byte = 0x1e
	KeyZero      byte = 0x27
	KeyEnter     byte = 0x28
	KeyEscape    byte = 0x29
	KeyBackspace byte = 0x2a
	KeyTab       byte = 0x2b
	KeySpace     byte = 0x2c
	KeyHome      byte = 0x4a
	KeyPageUp    byte = 0x4b
	KeyDelete    byte = 0x4c
	KeyEnd       byte = 0x4d
	KeyPageDown  byte = 0x4e
	KeyRight     byte = 0x4f
	KeyLeft      byte = 0x50
	KeyDown      byte = 0x51
	KeyUp        byte = 0x52
)

// Stroke is a single key press with its modifiers.
type Stroke struct {
	Modifiers byte
	Key       byte
}

var specialKeys = map[string]byte{
	"ENTER":     KeyEnter,
	"TAB":       KeyTab,
	"SPACE":     KeySpace,
	"BACKSPACE": KeyBackspace,
	"DELETE":    KeyDelete,
	"ESC":       KeyEscape,
	"UP":        KeyUp,
	"DOWN":      KeyDown,
	"LEFT":      KeyLeft,
	"RIGHT":     KeyRight,
	"HOME":      KeyHome,
	"END":       KeyEnd,
	"PAGEUP":    KeyPageUp,
	"PAGEDOWN":  KeyPageDown,
}

var modifierNames = map[string]byte{
	"CTRL":  ModCtrl,
	"SHIFT": ModShift,
	"ALT":   ModAlt,
	"GUI":   ModGUI,
	"WIN":   ModGUI,
	"CMD":   ModGUI,
}

// Punctuation on a US layout: unshifted and shifted characters per key.
var punctuation = []struct {
	plain, shifted rune
	key            byte
}{
	{'-', '_', 0x2d},
	{'=', '+', 0x2e},
	{'[', '{', 0x2f},
	{']', '}', 0x30},
	{'\\', '|', 0x31},
	{';', ':', 0x33},
	{'\'', '"', 0x34},
	{'`', '~', 0x35},
	{',', '<', 0x36},
	{'.', '>', 0x37},
	{'/', '?', 0x38},
}

const shiftedDigits = ")!@#$%^&*("

var usLayout = buildUSLayout()

func buildUSLayout() map[rune]Stroke {
	m := map[rune]Stroke{
		' ':  {Key: KeySpace},
		'\n': {Key: KeyEnter},
		'\t': {Key: KeyTab},
	}
	for i := 0; i < 26; i++ {
		m['a'+rune(i)] = Stroke{Key: KeyA + byte(i)}
		m['A'+rune(i)] = Stroke{Modifiers: ModShift, Key: KeyA + byte(i)}
	}
	for d := 0; d <= 9; d++ {
		key := KeyZero
		if d > 0 {
			key = KeyOne + byte(d-1)
		}
		m['0'+rune(d)] = Stroke{Key: key}
		m[rune(shiftedDigits[d])] = Stroke{Modifiers: ModShift, Key: key}
	}
	for _, p := range punctuation {
		m[p.plain] = Stroke{Key: p.key}
		m[p.shifted] = Stroke{Modifiers: ModShift, Key: p.key}
	}
	return m
}

// StrokeFor returns the US layout stroke that types r.
func StrokeFor(r rune) (Stroke, bool) {
	s, ok := usLayout[r]
	return s, ok
}

// keyByName resolves a special key name or a single letter/digit.
func keyByName(name string) (byte, bool) {
	if k, ok := specialKeys[name]; ok {
		return k, true
	}
	if len(name) == 1 {
		s, ok := StrokeFor(rune(strings.ToLower(name)[0]))
		if ok && s.Modifiers == 0 {
			return s.Key, true
		}
	}
	return 0, false
}
