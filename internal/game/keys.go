package game

import (
	"fmt"
	"strings"
)

type MouseButton uint

const (
	LeftButton MouseButton = iota
	RightButton
)

// Key is a Windows virtual-key code.
type Key uint16

const (
	CtrlKey  Key = 0x11
	ShiftKey Key = 0x10
)

var keyNames = map[string]Key{
	"CTRL": CtrlKey, "SHIFT": ShiftKey,
	"F1": 0x70, "F2": 0x71, "F3": 0x72, "F4": 0x73, "F5": 0x74, "F6": 0x75,
	"F7": 0x76, "F8": 0x77, "F9": 0x78, "F10": 0x79, "F11": 0x7A, "F12": 0x7B,
	"PAUSE": 0x13, "INSERT": 0x2D, "DELETE": 0x2E, "HOME": 0x24, "END": 0x23,
	"PAGEUP": 0x21, "PAGEDOWN": 0x22, "ESCAPE": 0x1B,
}

// ParseKey accepts names like "F6" or single letters/digits.
func ParseKey(name string) (Key, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if k, ok := keyNames[n]; ok {
		return k, nil
	}
	if len(n) == 1 && ((n[0] >= 'A' && n[0] <= 'Z') || (n[0] >= '0' && n[0] <= '9')) {
		return Key(n[0]), nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

func (k Key) String() string {
	for name, v := range keyNames {
		if v == k {
			return name
		}
	}
	if (k >= 'A' && k <= 'Z') || (k >= '0' && k <= '9') {
		return string(rune(k))
	}
	return fmt.Sprintf("VK(0x%02X)", uint16(k))
}

// KeyStateReader reports whether a key is currently held.
type KeyStateReader interface {
	IsKeyDown(k Key) bool
}

// Hotkey turns a level-triggered key state into a single press event.
type Hotkey struct {
	Key     Key
	wasDown bool
}

func NewHotkey(k Key) *Hotkey {
	return &Hotkey{Key: k}
}

// PressedOnce returns true only on the poll where the key transitions to down.
func (h *Hotkey) PressedOnce(r KeyStateReader) bool {
	down := r.IsKeyDown(h.Key)
	pressed := down && !h.wasDown
	h.wasDown = down
	return pressed
}
