//go:build windows

package game

import (
	"log/slog"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var procGetAsyncKeyState = windows.NewLazySystemDLL("user32.dll").NewProc("GetAsyncKeyState")

// SystemSink injects input with SendInput and reads key state with GetAsyncKeyState.
type SystemSink struct {
	logger *slog.Logger
}

func NewSystemSink(logger *slog.Logger) (*SystemSink, error) {
	if err := procGetAsyncKeyState.Find(); err != nil {
		return nil, err
	}
	return &SystemSink{logger: logger}, nil
}

func (SystemSink) CursorPosition() Point {
	var p win.POINT
	win.GetCursorPos(&p)
	return Point{X: int(p.X), Y: int(p.Y)}
}

func (SystemSink) SetCursorPosition(p Point) {
	win.SetCursorPos(int32(p.X), int32(p.Y))
}

func (s SystemSink) MouseDown(b MouseButton) {
	flags := uint32(win.MOUSEEVENTF_LEFTDOWN)
	if b == RightButton {
		flags = win.MOUSEEVENTF_RIGHTDOWN
	}
	s.mouse(flags)
}

func (s SystemSink) MouseUp(b MouseButton) {
	flags := uint32(win.MOUSEEVENTF_LEFTUP)
	if b == RightButton {
		flags = win.MOUSEEVENTF_RIGHTUP
	}
	s.mouse(flags)
}

func (s SystemSink) mouse(flags uint32) {
	in := win.MOUSE_INPUT{
		Type: win.INPUT_MOUSE,
		Mi:   win.MOUSEINPUT{DwFlags: flags},
	}
	checkInjected(s.logger, win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in))), "mouse")
}

func (s SystemSink) KeyDown(k Key) {
	s.key(k, 0)
}

func (s SystemSink) KeyUp(k Key) {
	s.key(k, win.KEYEVENTF_KEYUP)
}

func (s SystemSink) key(k Key, flags uint32) {
	in := win.KEYBD_INPUT{
		Type: win.INPUT_KEYBOARD,
		Ki:   win.KEYBDINPUT{WVk: uint16(k), DwFlags: flags},
	}
	checkInjected(s.logger, win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in))), "keyboard")
}

// IsKeyDown reads the physical key state, so hotkeys work while the game has focus.
func (SystemSink) IsKeyDown(k Key) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(k))
	return r&0x8000 != 0
}
