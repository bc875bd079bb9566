//go:build windows

package hostfile

import (
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// foregroundProcessIs reports whether the foreground window belongs to an executable named
// process. An empty name matches anything.
func foregroundProcessIs(process string) bool {
	if process == "" {
		return true
	}

	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return false
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
		return false
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return false
	}
	return strings.EqualFold(filepath.Base(windows.UTF16ToString(buf[:size])), process)
}
