//go:build !windows

package hostfile

// Without a window manager API the bridge's foreground flag is the only signal.
func foregroundProcessIs(string) bool {
	return true
}
