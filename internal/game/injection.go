package game

import "log/slog"

// checkInjected reports whether the system accepted an injected input event. A refusal usually
// means the game runs elevated and blocks input from this process.
func checkInjected(logger *slog.Logger, accepted uint32, kind string) bool {
	if accepted > 0 {
		return true
	}
	if logger != nil {
		logger.Debug("Input injection was blocked", slog.String("input", kind))
	}
	return false
}
