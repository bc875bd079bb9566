//go:build !windows

package game

import (
	"errors"
	"log/slog"
)

var ErrUnsupportedPlatform = errors.New("input injection is only supported on Windows")

// SystemSink is unavailable on this platform; NewSystemSink always fails.
type SystemSink struct {
	InputSink
	KeyStateReader
}

func NewSystemSink(*slog.Logger) (*SystemSink, error) {
	return nil, ErrUnsupportedPlatform
}
