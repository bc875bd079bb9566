package game

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInjectedLogsRefusal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	assert.True(t, checkInjected(logger, 1, "mouse"))
	assert.Empty(t, buf.String())

	assert.False(t, checkInjected(logger, 0, "keyboard"))
	assert.Contains(t, buf.String(), "Input injection was blocked")
	assert.Contains(t, buf.String(), "input=keyboard")

	assert.False(t, checkInjected(nil, 0, "mouse"))
}
