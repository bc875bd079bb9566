package context

import (
	"log/slog"
	"sync"

	"github.com/reforgehelper/reforge/internal/config"
	"github.com/reforgehelper/reforge/internal/game"
)

// Context carries the collaborators shared by the controller and its actions.
type Context struct {
	Logger     *slog.Logger
	GameReader GameReader
	HID        *game.HID
	Keys       game.KeyStateReader

	mu  sync.RWMutex
	cfg config.Config
}

func New(logger *slog.Logger, reader GameReader, hid *game.HID, keys game.KeyStateReader, cfg config.Config) *Context {
	return &Context{
		Logger:     logger,
		GameReader: reader,
		HID:        hid,
		Keys:       keys,
		cfg:        cfg,
	}
}

// Config returns a snapshot of the current settings.
func (c *Context) Config() config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// SetConfig replaces the settings and applies the input pacing.
func (c *Context) SetConfig(cfg config.Config) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	if c.HID != nil {
		c.HID.SetPacing(cfg.Pacing())
	}
}
