package inventory

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	ct "github.com/reforgehelper/reforge/internal/context"
	"github.com/reforgehelper/reforge/internal/item"
)

const DefaultTTL = 200 * time.Millisecond

// Cache memoizes classified inventory snapshots for a fixed TTL.
type Cache struct {
	reader ct.InventoryReader
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	ttl       time.Duration
	items     []item.InventoryItem
	scannedAt time.Time
	valid     bool
}

func NewCache(reader ct.InventoryReader, logger *slog.Logger, ttl time.Duration) *Cache {
	return &Cache{
		reader: reader,
		logger: logger,
		now:    time.Now,
		ttl:    ttl,
	}
}

// WithClock replaces the wall clock, for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func (c *Cache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
}

// Invalidate forces the next Snapshot to rescan.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// Snapshot returns the cached items, rescanning when the entry is older than the TTL. An
// unavailable inventory yields an empty slice, never an error. Callers must not modify the
// returned slice.
func (c *Cache) Snapshot() []item.InventoryItem {
	c.mu.Lock()
	if c.valid && c.now().Sub(c.scannedAt) < c.ttl {
		items := c.items
		c.mu.Unlock()
		return items
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do("scan", func() (interface{}, error) {
		items := c.scan()
		c.mu.Lock()
		c.items = items
		c.scannedAt = c.now()
		c.valid = true
		c.mu.Unlock()
		return items, nil
	})
	return v.([]item.InventoryItem)
}

func (c *Cache) scan() (items []item.InventoryItem) {
	items = []item.InventoryItem{}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Inventory scan panicked", slog.Any("panic", r))
			items = []item.InventoryItem{}
		}
	}()

	visible, err := c.reader.InventoryVisible()
	if err != nil {
		c.logger.Debug("Inventory visibility check failed", slog.Any("error", err))
		return items
	}
	if !visible {
		c.logger.Debug("Inventory panel not visible")
		return items
	}

	raw, err := c.reader.InventoryItems()
	if err != nil {
		c.logger.Debug("Inventory read failed", slog.Any("error", err))
		return items
	}
	c.logger.Debug("Scanning inventory", slog.Int("entries", len(raw)))

	for i, r := range raw {
		if reason, ok := validate(r); !ok {
			c.logger.Debug("Skipping inventory entry", slog.Int("index", i), slog.String("reason", reason))
			continue
		}
		it := item.New(r.Handle, r.BaseName, r.ItemLevel, r.Rarity, r.StackSize, r.Rect, r.Identified, r.Corrupted)
		c.logger.Debug("Inventory item",
			slog.String("name", it.Name),
			slog.String("category", it.Category.String()),
			slog.Int("itemLevel", it.ItemLevel),
			slog.String("rarity", it.Rarity.String()),
			slog.Int("stack", it.StackSize),
		)
		items = append(items, it)
	}

	return items
}

func validate(r item.RawItem) (string, bool) {
	switch {
	case !r.Present:
		return "not present", false
	case r.Handle == 0:
		return "null identity", false
	case r.Address == 0:
		return "zero address", false
	case !r.HasBase:
		return "missing base data", false
	case !r.HasMods:
		return "missing mods data", false
	}
	return "", true
}
