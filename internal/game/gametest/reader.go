package gametest

import (
	"sync"

	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/item"
)

// Reader is a settable game reader. The zero value has nothing open; NewReader opens everything.
type Reader struct {
	mu sync.Mutex

	Inventory   bool
	Items       []item.RawItem
	Bench       game.Bench
	Foreground  bool
	SafeZone    bool
	LocateCalls int
}

func NewReader(bench game.Bench, items ...item.RawItem) *Reader {
	return &Reader{
		Inventory:  true,
		Items:      items,
		Bench:      bench,
		Foreground: true,
		SafeZone:   true,
	}
}

func (r *Reader) SetInventory(open bool) {
	r.mu.Lock()
	r.Inventory = open
	r.mu.Unlock()
}

func (r *Reader) SetItems(items ...item.RawItem) {
	r.mu.Lock()
	r.Items = items
	r.mu.Unlock()
}

func (r *Reader) SetSafeZone(v bool) {
	r.mu.Lock()
	r.SafeZone = v
	r.mu.Unlock()
}

func (r *Reader) SetForeground(v bool) {
	r.mu.Lock()
	r.Foreground = v
	r.mu.Unlock()
}

func (r *Reader) InventoryVisible() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Inventory, nil
}

func (r *Reader) InventoryItems() ([]item.RawItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]item.RawItem(nil), r.Items...), nil
}

func (r *Reader) LocateBench() (game.Bench, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LocateCalls++
	return r.Bench, r.Bench != nil, nil
}

func (r *Reader) IsForeground() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Foreground
}

func (r *Reader) IsSafeZone() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.SafeZone
}

// Raw builds a valid host record.
func Raw(h item.Handle, name string, lvl int, rarity item.Rarity, rect game.Rect) item.RawItem {
	return item.RawItem{
		Present:    true,
		Handle:     h,
		Address:    0x1000 + uint64(h),
		BaseName:   name,
		HasBase:    true,
		HasMods:    true,
		ItemLevel:  lvl,
		Rarity:     rarity,
		Identified: true,
		StackSize:  1,
		Rect:       rect,
	}
}
