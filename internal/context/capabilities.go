package context

import (
	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/item"
)

// Collaborator interfaces live here so adapters and the core can share them without import cycles.

type InventoryReader interface {
	InventoryVisible() (bool, error)
	InventoryItems() ([]item.RawItem, error)
}

type BenchLocator interface {
	// LocateBench returns the bench when it is present in the UI.
	LocateBench() (game.Bench, bool, error)
}

type Window interface {
	IsForeground() bool
	IsSafeZone() bool
}

// GameReader is everything the core reads from the host.
type GameReader interface {
	InventoryReader
	BenchLocator
	Window
}
