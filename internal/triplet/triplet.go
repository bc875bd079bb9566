package triplet

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/reforgehelper/reforge/internal/config"
	"github.com/reforgehelper/reforge/internal/item"
)

const Size = 3

type Kind int

const (
	// Discrete triplets hold three distinct inventory items.
	Discrete Kind = iota
	// Stack triplets hold one stack repeated three times; placing it means clicking the same
	// stack three times.
	Stack
)

func (k Kind) String() string {
	if k == Stack {
		return "stack"
	}
	return "discrete"
}

type Triplet struct {
	Kind  Kind
	Items [Size]item.InventoryItem
}

func (t Triplet) Category() item.Category {
	return t.Items[0].Category
}

// Spread is the largest pairwise item level difference.
func (t Triplet) Spread() int {
	lo, hi := t.Items[0].ItemLevel, t.Items[0].ItemLevel
	for _, it := range t.Items[1:] {
		lo = min(lo, it.ItemLevel)
		hi = max(hi, it.ItemLevel)
	}
	return hi - lo
}

func (t Triplet) String() string {
	if t.Kind == Stack {
		return fmt.Sprintf("%s x%d (stack)", t.Items[0].Subtype, t.Items[0].StackSize)
	}
	return fmt.Sprintf("%s %s [%d, %d, %d]", t.Items[0].Rarity, t.Category(),
		t.Items[0].ItemLevel, t.Items[1].ItemLevel, t.Items[2].ItemLevel)
}

// Filter decides whether an item may take part in a discrete triplet.
type Filter struct {
	cfg config.Config
}

func NewFilter(cfg config.Config) Filter {
	return Filter{cfg: cfg}
}

// Eligible returns whether it passes, and why not when it does not.
func (f Filter) Eligible(it item.InventoryItem) (bool, string) {
	switch {
	case it.Category == item.CategoryUnknown:
		return false, "unknown category"
	case !f.cfg.CategoryEnabled(it.Category):
		return false, "category disabled"
	case !it.Identified:
		return false, "unidentified"
	case it.Corrupted:
		return false, "corrupted"
	case it.ItemLevel < f.cfg.MinItemLevel || it.ItemLevel > f.cfg.MaxItemLevel:
		return false, "item level out of range"
	case it.Category.RequiresMagic() && it.Rarity < item.RarityMagic:
		return false, "rarity below magic"
	}
	return true, ""
}

// Former partitions inventory items into triplets.
type Former struct {
	logger *slog.Logger
}

func NewFormer(logger *slog.Logger) *Former {
	return &Former{logger: logger}
}

// Form runs the stackable pass and then the discrete pass over what the first one left. The
// output depends only on items and cfg.
func (f *Former) Form(items []item.InventoryItem, cfg config.Config) []Triplet {
	used := make(map[int]bool)
	triplets := f.formStacks(items, cfg, used)

	rest := make([]item.InventoryItem, 0, len(items))
	for i, it := range items {
		if !used[i] {
			rest = append(rest, it)
		}
	}
	triplets = append(triplets, f.formDiscrete(rest, cfg)...)

	f.logger.Debug("Formed triplets", slog.Int("items", len(items)), slog.Int("triplets", len(triplets)))
	return triplets
}

func (f *Former) formStacks(items []item.InventoryItem, cfg config.Config, used map[int]bool) []Triplet {
	if !cfg.CategoryEnabled(item.CategoryLiquidEmotion) {
		return nil
	}

	var order []string
	groups := make(map[string][]int)
	for i, it := range items {
		if it.Category != item.CategoryLiquidEmotion || it.StackSize < Size {
			continue
		}
		if _, seen := groups[it.Subtype]; !seen {
			order = append(order, it.Subtype)
		}
		groups[it.Subtype] = append(groups[it.Subtype], i)
	}

	var triplets []Triplet
	for _, subtype := range order {
		for _, idx := range groups[subtype] {
			it := items[idx]
			used[idx] = true
			triplets = append(triplets, Triplet{Kind: Stack, Items: [Size]item.InventoryItem{it, it, it}})
		}
		f.logger.Debug("Stack group processed", slog.String("subtype", subtype), slog.Int("stacks", len(groups[subtype])))
	}
	return triplets
}

type groupKey struct {
	category item.Category
	rarity   item.Rarity
}

func (f *Former) formDiscrete(items []item.InventoryItem, cfg config.Config) []Triplet {
	filter := NewFilter(cfg)

	var order []groupKey
	groups := make(map[groupKey][]item.InventoryItem)
	for _, it := range items {
		if ok, reason := filter.Eligible(it); !ok {
			f.logger.Debug("Item not eligible", slog.String("item", it.String()), slog.String("reason", reason))
			continue
		}
		k := groupKey{category: it.Category, rarity: it.Rarity}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], it)
	}

	var triplets []Triplet
	for _, k := range order {
		group := groups[k]
		if len(group) < Size {
			continue
		}
		f.logger.Debug("Processing group",
			slog.String("category", k.category.String()),
			slog.String("rarity", k.rarity.String()),
			slog.Int("items", len(group)),
		)
		triplets = append(triplets, consecutiveRuns(group, cfg.MaxItemLevelDisparity)...)
	}
	return triplets
}

// consecutiveRuns sorts by item level and takes runs of three adjacent items whose spread fits
// the disparity. A run that does not fit drops its lowest item and the window moves on. Whatever
// remains after the last full run stays unused, so a group whose levels all fit leaves count mod 3.
func consecutiveRuns(group []item.InventoryItem, disparity int) []Triplet {
	sorted := append([]item.InventoryItem(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ItemLevel < sorted[j].ItemLevel
	})

	var triplets []Triplet
	for i := 0; i+Size <= len(sorted); {
		if sorted[i+Size-1].ItemLevel-sorted[i].ItemLevel > disparity {
			i++
			continue
		}
		triplets = append(triplets, Triplet{
			Kind:  Discrete,
			Items: [Size]item.InventoryItem{sorted[i], sorted[i+1], sorted[i+2]},
		})
		i += Size
	}
	return triplets
}
