package triplet

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforgehelper/reforge/internal/config"
	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/item"
)

var nextHandle item.Handle

func newItem(name string, lvl int, rarity item.Rarity) item.InventoryItem {
	nextHandle++
	return item.New(nextHandle, name, lvl, rarity, 1, game.Rect{X: int(nextHandle) * 20, Y: 100, Width: 20, Height: 20}, true, false)
}

func newStack(name string, stack int) item.InventoryItem {
	it := newItem(name, 1, item.RarityNormal)
	it.StackSize = stack
	return it
}

func former() *Former {
	return NewFormer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func levels(t Triplet) []int {
	return []int{t.Items[0].ItemLevel, t.Items[1].ItemLevel, t.Items[2].ItemLevel}
}

func TestFormSapphireRingScenario(t *testing.T) {
	cfg := config.Default()
	cfg.MaxItemLevelDisparity = 3

	var items []item.InventoryItem
	for _, lvl := range []int{61, 62, 63, 90, 91} {
		items = append(items, newItem("Sapphire Ring", lvl, item.RarityRare))
	}

	got := former().Form(items, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, []int{61, 62, 63}, levels(got[0]))
	assert.Equal(t, Discrete, got[0].Kind)
}

func TestFormEmptyInput(t *testing.T) {
	got := former().Form(nil, config.Default())
	assert.Empty(t, got)
}

func TestFormSkipsSmallGroups(t *testing.T) {
	items := []item.InventoryItem{
		newItem("Ruby Ring", 70, item.RarityRare),
		newItem("Ruby Ring", 70, item.RarityRare),
		newItem("Ruby Ring", 70, item.RarityMagic),
	}
	assert.Empty(t, former().Form(items, config.Default()))
}

func TestFormGroupsByCategoryAndRarity(t *testing.T) {
	items := []item.InventoryItem{
		newItem("Ruby Ring", 70, item.RarityRare),
		newItem("Sapphire Ring", 71, item.RarityRare),
		newItem("Topaz Ring", 72, item.RarityRare),
		newItem("Jade Amulet", 70, item.RarityMagic),
		newItem("Lunar Amulet", 70, item.RarityMagic),
		newItem("Gold Amulet", 70, item.RarityMagic),
	}

	got := former().Form(items, config.Default())
	require.Len(t, got, 2)
	assert.Equal(t, item.CategoryRing, got[0].Category())
	assert.Equal(t, item.CategoryAmulet, got[1].Category())
}

func TestFilterRules(t *testing.T) {
	cfg := config.Default()
	cfg.Categories.Waystones = false
	f := NewFilter(cfg)

	corrupted := newItem("Ruby Ring", 70, item.RarityRare)
	corrupted.Corrupted = true
	unidentified := newItem("Ruby Ring", 70, item.RarityRare)
	unidentified.Identified = false

	tests := []struct {
		name string
		it   item.InventoryItem
		want bool
	}{
		{"eligible ring", newItem("Ruby Ring", 70, item.RarityRare), true},
		{"normal ring", newItem("Ruby Ring", 70, item.RarityNormal), false},
		{"normal soul core", newItem("Soul Core of Tacati", 70, item.RarityNormal), true},
		{"disabled waystone", newItem("Waystone (Tier 5)", 70, item.RarityNormal), false},
		{"corrupted", corrupted, false},
		{"unidentified", unidentified, false},
		{"too low", newItem("Ruby Ring", 59, item.RarityRare), false},
		{"upper bound", newItem("Ruby Ring", 100, item.RarityRare), true},
		{"unknown", newItem("Some Unknown Thing", 70, item.RarityRare), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := f.Eligible(tt.it)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestFormLeavesCountModThree(t *testing.T) {
	cfg := config.Default()
	cfg.MaxItemLevelDisparity = 10

	for n := 3; n <= 11; n++ {
		var items []item.InventoryItem
		for i := 0; i < n; i++ {
			items = append(items, newItem("Jade Amulet", 70, item.RarityRare))
		}
		got := former().Form(items, cfg)
		assert.Len(t, got, n/3, "n=%d", n)
	}
}

func TestFormStackScenario(t *testing.T) {
	var items []item.InventoryItem
	for i := 0; i < 4; i++ {
		items = append(items, newStack("Liquid Envy", 5))
	}

	got := former().Form(items, config.Default())
	require.NotEmpty(t, got)

	stackHandles := make(map[item.Handle]bool)
	for _, tr := range got {
		require.Equal(t, Stack, tr.Kind, "no discrete triplet may reuse a stack item")
		assert.Equal(t, tr.Items[0].Handle, tr.Items[1].Handle)
		assert.Equal(t, tr.Items[0].Handle, tr.Items[2].Handle)
		assert.False(t, stackHandles[tr.Items[0].Handle])
		stackHandles[tr.Items[0].Handle] = true
	}
}

func TestFormStacksNeedThreeUnits(t *testing.T) {
	items := []item.InventoryItem{
		newStack("Liquid Despair", 2),
		newStack("Liquid Despair", 3),
	}
	got := former().Form(items, config.Default())
	// The 3-unit stack forms a stack triplet, the 2-unit one has no partners.
	require.Len(t, got, 1)
	assert.Equal(t, Stack, got[0].Kind)
	assert.Equal(t, 3, got[0].Items[0].StackSize)
}

func TestFormStacksDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Categories.LiquidEmotions = false
	items := []item.InventoryItem{newStack("Liquid Envy", 9), newStack("Liquid Envy", 9), newStack("Liquid Envy", 9)}
	assert.Empty(t, former().Form(items, cfg))
}

func randomInventory(rnd *rand.Rand, n int) []item.InventoryItem {
	names := []string{
		"Ruby Ring", "Sapphire Ring", "Jade Amulet", "Ruby", "Soul Core of Xopec",
		"Waystone (Tier 3)", "Urn Relic", "Precursor Tablet", "Liquid Envy", "Some Unknown Thing",
	}
	items := make([]item.InventoryItem, 0, n)
	for i := 0; i < n; i++ {
		it := newItem(names[rnd.Intn(len(names))], 50+rnd.Intn(55), item.Rarity(rnd.Intn(4)))
		it.Corrupted = rnd.Intn(8) == 0
		it.Identified = rnd.Intn(8) != 0
		if it.Category == item.CategoryLiquidEmotion {
			it.StackSize = 1 + rnd.Intn(6)
		}
		items = append(items, it)
	}
	return items
}

func TestFormProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		cfg := config.Default()
		cfg.MaxItemLevelDisparity = rnd.Intn(11)
		cfg.MinItemLevel = 55 + rnd.Intn(10)
		cfg.Categories.Relics = rnd.Intn(2) == 0
		f := NewFilter(cfg)

		items := randomInventory(rnd, rnd.Intn(40))
		got := former().Form(items, cfg)

		seen := make(map[item.Handle]bool)
		for _, tr := range got {
			if tr.Kind == Stack {
				assert.Equal(t, item.CategoryLiquidEmotion, tr.Category())
				assert.GreaterOrEqual(t, tr.Items[0].StackSize, Size)
				require.False(t, seen[tr.Items[0].Handle])
				seen[tr.Items[0].Handle] = true
				continue
			}

			assert.LessOrEqual(t, tr.Spread(), cfg.MaxItemLevelDisparity)
			for _, it := range tr.Items {
				ok, reason := f.Eligible(it)
				assert.True(t, ok, reason)
				assert.Equal(t, tr.Items[0].Category, it.Category)
				assert.Equal(t, tr.Items[0].Rarity, it.Rarity)
				require.False(t, seen[it.Handle], "item reused")
				seen[it.Handle] = true
			}
		}

		// Same input, same partition.
		assert.Equal(t, got, former().Form(items, cfg))
	}
}
