package item

import (
	"fmt"
	"strings"

	"github.com/reforgehelper/reforge/internal/game"
)

type Category int

const (
	CategoryUnknown Category = iota
	CategoryRing
	CategoryAmulet
	CategoryJewel
	CategorySoulCore
	CategoryWaystone
	CategoryRelic
	CategoryTablet
	CategoryLiquidEmotion
)

// Categories lists the known categories in classification order.
var Categories = []Category{
	CategoryRing, CategoryAmulet, CategoryJewel, CategorySoulCore,
	CategoryWaystone, CategoryRelic, CategoryTablet, CategoryLiquidEmotion,
}

var categoryNames = map[Category]string{
	CategoryUnknown:       "Unknown",
	CategoryRing:          "Ring",
	CategoryAmulet:        "Amulet",
	CategoryJewel:         "Jewel",
	CategorySoulCore:      "Soul Core",
	CategoryWaystone:      "Waystone",
	CategoryRelic:         "Relic",
	CategoryTablet:        "Tablet",
	CategoryLiquidEmotion: "Liquid Emotion",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// RequiresMagic reports whether items of the category must be at least Magic to be reforged.
func (c Category) RequiresMagic() bool {
	switch c {
	case CategoryJewel, CategoryRing, CategoryAmulet:
		return true
	}
	return false
}

type Rarity int

const (
	RarityNormal Rarity = iota
	RarityMagic
	RarityRare
	RarityUnique
)

func (r Rarity) String() string {
	switch r {
	case RarityNormal:
		return "Normal"
	case RarityMagic:
		return "Magic"
	case RarityRare:
		return "Rare"
	case RarityUnique:
		return "Unique"
	}
	return fmt.Sprintf("Rarity(%d)", int(r))
}

func ParseRarity(s string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return RarityNormal, nil
	case "magic":
		return RarityMagic, nil
	case "rare":
		return RarityRare, nil
	case "unique":
		return RarityUnique, nil
	}
	return RarityNormal, fmt.Errorf("unknown rarity %q", s)
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := ParseRarity(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Handle identifies the underlying game entity. It is compared, never dereferenced.
type Handle uint64

// InventoryItem is a classified inventory entry with its last known screen position.
type InventoryItem struct {
	Handle     Handle
	Name       string
	Category   Category
	Subtype    string
	ItemLevel  int
	Rarity     Rarity
	StackSize  int
	Rect       game.Rect
	Corrupted  bool
	Identified bool
}

// New classifies name and builds the item. StackSize below 1 becomes 1.
func New(h Handle, name string, itemLevel int, rarity Rarity, stack int, rect game.Rect, identified, corrupted bool) InventoryItem {
	cl := Classify(name)
	if stack < 1 {
		stack = 1
	}
	return InventoryItem{
		Handle:     h,
		Name:       name,
		Category:   cl.Category,
		Subtype:    cl.Subtype,
		ItemLevel:  itemLevel,
		Rarity:     rarity,
		StackSize:  stack,
		Rect:       rect,
		Corrupted:  corrupted,
		Identified: identified,
	}
}

func (i InventoryItem) String() string {
	return fmt.Sprintf("%s (iLvl:%d, %s)", i.Name, i.ItemLevel, i.Rarity)
}

// RawItem is an inventory record as delivered by the host.
type RawItem struct {
	Present    bool      `yaml:"present"`
	Handle     Handle    `yaml:"handle"`
	Address    uint64    `yaml:"address"`
	BaseName   string    `yaml:"baseName"`
	HasBase    bool      `yaml:"hasBase"`
	HasMods    bool      `yaml:"hasMods"`
	ItemLevel  int       `yaml:"itemLevel"`
	Rarity     Rarity    `yaml:"rarity"`
	Identified bool      `yaml:"identified"`
	Corrupted  bool      `yaml:"corrupted"`
	StackSize  int       `yaml:"stackSize"`
	Rect       game.Rect `yaml:"rect"`
}
