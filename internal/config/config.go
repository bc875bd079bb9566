package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/item"
	"github.com/reforgehelper/reforge/internal/utils"
)

const DefaultPath = "config/reforge.yaml"

type Config struct {
	Enabled               bool       `yaml:"enabled"`
	Debug                 bool       `yaml:"debug"`
	Hotkeys               Hotkeys    `yaml:"hotkeys"`
	MaxItemLevelDisparity int        `yaml:"maxItemLevelDisparity"`
	MinItemLevel          int        `yaml:"minItemLevel"`
	MaxItemLevel          int        `yaml:"maxItemLevel"`
	Categories            Categories `yaml:"categories"`
	Movement              Movement   `yaml:"movement"`
	Timing                Timing     `yaml:"timing"`
	StackCraft            StackCraft `yaml:"stackCraft"`
	Status                Status     `yaml:"status"`
	Discord               Discord    `yaml:"discord"`
	Telegram              Telegram   `yaml:"telegram"`
	Host                  Host       `yaml:"host"`
}

type Hotkeys struct {
	Toggle        string `yaml:"toggle"`
	EmergencyStop string `yaml:"emergencyStop"`
}

type Categories struct {
	SoulCores      bool `yaml:"soulCores"`
	Jewels         bool `yaml:"jewels"`
	Rings          bool `yaml:"rings"`
	Amulets        bool `yaml:"amulets"`
	Waystones      bool `yaml:"waystones"`
	Relics         bool `yaml:"relics"`
	Tablets        bool `yaml:"tablets"`
	LiquidEmotions bool `yaml:"liquidEmotions"`
}

// Movement values are milliseconds except SpeedVariance, a percentage.
type Movement struct {
	SpeedVariance int `yaml:"speedVariance"`
	ClickDelay    int `yaml:"clickDelay"`
	MovementPause int `yaml:"movementPause"`
}

// Timing values are milliseconds.
type Timing struct {
	ModifierHold      int `yaml:"modifierHold"`
	CraftWait         int `yaml:"craftWait"`
	InterTripletPause int `yaml:"interTripletPause"`
	BenchPollInterval int `yaml:"benchPollInterval"`
	InventoryCacheTTL int `yaml:"inventoryCacheTTL"`
	TickInterval      int `yaml:"tickInterval"`
}

type StackCraft struct {
	MaxCycles int `yaml:"maxCycles"`
}

type Status struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type Discord struct {
	Enabled   bool   `yaml:"enabled"`
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channelID"`
}

type Telegram struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chatID"`
}

type Host struct {
	StateFile   string `yaml:"stateFile"`
	ProcessName string `yaml:"processName"`
}

func Default() Config {
	return Config{
		Enabled:               true,
		Hotkeys:               Hotkeys{Toggle: "F6", EmergencyStop: "F7"},
		MaxItemLevelDisparity: 3,
		MinItemLevel:          60,
		MaxItemLevel:          100,
		Categories: Categories{
			SoulCores: true, Jewels: true, Rings: true, Amulets: true,
			Waystones: true, Relics: true, Tablets: true, LiquidEmotions: true,
		},
		Movement: Movement{SpeedVariance: 20, ClickDelay: 150, MovementPause: 100},
		Timing: Timing{
			ModifierHold:      50,
			CraftWait:         1000,
			InterTripletPause: 200,
			BenchPollInterval: 1000,
			InventoryCacheTTL: 200,
			TickInterval:      50,
		},
		StackCraft: StackCraft{MaxCycles: 50},
		Status:     Status{Enabled: true, Listen: "127.0.0.1:8087"},
		Host:       Host{StateFile: "host/state.yaml", ProcessName: "PathOfExileSteam.exe"},
	}
}

// CategoryEnabled reports the enable flag for c. Unknown is never enabled.
func (c Config) CategoryEnabled(cat item.Category) bool {
	switch cat {
	case item.CategoryRing:
		return c.Categories.Rings
	case item.CategoryAmulet:
		return c.Categories.Amulets
	case item.CategoryJewel:
		return c.Categories.Jewels
	case item.CategorySoulCore:
		return c.Categories.SoulCores
	case item.CategoryWaystone:
		return c.Categories.Waystones
	case item.CategoryRelic:
		return c.Categories.Relics
	case item.CategoryTablet:
		return c.Categories.Tablets
	case item.CategoryLiquidEmotion:
		return c.Categories.LiquidEmotions
	}
	return false
}

// Normalize brings out-of-range values back to their defaults, using the same bounds the
// settings menu exposes.
func (c *Config) Normalize() {
	d := Default()
	c.MaxItemLevelDisparity = utils.ClampOrDefault(c.MaxItemLevelDisparity, 0, 10, d.MaxItemLevelDisparity)
	c.MinItemLevel = utils.ClampOrDefault(c.MinItemLevel, 1, 100, d.MinItemLevel)
	c.MaxItemLevel = utils.ClampOrDefault(c.MaxItemLevel, 1, 100, d.MaxItemLevel)
	c.Movement.SpeedVariance = utils.ClampOrDefault(c.Movement.SpeedVariance, 0, 50, d.Movement.SpeedVariance)
	c.Movement.ClickDelay = utils.ClampOrDefault(c.Movement.ClickDelay, 50, 500, d.Movement.ClickDelay)
	c.Movement.MovementPause = utils.ClampOrDefault(c.Movement.MovementPause, 50, 300, d.Movement.MovementPause)
	c.Timing.ModifierHold = utils.ClampOrDefault(c.Timing.ModifierHold, 0, 1000, d.Timing.ModifierHold)
	c.Timing.CraftWait = utils.ClampOrDefault(c.Timing.CraftWait, 0, 10000, d.Timing.CraftWait)
	c.Timing.InterTripletPause = utils.ClampOrDefault(c.Timing.InterTripletPause, 0, 5000, d.Timing.InterTripletPause)
	c.Timing.BenchPollInterval = utils.ClampOrDefault(c.Timing.BenchPollInterval, 0, 10000, d.Timing.BenchPollInterval)
	c.Timing.InventoryCacheTTL = utils.ClampOrDefault(c.Timing.InventoryCacheTTL, 0, 10000, d.Timing.InventoryCacheTTL)
	c.Timing.TickInterval = utils.ClampOrDefault(c.Timing.TickInterval, 1, 1000, d.Timing.TickInterval)
	c.StackCraft.MaxCycles = utils.ClampOrDefault(c.StackCraft.MaxCycles, 1, 1000, d.StackCraft.MaxCycles)
	if c.Hotkeys.Toggle == "" {
		c.Hotkeys.Toggle = d.Hotkeys.Toggle
	}
	if c.Hotkeys.EmergencyStop == "" {
		c.Hotkeys.EmergencyStop = d.Hotkeys.EmergencyStop
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.MinItemLevel > c.MaxItemLevel {
		errs = append(errs, fmt.Errorf("minItemLevel %d is above maxItemLevel %d", c.MinItemLevel, c.MaxItemLevel))
	}
	if c.Hotkeys.Toggle == c.Hotkeys.EmergencyStop {
		errs = append(errs, fmt.Errorf("toggle and emergency stop share hotkey %s", c.Hotkeys.Toggle))
	}
	if c.Discord.Enabled && (c.Discord.Token == "" || c.Discord.ChannelID == "") {
		errs = append(errs, errors.New("discord is enabled but token or channelID is missing"))
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == 0) {
		errs = append(errs, errors.New("telegram is enabled but token or chatID is missing"))
	}
	return errors.Join(errs...)
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (t Timing) CacheTTL() time.Duration        { return ms(t.InventoryCacheTTL) }
func (t Timing) PollInterval() time.Duration    { return ms(t.BenchPollInterval) }
func (t Timing) Craft() time.Duration           { return ms(t.CraftWait) }
func (t Timing) BetweenTriplets() time.Duration { return ms(t.InterTripletPause) }
func (t Timing) Tick() time.Duration            { return ms(t.TickInterval) }
func (t Timing) Modifier() time.Duration        { return ms(t.ModifierHold) }
func (m Movement) Click() time.Duration         { return ms(m.ClickDelay) }
func (m Movement) Pause() time.Duration         { return ms(m.MovementPause) }

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("error reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Pacing converts the movement settings to input pacing.
func (c Config) Pacing() game.Pacing {
	p := game.DefaultPacing()
	p.SpeedVariance = c.Movement.SpeedVariance
	p.ClickDelay = c.Movement.Click()
	p.MovementPause = c.Movement.Pause()
	p.ModifierHold = c.Timing.Modifier()
	return p
}
