// Package hostfile reads game state from a YAML snapshot kept up to date by an external host
// bridge. The bridge owns memory reading and UI tree walking; this package only consumes its output.
package hostfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/item"
)

type State struct {
	Foreground bool      `yaml:"foreground"`
	SafeZone   bool      `yaml:"safeZone"`
	Inventory  Inventory `yaml:"inventory"`
	Bench      *Bench    `yaml:"bench,omitempty"`
}

type Inventory struct {
	Visible bool           `yaml:"visible"`
	Items   []item.RawItem `yaml:"items"`
}

type Bench struct {
	Visible bool     `yaml:"visible"`
	Slots   []Slot   `yaml:"slots"`
	Action  *Control `yaml:"action,omitempty"`
	Result  *Control `yaml:"result,omitempty"`
}

type Slot struct {
	Rect     game.Rect `yaml:"rect"`
	Occupied bool      `yaml:"occupied"`
	// Stack is the unit count of the slot's item. Omitted means unknown.
	Stack *int `yaml:"stack,omitempty"`
}

type Control struct {
	Rect    game.Rect `yaml:"rect"`
	Visible bool      `yaml:"visible"`
}

// Reader implements the game reader capabilities on top of the state file. The file is parsed
// again only when its modification time changes.
type Reader struct {
	path    string
	process string
	logger  *slog.Logger

	mu      sync.Mutex
	modTime time.Time
	size    int64
	state   State
}

func New(path, process string, logger *slog.Logger) *Reader {
	return &Reader{path: path, process: process, logger: logger}
}

func (r *Reader) load() (State, error) {
	fi, err := os.Stat(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if fi.ModTime().Equal(r.modTime) && fi.Size() == r.size {
		return r.state, nil
	}

	b, err := os.ReadFile(r.path)
	if err != nil {
		return State{}, err
	}
	var st State
	if err := yaml.Unmarshal(b, &st); err != nil {
		return State{}, fmt.Errorf("error parsing host state %s: %w", r.path, err)
	}
	r.state = st
	r.modTime = fi.ModTime()
	r.size = fi.Size()
	return st, nil
}

func (r *Reader) InventoryVisible() (bool, error) {
	st, err := r.load()
	if err != nil {
		return false, err
	}
	return st.Inventory.Visible, nil
}

func (r *Reader) InventoryItems() ([]item.RawItem, error) {
	st, err := r.load()
	if err != nil {
		return nil, err
	}
	return append([]item.RawItem(nil), st.Inventory.Items...), nil
}

func (r *Reader) LocateBench() (game.Bench, bool, error) {
	st, err := r.load()
	if err != nil {
		return nil, false, err
	}
	if st.Bench == nil {
		return nil, false, nil
	}
	return &bench{reader: r}, true, nil
}

// IsForeground reports the bridge's view, and on Windows also checks the foreground process.
func (r *Reader) IsForeground() bool {
	st, err := r.load()
	if err != nil {
		r.logger.Debug("Host state unreadable", slog.Any("error", err))
		return false
	}
	if !st.Foreground {
		return false
	}
	return foregroundProcessIs(r.process)
}

func (r *Reader) IsSafeZone() bool {
	st, err := r.load()
	if err != nil {
		return false
	}
	return st.SafeZone
}

// bench resolves its regions from the latest state on every call, so a closed panel is noticed.
type bench struct {
	reader *Reader
}

func (b *bench) current() (*Bench, error) {
	st, err := b.reader.load()
	if err != nil {
		return nil, err
	}
	return st.Bench, nil
}

func (b *bench) Visible() bool {
	cur, err := b.current()
	return err == nil && cur != nil && cur.Visible
}

func (b *bench) Slots() ([]game.Slot, error) {
	cur, err := b.current()
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, nil
	}
	slots := make([]game.Slot, 0, len(cur.Slots))
	for _, s := range cur.Slots {
		stack := game.UnknownStack
		if s.Stack != nil {
			stack = *s.Stack
		}
		slots = append(slots, game.Slot{Rect: s.Rect, Occupied: s.Occupied, Stack: stack})
	}
	return slots, nil
}

func (b *bench) ActionControl() (game.Rect, bool, error) {
	cur, err := b.current()
	if err != nil || cur == nil {
		return game.Rect{}, false, err
	}
	return control(cur.Visible, cur.Action)
}

func (b *bench) ResultSlot() (game.Rect, bool, error) {
	cur, err := b.current()
	if err != nil || cur == nil {
		return game.Rect{}, false, err
	}
	return control(cur.Visible, cur.Result)
}

func control(benchVisible bool, c *Control) (game.Rect, bool, error) {
	if !benchVisible || c == nil || !c.Visible || c.Rect.Empty() {
		return game.Rect{}, false, nil
	}
	return c.Rect, true, nil
}
