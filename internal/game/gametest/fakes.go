// Package gametest provides recording fakes for the game capabilities.
package gametest

import (
	"fmt"
	"sync"

	"github.com/reforgehelper/reforge/internal/game"
)

type ActionKind string

const (
	ActionMove      ActionKind = "move"
	ActionMouseDown ActionKind = "mouse_down"
	ActionMouseUp   ActionKind = "mouse_up"
	ActionKeyDown   ActionKind = "key_down"
	ActionKeyUp     ActionKind = "key_up"
)

type Action struct {
	Kind   ActionKind
	Point  game.Point
	Button game.MouseButton
	Key    game.Key
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%d,%d)", a.Kind, a.Point.X, a.Point.Y)
}

// Sink records every raw input. OnMouseDown runs after a press is recorded and may be used to
// inject cancellation at a precise point.
type Sink struct {
	mu      sync.Mutex
	cursor  game.Point
	actions []Action

	OnMouseDown func(clicks int)
}

func (s *Sink) CursorPosition() game.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Sink) SetCursorPosition(p game.Point) {
	s.mu.Lock()
	s.cursor = p
	s.actions = append(s.actions, Action{Kind: ActionMove, Point: p})
	s.mu.Unlock()
}

func (s *Sink) MouseDown(b game.MouseButton) {
	s.mu.Lock()
	s.actions = append(s.actions, Action{Kind: ActionMouseDown, Point: s.cursor, Button: b})
	clicks := s.countLocked(ActionMouseDown)
	hook := s.OnMouseDown
	s.mu.Unlock()

	if hook != nil {
		hook(clicks)
	}
}

func (s *Sink) MouseUp(b game.MouseButton) {
	s.mu.Lock()
	s.actions = append(s.actions, Action{Kind: ActionMouseUp, Point: s.cursor, Button: b})
	s.mu.Unlock()
}

func (s *Sink) KeyDown(k game.Key) {
	s.mu.Lock()
	s.actions = append(s.actions, Action{Kind: ActionKeyDown, Key: k})
	s.mu.Unlock()
}

func (s *Sink) KeyUp(k game.Key) {
	s.mu.Lock()
	s.actions = append(s.actions, Action{Kind: ActionKeyUp, Key: k})
	s.mu.Unlock()
}

func (s *Sink) Actions() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Action(nil), s.actions...)
}

func (s *Sink) Count(kind ActionKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(kind)
}

// ClickPoints returns where each press happened, in order.
func (s *Sink) ClickPoints() []game.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pts []game.Point
	for _, a := range s.actions {
		if a.Kind == ActionMouseDown {
			pts = append(pts, a.Point)
		}
	}
	return pts
}

func (s *Sink) countLocked(kind ActionKind) int {
	n := 0
	for _, a := range s.actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Bench is a scriptable bench. Slots may be replaced between calls by setting SlotsFunc.
type Bench struct {
	mu sync.Mutex

	Hidden     bool
	SlotRects  []game.Rect
	Action     game.Rect
	NoAction   bool
	Result     game.Rect
	NoResult   bool
	SlotsFunc  func() ([]game.Slot, error)
	ActionErr  error
	SlotsCalls int
}

func NewBench() *Bench {
	return &Bench{
		SlotRects: []game.Rect{
			{X: 500, Y: 300, Width: 50, Height: 50},
			{X: 560, Y: 300, Width: 50, Height: 50},
			{X: 620, Y: 300, Width: 50, Height: 50},
		},
		Action: game.Rect{X: 560, Y: 400, Width: 80, Height: 30},
		Result: game.Rect{X: 560, Y: 200, Width: 50, Height: 50},
	}
}

func (b *Bench) SetHidden(hidden bool) {
	b.mu.Lock()
	b.Hidden = hidden
	b.mu.Unlock()
}

func (b *Bench) SetNoAction(v bool) {
	b.mu.Lock()
	b.NoAction = v
	b.mu.Unlock()
}

func (b *Bench) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.Hidden
}

func (b *Bench) Slots() ([]game.Slot, error) {
	b.mu.Lock()
	b.SlotsCalls++
	fn := b.SlotsFunc
	rects := append([]game.Rect(nil), b.SlotRects...)
	b.mu.Unlock()

	if fn != nil {
		return fn()
	}
	slots := make([]game.Slot, len(rects))
	for i, r := range rects {
		slots[i] = game.Slot{Rect: r, Stack: game.UnknownStack}
	}
	return slots, nil
}

func (b *Bench) ActionControl() (game.Rect, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ActionErr != nil {
		return game.Rect{}, false, b.ActionErr
	}
	return b.Action, !b.NoAction && !b.Hidden, nil
}

func (b *Bench) ResultSlot() (game.Rect, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Result, !b.NoResult && !b.Hidden, nil
}

// KeyState is a settable KeyStateReader.
type KeyState struct {
	mu   sync.Mutex
	down map[game.Key]bool
}

func (k *KeyState) Set(key game.Key, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.down == nil {
		k.down = make(map[game.Key]bool)
	}
	k.down[key] = down
}

func (k *KeyState) IsKeyDown(key game.Key) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.down[key]
}
