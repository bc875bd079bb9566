package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/reforgehelper/reforge/internal/utils"
)

// InputSink is the raw input injection primitive. Calls are synchronous and never wait.
type InputSink interface {
	CursorPosition() Point
	SetCursorPosition(p Point)
	MouseDown(b MouseButton)
	MouseUp(b MouseButton)
	KeyDown(k Key)
	KeyUp(k Key)
}

// Pacing holds the delays used to emulate a human operator. Zero values disable a wait but keep
// its cancellation checkpoint.
type Pacing struct {
	SpeedVariance int
	ClickDelay    time.Duration
	MovementPause time.Duration
	ModifierHold  time.Duration
	PressMin      time.Duration
	PressMax      time.Duration
	StepMin       time.Duration
	StepMax       time.Duration
	Settle        time.Duration
	Jitter        float64
}

func DefaultPacing() Pacing {
	return Pacing{
		SpeedVariance: 20,
		ClickDelay:    150 * time.Millisecond,
		MovementPause: 100 * time.Millisecond,
		ModifierHold:  50 * time.Millisecond,
		PressMin:      15 * time.Millisecond,
		PressMax:      30 * time.Millisecond,
		StepMin:       2 * time.Millisecond,
		StepMax:       5 * time.Millisecond,
		Settle:        25 * time.Millisecond,
		Jitter:        1.25,
	}
}

const (
	minMoveSteps  = 8
	maxMoveSteps  = 20
	pixelsPerStep = 15
)

// HID drives an InputSink at human pace. Every move step, click and wait checks ctx first.
type HID struct {
	sink InputSink

	mu     sync.Mutex
	rnd    *rand.Rand
	pacing Pacing
}

func NewHID(sink InputSink, pacing Pacing) *HID {
	return &HID{
		sink:   sink,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		pacing: pacing,
	}
}

func (h *HID) SetPacing(p Pacing) {
	h.mu.Lock()
	h.pacing = p
	h.mu.Unlock()
}

func (h *HID) Pacing() Pacing {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pacing
}

func (h *HID) randomDuration(min, max time.Duration) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return utils.Vary(h.rnd, utils.RandomDuration(h.rnd, min, max), h.pacing.SpeedVariance)
}

func (h *HID) vary(d time.Duration) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return utils.Vary(h.rnd, d, h.pacing.SpeedVariance)
}

func (h *HID) jitter(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rnd.Float64()*2*amount - amount
}

// Sleep waits d scaled by the configured speed variance.
func (h *HID) Sleep(ctx context.Context, d time.Duration) error {
	return utils.Sleep(ctx, h.vary(d))
}

// MovePointer glides the cursor to target through interpolated, slightly jittered steps.
func (h *HID) MovePointer(ctx context.Context, target Point) error {
	p := h.Pacing()
	from := h.sink.CursorPosition()
	steps := utils.Clamp(int(Distance(from, target)/pixelsPerStep), minMoveSteps, maxMoveSteps)

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := float64(i+1) / float64(steps)
		x, y := lerp(from, target, t)
		h.sink.SetCursorPosition(Point{
			X: int(x + h.jitter(p.Jitter)),
			Y: int(y + h.jitter(p.Jitter)),
		})
		if err := utils.Sleep(ctx, h.randomDuration(p.StepMin, p.StepMax)); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	h.sink.SetCursorPosition(target)
	return utils.Sleep(ctx, p.Settle)
}

// Click presses and releases btn at the current cursor position. Once the button is down the
// release is always sent.
func (h *HID) Click(ctx context.Context, btn MouseButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := h.Pacing()

	h.sink.MouseDown(btn)
	err := utils.Sleep(ctx, h.randomDuration(p.PressMin, p.PressMax))
	h.sink.MouseUp(btn)
	if err != nil {
		return err
	}

	return utils.Sleep(ctx, h.vary(p.ClickDelay))
}

// MoveAndClick moves to target and clicks it.
func (h *HID) MoveAndClick(ctx context.Context, btn MouseButton, target Point) error {
	if err := h.MovePointer(ctx, target); err != nil {
		return err
	}
	return h.Click(ctx, btn)
}

// ClickWithModifier moves to target, holds key, clicks and releases key. The modifier is released
// even when ctx is cancelled while it is held.
func (h *HID) ClickWithModifier(ctx context.Context, btn MouseButton, target Point, key Key) error {
	if err := h.MovePointer(ctx, target); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p := h.Pacing()

	h.sink.KeyDown(key)
	defer h.sink.KeyUp(key)

	if err := utils.Sleep(ctx, h.vary(p.ModifierHold)); err != nil {
		return err
	}
	if err := h.Click(ctx, btn); err != nil {
		return err
	}
	return utils.Sleep(ctx, h.vary(p.ModifierHold))
}

// Pause waits the configured pause between movements.
func (h *HID) Pause(ctx context.Context) error {
	return h.Sleep(ctx, h.Pacing().MovementPause)
}
