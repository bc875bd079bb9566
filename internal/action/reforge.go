package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	ct "github.com/reforgehelper/reforge/internal/context"
	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/triplet"
)

var ErrActionUnavailable = errors.New("reforge control not available")

// PlaceTriplet quick-moves the three items of t onto the bench, in order. A stack triplet clicks
// the same stack three times.
func PlaceTriplet(ctx context.Context, c *ct.Context, t triplet.Triplet) error {
	for i, it := range t.Items {
		if err := c.HID.ClickWithModifier(ctx, game.LeftButton, it.Rect.Center(), game.CtrlKey); err != nil {
			return err
		}
		c.Logger.Debug("Moved item to the reforge bench",
			slog.Int("slot", i+1),
			slog.String("item", it.String()),
		)
		if err := c.HID.Pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

// PressAction clicks the reforge control. ErrActionUnavailable means the control is not shown.
func PressAction(ctx context.Context, c *ct.Context, bench game.Bench) error {
	rect, ok, err := bench.ActionControl()
	if err != nil {
		return fmt.Errorf("locating reforge control: %w", err)
	}
	if !ok {
		return ErrActionUnavailable
	}

	c.Logger.Debug("Clicking the reforge button", slog.Int("x", rect.Center().X), slog.Int("y", rect.Center().Y))
	return c.HID.MoveAndClick(ctx, game.LeftButton, rect.Center())
}

// Craft presses the reforge control once and waits for the result.
func Craft(ctx context.Context, c *ct.Context, bench game.Bench) error {
	if err := PressAction(ctx, c, bench); err != nil {
		return err
	}
	return c.HID.Sleep(ctx, c.Config().Timing.Craft())
}

// CollectResult quick-moves the produced item back to the inventory. A missing result slot is
// logged and tolerated: the craft may have failed silently or the result already merged.
func CollectResult(ctx context.Context, c *ct.Context, bench game.Bench) error {
	rect, ok, err := bench.ResultSlot()
	if err != nil {
		c.Logger.Warn("Could not read the result slot", slog.Any("error", err))
		return nil
	}
	if !ok {
		c.Logger.Debug("No result item found to move")
		return nil
	}

	if err := c.HID.ClickWithModifier(ctx, game.LeftButton, rect.Center(), game.CtrlKey); err != nil {
		return err
	}
	c.Logger.Debug("Result item moved to the next open inventory slot")
	return nil
}

// CraftStacks repeats craft and collect while every bench slot still holds a full stack, then
// returns the leftovers to the inventory. It stops after maxCycles crafts, when a slot runs short,
// when the control disappears, or when the bench cannot report stack sizes.
func CraftStacks(ctx context.Context, c *ct.Context, bench game.Bench, maxCycles int) (int, error) {
	cycles := 0
	for cycles < maxCycles {
		if err := Craft(ctx, c, bench); err != nil {
			if errors.Is(err, ErrActionUnavailable) && cycles > 0 {
				c.Logger.Debug("Reforge control gone, ending stack loop", slog.Int("cycles", cycles))
				break
			}
			return cycles, err
		}
		cycles++

		if err := CollectResult(ctx, c, bench); err != nil {
			return cycles, err
		}

		slots, err := bench.Slots()
		if err != nil {
			return cycles, fmt.Errorf("reading bench slots: %w", err)
		}
		if ok, reason := slotsSupplied(slots); !ok {
			c.Logger.Debug("Ending stack loop", slog.String("reason", reason), slog.Int("cycles", cycles))
			break
		}
	}
	if cycles >= maxCycles {
		c.Logger.Warn("Stack loop reached its cycle limit", slog.Int("cycles", cycles))
	}

	return cycles, ClearBench(ctx, c, bench)
}

func slotsSupplied(slots []game.Slot) (bool, string) {
	if len(slots) == 0 {
		return false, "no bench slots"
	}
	for _, s := range slots {
		if s.Stack == game.UnknownStack {
			return false, "stack size unavailable"
		}
		if s.Stack < triplet.Size {
			return false, "slot under-supplied"
		}
	}
	return true, ""
}

// ClearBench quick-moves every occupied slot back to the inventory.
func ClearBench(ctx context.Context, c *ct.Context, bench game.Bench) error {
	slots, err := bench.Slots()
	if err != nil {
		return fmt.Errorf("reading bench slots: %w", err)
	}
	for i, s := range slots {
		if !s.Occupied {
			continue
		}
		if err := c.HID.ClickWithModifier(ctx, game.LeftButton, s.Rect.Center(), game.CtrlKey); err != nil {
			return err
		}
		c.Logger.Debug("Cleared bench slot", slog.Int("slot", i+1))
	}
	return nil
}
