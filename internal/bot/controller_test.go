package bot

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/reforgehelper/reforge/internal/config"
	ct "github.com/reforgehelper/reforge/internal/context"
	"github.com/reforgehelper/reforge/internal/event"
	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/game/gametest"
	"github.com/reforgehelper/reforge/internal/item"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Send(e event.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Message())
	}
	return out
}

type harness struct {
	ctl    *Controller
	sink   *gametest.Sink
	bench  *gametest.Bench
	reader *gametest.Reader
	keys   *gametest.KeyState
	events *recorder
}

func newHarness(items ...item.RawItem) *harness {
	cfg := config.Default()
	cfg.Timing = config.Timing{TickInterval: 1}

	h := &harness{
		sink:   &gametest.Sink{},
		bench:  gametest.NewBench(),
		keys:   &gametest.KeyState{},
		events: &recorder{},
	}
	h.reader = gametest.NewReader(h.bench, items...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := ct.New(logger, h.reader, game.NewHID(h.sink, game.Pacing{}), h.keys, cfg)
	h.ctl = NewController(c, h.events)
	return h
}

// ready polls the bench so a session can start.
func (h *harness) ready(t *testing.T) {
	h.ctl.Tick()
	_, ok := h.ctl.Tracker().Current()
	require.True(t, ok)
}

// onActionClick runs fn every time the reforge control is pressed, with the press count.
func (h *harness) onActionClick(fn func(n int)) {
	n := 0
	h.sink.OnMouseDown = func(int) {
		if h.sink.CursorPosition() == h.bench.Action.Center() {
			n++
			fn(n)
		}
	}
}

func rings(first item.Handle, n int) []item.RawItem {
	var out []item.RawItem
	for i := 0; i < n; i++ {
		h := first + item.Handle(i)
		out = append(out, gametest.Raw(h, "Ruby Ring", 70, item.RarityRare, game.Rect{X: 100 + 50*int(h), Y: 700, Width: 40, Height: 40}))
	}
	return out
}

func TestStartWithoutBenchIssuesNoInput(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.reader.Bench = nil

	h.ctl.Tick()
	require.ErrorIs(t, h.ctl.Start(), ErrNoBench)

	assert.Empty(t, h.sink.Actions())
	assert.False(t, h.ctl.Running())
	assert.Equal(t, "idle", h.ctl.Status().State)
}

func TestStartRequiresInventoryAndTriplets(t *testing.T) {
	h := newHarness(rings(1, 2)...)
	h.ready(t)

	require.ErrorIs(t, h.ctl.Start(), ErrNothingToDo)

	h.reader.SetInventory(false)
	require.ErrorIs(t, h.ctl.Start(), ErrInventoryClosed)
	assert.Empty(t, h.sink.Actions())
}

func TestSessionCompletesSingleTriplet(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.onActionClick(func(int) { h.reader.SetItems() })

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	s := h.ctl.Session()
	reason, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, StopCompleted, reason)
	assert.Equal(t, 1, s.Completed())
	assert.Equal(t, StateTerminal, s.State())

	assert.Equal(t, []game.Point{
		{X: 170, Y: 720}, {X: 220, Y: 720}, {X: 270, Y: 720},
		h.bench.Action.Center(),
		h.bench.Result.Center(),
	}, h.sink.ClickPoints())
	assert.Equal(t, h.sink.Count(gametest.ActionKeyDown), h.sink.Count(gametest.ActionKeyUp))

	assert.Equal(t, []string{
		"Reforge bench found",
		"Reforge session started",
		"Triplet reforged",
		"Reforge session finished",
	}, h.events.messages())
}

func TestCancelAfterFirstItemStopsImmediately(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.sink.OnMouseDown = func(clicks int) {
		if clicks == 1 {
			assert.True(t, h.ctl.Stop(StopCancelled))
		}
	}

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	reason, err := h.ctl.Session().Result()
	require.NoError(t, err)
	assert.Equal(t, StopCancelled, reason)
	assert.Len(t, h.sink.ClickPoints(), 1)
	assert.Equal(t, 1, h.sink.Count(gametest.ActionMouseUp))
	assert.Equal(t, 1, h.sink.Count(gametest.ActionKeyUp), "modifier must be released")
	assert.False(t, h.ctl.Stop(StopCancelled), "nothing left to stop")
}

func TestEmergencyHotkeyStopsSession(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	stopKey, err := game.ParseKey("F7")
	require.NoError(t, err)
	h.sink.OnMouseDown = func(clicks int) {
		if clicks == 2 {
			h.keys.Set(stopKey, true)
			h.ctl.Tick()
		}
	}

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	reason, _ := h.ctl.Session().Result()
	assert.Equal(t, StopEmergency, reason)
	assert.Len(t, h.sink.ClickPoints(), 2)
}

func TestToggleHotkeyStartsSession(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.onActionClick(func(int) { h.reader.SetItems() })

	toggle, err := game.ParseKey("F6")
	require.NoError(t, err)
	h.keys.Set(toggle, true)
	h.ctl.Tick()
	require.NotNil(t, h.ctl.Session())
	h.ctl.Wait()

	// Holding the key does not start another session.
	h.ctl.Tick()
	reason, _ := h.ctl.Session().Result()
	assert.Equal(t, StopCompleted, reason)
}

func TestRescanContinuesWithNewTriplets(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.onActionClick(func(n int) {
		if n == 1 {
			h.reader.SetItems(rings(10, 3)...)
			return
		}
		h.reader.SetItems()
	})

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	s := h.ctl.Session()
	reason, _ := s.Result()
	assert.Equal(t, StopCompleted, reason)
	assert.Equal(t, 2, s.Completed())
	assert.Len(t, h.sink.ClickPoints(), 10)
}

func TestBenchLostBetweenTriplets(t *testing.T) {
	h := newHarness(rings(1, 6)...)
	h.ready(t)
	h.onActionClick(func(int) { h.bench.SetHidden(true) })

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	s := h.ctl.Session()
	reason, err := s.Result()
	assert.Equal(t, StopBenchLost, reason)
	assert.ErrorIs(t, err, ErrNoBench)
	assert.Equal(t, 1, s.Completed())
	// Three placements and the control press. The hidden result slot is skipped.
	assert.Len(t, h.sink.ClickPoints(), 4)
}

func TestInventoryClosedBetweenTriplets(t *testing.T) {
	h := newHarness(rings(1, 6)...)
	h.ready(t)
	h.onActionClick(func(int) { h.reader.SetInventory(false) })

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	reason, err := h.ctl.Session().Result()
	assert.Equal(t, StopInventoryClosed, reason)
	assert.ErrorIs(t, err, ErrInventoryClosed)
	assert.Len(t, h.sink.ClickPoints(), 5)
}

func TestMissingControlStopsSession(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.bench.SetNoAction(true)

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	reason, err := h.ctl.Session().Result()
	assert.Equal(t, StopActionUnavailable, reason)
	assert.Error(t, err)
	assert.Len(t, h.sink.ClickPoints(), 3)
}

func TestStartWhileRunning(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)

	h.onActionClick(func(int) { h.reader.SetItems() })
	clearItems := h.sink.OnMouseDown

	var startErr error
	var status Status
	h.sink.OnMouseDown = func(clicks int) {
		if clicks == 1 {
			startErr = h.ctl.Start()
			status = h.ctl.Status()
		}
		clearItems(clicks)
	}

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	assert.ErrorIs(t, startErr, ErrAlreadyRunning)
	assert.True(t, status.Running)
	assert.Equal(t, "Processing triplet 1/1", status.Text())
	assert.Equal(t, "placing", status.State)

	final := h.ctl.Status()
	assert.False(t, final.Running)
	assert.Equal(t, "completed", final.LastReason)
	assert.Equal(t, "Idle", final.Text())
}

func TestPanicInSessionIsContained(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.sink.OnMouseDown = func(int) { panic("host exploded") }

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	reason, err := h.ctl.Session().Result()
	assert.Equal(t, StopError, reason)
	assert.ErrorContains(t, err, "host exploded")
	assert.Equal(t, 1, h.sink.Count(gametest.ActionKeyUp))
}

func TestTickOutsideForegroundDoesNothing(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.reader.SetForeground(false)

	h.ctl.Tick()
	_, ok := h.ctl.Tracker().Current()
	assert.False(t, ok)
	assert.Zero(t, h.reader.LocateCalls)
}

func TestDisabledConfigStopsSession(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.sink.OnMouseDown = func(clicks int) {
		if clicks == 1 {
			cfg := config.Default()
			cfg.Timing = config.Timing{TickInterval: 1}
			cfg.Enabled = false
			h.ctl.SetConfig(cfg)
		}
	}

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	reason, _ := h.ctl.Session().Result()
	assert.Equal(t, StopCancelled, reason)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, h.ctl.Run(ctx))
	assert.Positive(t, h.reader.LocateCalls)
}

func TestRescanIgnoresItemsAlreadyReforged(t *testing.T) {
	// The bench rejects the craft silently, so the inventory never changes.
	h := newHarness(rings(1, 3)...)
	h.ready(t)

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	s := h.ctl.Session()
	reason, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, StopCompleted, reason)
	assert.Equal(t, 1, s.Completed())
	assert.Len(t, h.sink.ClickPoints(), 5)
}

func TestRescanChecksInventoryStillOpen(t *testing.T) {
	h := newHarness(rings(1, 3)...)
	h.ready(t)
	h.onActionClick(func(int) { h.reader.SetInventory(false) })

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	reason, err := h.ctl.Session().Result()
	assert.Equal(t, StopInventoryClosed, reason)
	assert.ErrorIs(t, err, ErrInventoryClosed)
	assert.Equal(t, 1, h.ctl.Session().Completed())
}

func TestStackAndDiscreteTripletsInOneSession(t *testing.T) {
	stack := gametest.Raw(50, "Liquid Envy", 1, item.RarityNormal, game.Rect{X: 100, Y: 600, Width: 40, Height: 40})
	stack.StackSize = 9
	h := newHarness(append([]item.RawItem{stack}, rings(1, 3)...)...)
	h.ready(t)

	units := 4
	h.bench.SlotsFunc = func() ([]game.Slot, error) {
		slots := make([]game.Slot, len(h.bench.SlotRects))
		for i, r := range h.bench.SlotRects {
			slots[i] = game.Slot{Rect: r, Occupied: units > 0, Stack: units}
		}
		return slots, nil
	}
	h.onActionClick(func(n int) {
		if n == 1 {
			units -= 3
			return
		}
		// The rings are consumed; the stack comes back unchanged.
		h.reader.SetItems(stack)
	})

	require.NoError(t, h.ctl.Start())
	h.ctl.Wait()

	s := h.ctl.Session()
	reason, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, StopCompleted, reason)
	assert.Equal(t, 2, s.Completed())

	stackAt := game.Point{X: 120, Y: 620}
	slots := h.bench.SlotRects
	assert.Equal(t, []game.Point{
		stackAt, stackAt, stackAt,
		h.bench.Action.Center(),
		h.bench.Result.Center(),
		slots[0].Center(), slots[1].Center(), slots[2].Center(),
		{X: 170, Y: 720}, {X: 220, Y: 720}, {X: 270, Y: 720},
		h.bench.Action.Center(),
		h.bench.Result.Center(),
	}, h.sink.ClickPoints())
}
