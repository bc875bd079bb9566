package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/reforgehelper/reforge/internal/action"
	"github.com/reforgehelper/reforge/internal/config"
	ct "github.com/reforgehelper/reforge/internal/context"
	"github.com/reforgehelper/reforge/internal/event"
	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/inventory"
	"github.com/reforgehelper/reforge/internal/triplet"
	"github.com/reforgehelper/reforge/internal/utils"
)

// Emitter receives lifecycle events. event.Listener satisfies it.
type Emitter interface {
	Send(e event.Event)
}

type nopEmitter struct{}

func (nopEmitter) Send(event.Event) {}

// Status is a point-in-time view of the controller, safe to serialize.
type Status struct {
	Running      bool   `json:"running"`
	SessionID    string `json:"sessionID,omitempty"`
	State        string `json:"state"`
	Position     int    `json:"position"`
	Total        int    `json:"total"`
	Completed    int    `json:"completed"`
	BenchVisible bool   `json:"benchVisible"`
	LastReason   string `json:"lastReason,omitempty"`
	LastError    string `json:"lastError,omitempty"`
}

// Text is the one-line summary shown while a session runs.
func (s Status) Text() string {
	if !s.Running {
		return "Idle"
	}
	return fmt.Sprintf("Processing triplet %d/%d", s.Position, s.Total)
}

// Controller owns the reforge session lifecycle: hotkeys, bench tracking, and the session loop.
type Controller struct {
	ctx     *ct.Context
	cache   *inventory.Cache
	former  *triplet.Former
	tracker *BenchTracker
	events  Emitter

	hotkeyMu  sync.Mutex
	toggleKey *game.Hotkey
	stopKey   *game.Hotkey

	mu      sync.Mutex
	session *Session
}

func NewController(c *ct.Context, events Emitter) *Controller {
	if events == nil {
		events = nopEmitter{}
	}
	cfg := c.Config()
	ctl := &Controller{
		ctx:     c,
		cache:   inventory.NewCache(c.GameReader, c.Logger, cfg.Timing.CacheTTL()),
		former:  triplet.NewFormer(c.Logger),
		tracker: NewBenchTracker(c.GameReader, c.GameReader, c.Logger, events, cfg.Timing.PollInterval()),
		events:  events,
	}
	ctl.setHotkeys(cfg)
	return ctl
}

func (ctl *Controller) setHotkeys(cfg config.Config) {
	ctl.hotkeyMu.Lock()
	defer ctl.hotkeyMu.Unlock()

	if k, err := game.ParseKey(cfg.Hotkeys.Toggle); err == nil {
		ctl.toggleKey = game.NewHotkey(k)
	} else {
		ctl.ctx.Logger.Warn("Invalid toggle hotkey", slog.String("key", cfg.Hotkeys.Toggle), slog.Any("error", err))
		ctl.toggleKey = nil
	}
	if k, err := game.ParseKey(cfg.Hotkeys.EmergencyStop); err == nil {
		ctl.stopKey = game.NewHotkey(k)
	} else {
		ctl.ctx.Logger.Warn("Invalid emergency stop hotkey", slog.String("key", cfg.Hotkeys.EmergencyStop), slog.Any("error", err))
		ctl.stopKey = nil
	}
}

// SetConfig applies new settings. A running session picks them up at its next step.
func (ctl *Controller) SetConfig(cfg config.Config) {
	ctl.ctx.SetConfig(cfg)
	ctl.cache.SetTTL(cfg.Timing.CacheTTL())
	ctl.tracker.SetInterval(cfg.Timing.PollInterval())
	ctl.setHotkeys(cfg)
	if !cfg.Enabled {
		ctl.Stop(StopCancelled)
	}
}

// Tracker exposes the bench tracker, mainly for the status surface.
func (ctl *Controller) Tracker() *BenchTracker {
	return ctl.tracker
}

// Tick is the periodic entry point. It never panics.
func (ctl *Controller) Tick() {
	defer func() {
		if r := recover(); r != nil {
			ctl.ctx.Logger.Error("Recovered from panic in tick",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	cfg := ctl.ctx.Config()
	if !cfg.Enabled {
		return
	}

	ctl.hotkeyMu.Lock()
	stopPressed := ctl.stopKey != nil && ctl.ctx.Keys != nil && ctl.stopKey.PressedOnce(ctl.ctx.Keys)
	ctl.hotkeyMu.Unlock()
	if stopPressed && ctl.EmergencyStop() {
		ctl.ctx.Logger.Warn("Emergency stop requested")
	}

	if !ctl.ctx.GameReader.IsForeground() {
		return
	}
	ctl.tracker.Poll()

	ctl.hotkeyMu.Lock()
	togglePressed := ctl.toggleKey != nil && ctl.ctx.Keys != nil && ctl.toggleKey.PressedOnce(ctl.ctx.Keys)
	ctl.hotkeyMu.Unlock()
	if togglePressed {
		if err := ctl.Toggle(); err != nil {
			ctl.ctx.Logger.Info("Reforge session not started", slog.String("reason", err.Error()))
		}
	}
}

// Run calls Tick on the configured interval until ctx is done, then stops any session.
func (ctl *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(ctl.ctx.Config().Timing.Tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ctl.Stop(StopCancelled)
			ctl.Wait()
			return nil
		case <-ticker.C:
			ctl.Tick()
		}
	}
}

// Toggle stops a running session or starts a new one.
func (ctl *Controller) Toggle() error {
	if ctl.Stop(StopCancelled) {
		return nil
	}
	return ctl.Start()
}

// EmergencyStop cancels the session and reports whether one was running.
func (ctl *Controller) EmergencyStop() bool {
	return ctl.Stop(StopEmergency)
}

// Stop cancels the running session without waiting for it. It returns false when idle.
func (ctl *Controller) Stop(reason StopReason) bool {
	ctl.mu.Lock()
	s := ctl.session
	ctl.mu.Unlock()

	if s == nil || s.finished() {
		return false
	}
	s.requestStop(reason)
	return true
}

// Wait blocks until the current session, if any, has finished.
func (ctl *Controller) Wait() {
	ctl.mu.Lock()
	s := ctl.session
	ctl.mu.Unlock()
	if s != nil {
		<-s.done
	}
}

func (ctl *Controller) Running() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.session != nil && !ctl.session.finished()
}

// Session returns the current or last session.
func (ctl *Controller) Session() *Session {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.session
}

func (ctl *Controller) Status() Status {
	_, benchVisible := ctl.tracker.Current()
	st := Status{State: StateIdle.String(), BenchVisible: benchVisible}

	ctl.mu.Lock()
	s := ctl.session
	ctl.mu.Unlock()
	if s == nil {
		return st
	}

	running := !s.finished()
	s.mu.Lock()
	defer s.mu.Unlock()
	st.SessionID = s.ID
	st.Completed = s.completed
	if running {
		st.Running = true
		st.State = s.state.String()
		st.Position = min(s.queue.Position(), s.queue.Len())
		st.Total = s.queue.Len()
		return st
	}
	st.LastReason = s.reason.String()
	if s.err != nil {
		st.LastError = s.err.Error()
	}
	return st
}

// Start validates the prerequisites, forms the work queue and launches the session.
func (ctl *Controller) Start() error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.session != nil && !ctl.session.finished() {
		return ErrAlreadyRunning
	}
	if _, ok := ctl.tracker.Current(); !ok {
		return ErrNoBench
	}
	if err := ctl.inventoryOpen(); err != nil {
		return err
	}

	cfg := ctl.ctx.Config()
	ctl.cache.Invalidate()
	ts := ctl.former.Form(ctl.cache.Snapshot(), cfg)
	if len(ts) == 0 {
		return ErrNothingToDo
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := newSession(ts, cancel)
	ctl.session = s

	ctl.ctx.Logger.Info("Starting reforge session", slog.String("session", s.ID), slog.Int("triplets", len(ts)))
	ctl.events.Send(event.SessionStarted(event.WithSession(s.ID, "Reforge session started"), len(ts)))

	go ctl.run(runCtx, s)
	return nil
}

func (ctl *Controller) inventoryOpen() error {
	visible, err := ctl.ctx.GameReader.InventoryVisible()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInventoryClosed, err)
	}
	if !visible {
		return ErrInventoryClosed
	}
	return nil
}

// run drives one session through its states until it reaches StateTerminal.
func (ctl *Controller) run(ctx context.Context, s *Session) {
	defer close(s.done)
	defer s.cancel()
	defer func() {
		if r := recover(); r != nil {
			ctl.ctx.Logger.Error("Recovered from panic in reforge session",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			ctl.finish(s, StopError, fmt.Errorf("panic: %v", r))
		}
	}()

	var (
		bench game.Bench
		cur   triplet.Triplet
	)
	for {
		if ctx.Err() != nil {
			ctl.finish(s, StopNone, ctx.Err())
			return
		}

		switch state := s.State(); state {
		case StatePlacing:
			b, reason, err := ctl.prerequisites()
			if err != nil {
				ctl.finish(s, reason, err)
				return
			}
			bench = b

			s.mu.Lock()
			t, ok := s.queue.Current()
			pos, total := s.queue.Position(), s.queue.Len()
			s.mu.Unlock()
			if !ok {
				s.setState(StateRescanning)
				continue
			}
			cur = t

			ctl.ctx.Logger.Info(fmt.Sprintf("Processing triplet %d/%d", pos, total), slog.String("triplet", cur.String()))
			if err := action.PlaceTriplet(ctx, ctl.ctx, cur); err != nil {
				ctl.finish(s, StopError, err)
				return
			}
			s.markPlaced(cur)
			s.setState(StateCrafting)

		case StateCrafting:
			var err error
			next := StateCollecting
			if cur.Kind == triplet.Stack {
				// The stack loop collects each result itself.
				_, err = action.CraftStacks(ctx, ctl.ctx, bench, ctl.ctx.Config().StackCraft.MaxCycles)
				next = StateAdvancing
			} else {
				err = action.Craft(ctx, ctl.ctx, bench)
			}
			if err != nil {
				if errors.Is(err, action.ErrActionUnavailable) {
					ctl.finish(s, StopActionUnavailable, err)
				} else {
					ctl.finish(s, StopError, err)
				}
				return
			}
			s.setState(next)

		case StateCollecting:
			if err := action.CollectResult(ctx, ctl.ctx, bench); err != nil {
				ctl.finish(s, StopError, err)
				return
			}
			s.setState(StateAdvancing)

		case StateAdvancing:
			ctl.cache.Invalidate()
			s.mu.Lock()
			s.completed++
			pos, total := s.queue.Position(), s.queue.Len()
			more := s.queue.Advance()
			s.mu.Unlock()

			ctl.events.Send(event.TripletCompleted(event.WithSession(s.ID, "Triplet reforged"), pos, total, cur.String()))
			if !more {
				s.setState(StateRescanning)
				continue
			}
			if err := utils.Sleep(ctx, ctl.ctx.Config().Timing.BetweenTriplets()); err != nil {
				ctl.finish(s, StopNone, err)
				return
			}
			s.setState(StatePlacing)

		case StateRescanning:
			if _, reason, err := ctl.prerequisites(); err != nil {
				ctl.finish(s, reason, err)
				return
			}
			ctl.cache.Invalidate()
			formed := ctl.former.Form(ctl.cache.Snapshot(), ctl.ctx.Config())
			ts := s.unplaced(formed)
			if len(ts) == 0 {
				if len(formed) > 0 {
					ctl.ctx.Logger.Warn("Rescan only found items that were already reforged", slog.Int("triplets", len(formed)))
				}
				ctl.finish(s, StopCompleted, nil)
				return
			}
			ctl.ctx.Logger.Info("Rescan found more triplets", slog.Int("triplets", len(ts)))
			s.mu.Lock()
			s.queue.Replace(ts)
			s.mu.Unlock()
			s.setState(StatePlacing)

		default:
			ctl.finish(s, StopError, fmt.Errorf("unexpected session state %s", state))
			return
		}
	}
}

// prerequisites re-checks that the bench and the inventory are still open.
func (ctl *Controller) prerequisites() (game.Bench, StopReason, error) {
	bench, ok := ctl.tracker.Current()
	if !ok {
		return nil, StopBenchLost, ErrNoBench
	}
	if err := ctl.inventoryOpen(); err != nil {
		return nil, StopInventoryClosed, err
	}
	return bench, StopNone, nil
}

// finish moves s to StateTerminal. A context error maps to the reason recorded by Stop.
func (ctl *Controller) finish(s *Session, reason StopReason, err error) {
	s.mu.Lock()
	if errors.Is(err, context.Canceled) || reason == StopNone {
		reason = s.requested
		if reason == StopNone {
			reason = StopCancelled
		}
		err = nil
	}
	s.state = StateTerminal
	s.reason = reason
	s.err = err
	completed := s.completed
	s.queue.Replace(nil)
	s.mu.Unlock()

	logger := ctl.ctx.Logger.With(slog.String("session", s.ID), slog.String("reason", reason.String()), slog.Int("completed", completed))
	switch {
	case err != nil:
		logger.Error("Reforge session stopped", slog.Any("error", err))
	case reason == StopCompleted:
		logger.Info("Reforge session completed")
	default:
		logger.Info("Reforge session stopped")
	}
	ctl.events.Send(event.SessionFinished(event.WithSession(s.ID, "Reforge session finished"), reason.String(), completed, err))
}
