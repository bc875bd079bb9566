package bot

import (
	"log/slog"
	"sync"
	"time"

	ct "github.com/reforgehelper/reforge/internal/context"
	"github.com/reforgehelper/reforge/internal/event"
	"github.com/reforgehelper/reforge/internal/game"
)

// BenchTracker remembers the reforge bench between polls. Lookups are rate limited because
// walking the UI tree is expensive.
type BenchTracker struct {
	locator ct.BenchLocator
	window  ct.Window
	logger  *slog.Logger
	events  Emitter
	now     func() time.Time

	mu       sync.RWMutex
	interval time.Duration
	bench    game.Bench
	lastPoll time.Time
	polled   bool
}

func NewBenchTracker(locator ct.BenchLocator, window ct.Window, logger *slog.Logger, events Emitter, interval time.Duration) *BenchTracker {
	return &BenchTracker{
		locator:  locator,
		window:   window,
		logger:   logger,
		events:   events,
		now:      time.Now,
		interval: interval,
	}
}

func (t *BenchTracker) SetInterval(d time.Duration) {
	t.mu.Lock()
	t.interval = d
	t.mu.Unlock()
}

// Poll refreshes the bench reference. Outside a safe zone the reference is dropped at once.
func (t *BenchTracker) Poll() {
	if !t.window.IsSafeZone() {
		t.drop("left safe zone")
		return
	}

	t.mu.Lock()
	now := t.now()
	if t.polled && now.Sub(t.lastPoll) < t.interval {
		t.mu.Unlock()
		return
	}
	t.lastPoll = now
	t.polled = true
	t.mu.Unlock()

	bench, found, err := t.locator.LocateBench()
	if err != nil {
		t.logger.Debug("Bench lookup failed", slog.Any("error", err))
		return
	}
	if !found || !bench.Visible() {
		t.drop("no longer visible")
		return
	}

	t.mu.Lock()
	isNew := t.bench == nil
	t.bench = bench
	t.mu.Unlock()

	if isNew {
		t.logger.Info("Found reforge bench")
		t.events.Send(event.BenchFound(event.Text("Reforge bench found")))
	}
}

func (t *BenchTracker) drop(reason string) {
	t.mu.Lock()
	had := t.bench != nil
	t.bench = nil
	t.mu.Unlock()

	if had {
		t.logger.Info("Reforge bench lost", slog.String("reason", reason))
		t.events.Send(event.BenchLost(event.Text("Reforge bench lost"), reason))
	}
}

// Current returns the tracked bench while it is still visible.
func (t *BenchTracker) Current() (game.Bench, bool) {
	t.mu.RLock()
	b := t.bench
	t.mu.RUnlock()
	if b == nil || !b.Visible() {
		return nil, false
	}
	return b, true
}
