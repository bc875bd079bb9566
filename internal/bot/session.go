package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/reforgehelper/reforge/internal/item"
	"github.com/reforgehelper/reforge/internal/triplet"
)

var (
	ErrNoBench         = errors.New("reforge bench is not open")
	ErrInventoryClosed = errors.New("inventory is not open")
	ErrNothingToDo     = errors.New("no triplets could be formed from the inventory")
	ErrAlreadyRunning  = errors.New("a reforge session is already running")
)

type State int

const (
	StateIdle State = iota
	StatePlacing
	StateCrafting
	StateCollecting
	StateAdvancing
	StateRescanning
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StatePlacing:
		return "placing"
	case StateCrafting:
		return "crafting"
	case StateCollecting:
		return "collecting"
	case StateAdvancing:
		return "advancing"
	case StateRescanning:
		return "rescanning"
	case StateTerminal:
		return "terminal"
	}
	return "idle"
}

type StopReason int

const (
	StopNone StopReason = iota
	StopCompleted
	StopCancelled
	StopEmergency
	StopBenchLost
	StopInventoryClosed
	StopActionUnavailable
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopCompleted:
		return "completed"
	case StopCancelled:
		return "cancelled"
	case StopEmergency:
		return "emergency stop"
	case StopBenchLost:
		return "bench closed"
	case StopInventoryClosed:
		return "inventory closed"
	case StopActionUnavailable:
		return "reforge control unavailable"
	case StopError:
		return "error"
	}
	return ""
}

// WorkQueue is the ordered list of triplets for a session and the position of the one in progress.
type WorkQueue struct {
	triplets []triplet.Triplet
	cursor   int
}

func NewWorkQueue(ts []triplet.Triplet) *WorkQueue {
	return &WorkQueue{triplets: ts}
}

func (q *WorkQueue) Current() (triplet.Triplet, bool) {
	if q.cursor >= len(q.triplets) {
		return triplet.Triplet{}, false
	}
	return q.triplets[q.cursor], true
}

// Advance moves past the current triplet and reports whether another one is pending.
func (q *WorkQueue) Advance() bool {
	if q.cursor < len(q.triplets) {
		q.cursor++
	}
	return q.cursor < len(q.triplets)
}

// Replace discards whatever is left and starts over with ts.
func (q *WorkQueue) Replace(ts []triplet.Triplet) {
	q.triplets = ts
	q.cursor = 0
}

func (q *WorkQueue) Remaining() int {
	return len(q.triplets) - q.cursor
}

// Position is the 1-based index of the current triplet.
func (q *WorkQueue) Position() int {
	return q.cursor + 1
}

func (q *WorkQueue) Len() int {
	return len(q.triplets)
}

// Session is one run of the reforge loop, from Start until it reaches StateTerminal.
type Session struct {
	ID string

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	state     State
	queue     *WorkQueue
	completed int
	requested StopReason
	reason    StopReason
	err       error

	// placed maps every handle put on the bench to its stack size at that time.
	placed map[item.Handle]int
}

func newSession(ts []triplet.Triplet, cancel context.CancelFunc) *Session {
	return &Session{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StatePlacing,
		queue:  NewWorkQueue(ts),
		placed: make(map[item.Handle]int),
	}
}

func (s *Session) markPlaced(t triplet.Triplet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range t.Items {
		s.placed[it.Handle] = it.StackSize
	}
}

// unplaced drops the triplets this session already reforged. A discrete triplet is stale when all
// its items were placed before; a stack triplet when its stack has not shrunk since.
func (s *Session) unplaced(ts []triplet.Triplet) []triplet.Triplet {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []triplet.Triplet
	for _, t := range ts {
		if t.Kind == triplet.Stack {
			if size, ok := s.placed[t.Items[0].Handle]; ok && t.Items[0].StackSize >= size {
				continue
			}
			out = append(out, t)
			continue
		}

		seen := 0
		for _, it := range t.Items {
			if _, ok := s.placed[it.Handle]; ok {
				seen++
			}
		}
		if seen < len(t.Items) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session goroutine has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// finished reports whether the session reached StateTerminal, even if its goroutine is still
// unwinding.
func (s *Session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateTerminal
}

// requestStop records why the session is being cancelled. The first request wins.
func (s *Session) requestStop(reason StopReason) {
	s.mu.Lock()
	if s.requested == StopNone {
		s.requested = reason
	}
	s.mu.Unlock()
	s.cancel()
}

// Result returns the stop reason and the error that ended the session, if any.
func (s *Session) Result() (StopReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason, s.err
}

func (s *Session) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
