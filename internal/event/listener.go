package event

import (
	"context"
	"log/slog"
	"sync"
)

type Handler func(ctx context.Context, e Event) error

// Listener fans events out to the registered handlers from a single goroutine.
type Listener struct {
	logger *slog.Logger
	events chan Event

	mu       sync.RWMutex
	handlers []Handler
}

func NewListener(logger *slog.Logger, buffer int) *Listener {
	return &Listener{
		logger: logger,
		events: make(chan Event, buffer),
	}
}

func (l *Listener) Register(h Handler) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// Send queues e without blocking. When the queue is full the event is dropped.
func (l *Listener) Send(e Event) {
	select {
	case l.events <- e:
	default:
		l.logger.Warn("Event queue full, dropping event", slog.String("event", e.Message()))
	}
}

// Listen dispatches queued events until ctx is done. Handler errors are logged.
func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-l.events:
			l.mu.RLock()
			handlers := append([]Handler(nil), l.handlers...)
			l.mu.RUnlock()

			for _, h := range handlers {
				if err := h(ctx, e); err != nil {
					l.logger.Warn("Event handler failed", slog.String("event", e.Message()), slog.Any("error", err))
				}
			}
		}
	}
}
