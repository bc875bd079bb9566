package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestListenerDispatchesToAllHandlers(t *testing.T) {
	l := NewListener(slog.New(slog.NewTextHandler(io.Discard, nil)), 8)

	var mu sync.Mutex
	var got []string
	wg := sync.WaitGroup{}
	wg.Add(2)
	l.Register(func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, "a:"+e.Message())
		mu.Unlock()
		wg.Done()
		return errors.New("ignored")
	})
	l.Register(func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, "b:"+e.Message())
		mu.Unlock()
		wg.Done()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Listen(ctx) }()

	l.Send(SessionStarted(WithSession("s1", "started"), 4))
	wg.Wait()
	cancel()
	require.NoError(t, <-done)

	assert.ElementsMatch(t, []string{"a:started", "b:started"}, got)
}

func TestSendDropsWhenFull(t *testing.T) {
	l := NewListener(slog.New(slog.NewTextHandler(io.Discard, nil)), 1)
	l.Send(Text("one"))

	sent := make(chan struct{})
	go func() {
		l.Send(Text("two"))
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}
	assert.Len(t, l.events, 1)
}
