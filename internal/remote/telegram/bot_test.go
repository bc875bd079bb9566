package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforgehelper/reforge/internal/event"
)

type fakeAPI struct {
	msgs []tgbotapi.MessageConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.msgs = append(f.msgs, m)
	}
	return tgbotapi.Message{}, nil
}

func TestHandleSendsOnlyRelevantEvents(t *testing.T) {
	api := &fakeAPI{}
	b := &Bot{api: api, chatID: 42, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, b.Handle(context.Background(), event.SessionStarted(event.WithSession("id", "started"), 3)))
	require.NoError(t, b.Handle(context.Background(), event.SessionFinished(event.WithSession("id", "done"), "completed", 3, nil)))
	require.NoError(t, b.Handle(context.Background(), event.BenchLost(event.Text("lost"), "left safe zone")))

	require.Len(t, api.msgs, 2)
	assert.Equal(t, int64(42), api.msgs[0].ChatID)
	assert.Equal(t, "Reforge session finished: completed, 3 triplets done", api.msgs[0].Text)
	assert.Equal(t, "Reforge bench lost: left safe zone", api.msgs[1].Text)
}
