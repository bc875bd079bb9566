package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/reforgehelper/reforge/internal/event"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
	logger *slog.Logger
}

func NewBot(token string, chatID int64, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating Telegram bot: %w", err)
	}
	logger.Info("Telegram bot authorized", slog.String("account", api.Self.UserName))

	return &Bot{api: api, chatID: chatID, logger: logger}, nil
}

// Handle is an event.Handler sending session results and failures to the configured chat.
func (b *Bot) Handle(_ context.Context, e event.Event) error {
	var text string
	switch evt := e.(type) {
	case event.SessionFinishedEvent:
		text = fmt.Sprintf("Reforge session finished: %s, %d triplets done", evt.Reason, evt.Completed)
		if evt.Err != nil {
			text += "\n" + evt.Err.Error()
		}
	case event.BenchLostEvent:
		text = "Reforge bench lost: " + evt.Reason
	default:
		return nil
	}

	_, err := b.api.Send(tgbotapi.NewMessage(b.chatID, text))
	return err
}
