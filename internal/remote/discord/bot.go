package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/reforgehelper/reforge/internal/bot"
	"github.com/reforgehelper/reforge/internal/event"
)

type messageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Controller is the part of the bot controller reachable from chat commands.
type Controller interface {
	Status() bot.Status
	EmergencyStop() bool
}

type Bot struct {
	session    *discordgo.Session
	sender     messageSender
	channelID  string
	controller Controller
	logger     *slog.Logger
}

func NewBot(token, channelID string, controller Controller, logger *slog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Bot{
		session:    dg,
		sender:     dg,
		channelID:  channelID,
		controller: controller,
		logger:     logger,
	}, nil
}

// Start opens the gateway connection and serves chat commands until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onMessageCreated)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord connection: %w", err)
	}
	b.logger.Info("Discord bot connected")

	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) onMessageCreated(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	b.command(m.ChannelID, m.Content)
}

func (b *Bot) command(channelID, content string) {
	if channelID != b.channelID {
		return
	}

	var reply string
	switch strings.TrimSpace(strings.ToLower(content)) {
	case "!status":
		reply = b.controller.Status().Text()
	case "!stop":
		if b.controller.EmergencyStop() {
			reply = "Stopping the reforge session"
		} else {
			reply = "No reforge session is running"
		}
	default:
		return
	}

	if _, err := b.sender.ChannelMessageSend(b.channelID, reply); err != nil {
		b.logger.Warn("Failed to answer Discord command", slog.Any("error", err))
	}
}

// Handle is an event.Handler posting session lifecycle events to the configured channel.
func (b *Bot) Handle(_ context.Context, e event.Event) error {
	msg, ok := format(e)
	if !ok {
		return nil
	}
	_, err := b.sender.ChannelMessageSend(b.channelID, msg)
	return err
}

func format(e event.Event) (string, bool) {
	switch evt := e.(type) {
	case event.SessionStartedEvent:
		return fmt.Sprintf("**Reforge session started** with %d triplets", evt.Triplets), true
	case event.SessionFinishedEvent:
		msg := fmt.Sprintf("**Reforge session finished** (%s) after %d triplets", evt.Reason, evt.Completed)
		if evt.Err != nil {
			msg += fmt.Sprintf("\n```%s```", evt.Err)
		}
		return msg, true
	}
	return "", false
}
