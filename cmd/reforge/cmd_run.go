package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reforgehelper/reforge/internal/bot"
	"github.com/reforgehelper/reforge/internal/config"
	ct "github.com/reforgehelper/reforge/internal/context"
	"github.com/reforgehelper/reforge/internal/event"
	"github.com/reforgehelper/reforge/internal/game"
	"github.com/reforgehelper/reforge/internal/game/hostfile"
	rlog "github.com/reforgehelper/reforge/internal/log"
	"github.com/reforgehelper/reforge/internal/remote/discord"
	"github.com/reforgehelper/reforge/internal/remote/telegram"
	"github.com/reforgehelper/reforge/internal/server"
)

var logDir string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the hotkeys and run reforge sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func init() {
	runCmd.Flags().StringVar(&logDir, "log-dir", "logs", "directory for the log file, empty to log to stdout only")
}

func run(ctx context.Context) error {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(configPath, config.Default()); err != nil {
			return fmt.Errorf("error writing default config: %w", err)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := rlog.New(cfg.Debug || verbose, logDir)
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	defer logger.Close()

	sink, err := game.NewSystemSink(logger.Logger)
	if err != nil {
		return err
	}

	reader := hostfile.New(cfg.Host.StateFile, cfg.Host.ProcessName, logger.Logger)
	hid := game.NewHID(sink, cfg.Pacing())
	c := ct.New(logger.Logger, reader, hid, sink, cfg)

	listener := event.NewListener(logger.Logger, 64)
	ctl := bot.NewController(c, listener)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Status.Enabled {
		srv := server.New(logger.Logger, ctl)
		listener.Register(srv.HandleEvent)
		g.Go(func() error {
			return srv.Listen(ctx, cfg.Status.Listen)
		})
	}

	if cfg.Discord.Enabled {
		dBot, err := discord.NewBot(cfg.Discord.Token, cfg.Discord.ChannelID, ctl, logger.Logger)
		if err != nil {
			return err
		}
		listener.Register(dBot.Handle)
		g.Go(func() error {
			return dBot.Start(ctx)
		})
	}

	if cfg.Telegram.Enabled {
		tBot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, logger.Logger)
		if err != nil {
			return err
		}
		listener.Register(tBot.Handle)
	}

	g.Go(func() error {
		return listener.Listen(ctx)
	})
	g.Go(func() error {
		return config.Watch(ctx, configPath, logger.Logger, func(next config.Config) {
			logger.Info("Configuration reloaded")
			logger.SetDebug(next.Debug || verbose)
			ctl.SetConfig(next)
		})
	})
	g.Go(func() error {
		return ctl.Run(ctx)
	})

	logger.Info("Reforge helper ready",
		slog.String("toggle", cfg.Hotkeys.Toggle),
		slog.String("emergencyStop", cfg.Hotkeys.EmergencyStop),
	)
	return g.Wait()
}
