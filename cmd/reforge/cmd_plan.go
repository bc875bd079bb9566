package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reforgehelper/reforge/internal/config"
	"github.com/reforgehelper/reforge/internal/game/hostfile"
	"github.com/reforgehelper/reforge/internal/inventory"
	"github.com/reforgehelper/reforge/internal/triplet"
)

var planCmd = &cobra.Command{
	Use:   "plan [state-file]",
	Short: "Print the triplets a session would reforge, without touching the game",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		path := cfg.Host.StateFile
		if len(args) == 1 {
			path = args[0]
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		cache := inventory.NewCache(hostfile.New(path, "", logger), logger, cfg.Timing.CacheTTL())
		items := cache.Snapshot()
		triplets := triplet.NewFormer(logger).Form(items, cfg)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d items, %d triplets\n", len(items), len(triplets))
		for i, t := range triplets {
			fmt.Fprintf(out, "%3d. %s\n", i+1, t)
		}
		return nil
	},
}
