package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reforgehelper/reforge/internal/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "reforge",
	Short: "Reforging bench helper",
	Long: `reforge groups eligible inventory items into triplets and feeds them through the
reforging bench with humanized input. Press the toggle hotkey in game to start or stop a
session, and the emergency hotkey to abort at once.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd, planCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
