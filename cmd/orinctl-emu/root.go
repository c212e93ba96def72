package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/NathanHowell/orinctl/emulator"
	"github.com/NathanHowell/orinctl/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "orinctl-emu",
	Short: "Host-side emulator for the Orin strap controller",
	Long: `orinctl-emu is the host-side rendition of the Orin controller core.

It exposes the same REPL grammar as the firmware over stdin/stdout and is
used for transcript capture and regression evidence.

Commands:
  repl     Interactive operator console with Tab completion
  capture  Replay a scripted exchange into a transcript file`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig resolves the effective emulator configuration and applies
// the logging level.
func loadConfig() (emulator.Config, error) {
	cfg := emulator.DefaultConfig()
	if cfgFile != "" {
		loaded, err := emulator.LoadConfig(cfgFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logging.LevelDebug
	}
	logging.SetDefault(logging.New(level, os.Stderr))

	return cfg, nil
}
