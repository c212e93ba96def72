package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/NathanHowell/orinctl/emulator"
	"github.com/NathanHowell/orinctl/internal/logging"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run the interactive operator console",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		options := &emulator.SessionOptions{Logger: logging.Default()}
		if cfg.TranscriptPath != "" {
			transcript, err := emulator.NewTranscript(cfg.TranscriptPath)
			if err != nil {
				return err
			}
			defer transcript.Close()
			options.Transcript = transcript
			logging.Info("transcript capture enabled",
				"path", cfg.TranscriptPath, "session", transcript.SessionID())
		}

		session, err := emulator.NewSession(cfg, options)
		if err != nil {
			return err
		}

		console := emulator.NewConsole(session)
		return console.Run(os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
