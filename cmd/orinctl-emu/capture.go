package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NathanHowell/orinctl/emulator"
	"github.com/NathanHowell/orinctl/internal/logging"
)

var (
	captureOut    string
	captureScript string
)

// defaultCaptureScript exercises every operator command once.
var defaultCaptureScript = []string{
	"help",
	"reboot",
	"reboot delay 250ms",
	"recovery enter",
	"recovery now",
	"fault recover retries=2",
	"status",
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Replay a scripted exchange into a transcript file",
	Long: `capture runs a scripted list of operator commands through the emulator
session and writes the timestamped exchange to a transcript file. With no
script file, a built-in exchange covering every command is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		script := defaultCaptureScript
		if captureScript != "" {
			script, err = readScript(captureScript)
			if err != nil {
				return err
			}
		}

		transcript, err := emulator.NewTranscript(captureOut)
		if err != nil {
			return err
		}
		defer transcript.Close()

		session, err := emulator.NewSession(cfg, &emulator.SessionOptions{
			Transcript: transcript,
			Logger:     logging.Default(),
		})
		if err != nil {
			return err
		}

		for _, line := range script {
			if _, err := session.HandleLine(line); err != nil {
				return err
			}
		}

		fmt.Printf("Captured %d commands to %s (session %s)\n",
			len(script), captureOut, transcript.SessionID())
		return nil
	},
}

func readScript(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func init() {
	captureCmd.Flags().StringVarP(&captureOut, "out", "o", "transcripts/session.log", "Transcript output path")
	captureCmd.Flags().StringVarP(&captureScript, "script", "s", "", "Script file with one command per line")
	rootCmd.AddCommand(captureCmd)
}
