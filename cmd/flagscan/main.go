package main

import (
	"fmt"
	"os"

	"flagscan/internal/cli"
	"flagscan/internal/config"
	"flagscan/internal/logging"
)

func main() {
	// The config directory has to be known before cobra parses flags.
	configDir := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			configDir = os.Args[i+1]
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// Keep the terminal for command output; logs go to the rotating file.
	logCfg := logging.DefaultLogConfig()
	logCfg.Console = false
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
