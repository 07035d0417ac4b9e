// Command ff-scanner scans option chains for Forward Factor opportunities.
package main

import (
	"fmt"
	"os"

	"ff-scanner/internal/cli"
	"ff-scanner/internal/config"
	"ff-scanner/internal/logging"
)

func main() {
	// The config directory must be known before cobra parses flags, so the
	// --config value is picked out of the raw arguments.
	configDir := configDirFromArgs(os.Args[1:])

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Console = cfg.Logging.Console
	logCfg.File = cfg.Logging.File
	logger := logging.NewLoggerWithConfig(logCfg)

	// Debug-level work elsewhere (per-chain liquidity summaries) is gated
	// on the global level; --debug raises it again later.
	if cfg.Logging.Level == "debug" {
		logging.SetDebugLevel()
	} else {
		logging.SetInfoLevel()
	}

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDirFromArgs extracts the value of --config, if present.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
