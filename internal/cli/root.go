package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ff-scanner/internal/config"
	"ff-scanner/internal/logging"
	"ff-scanner/internal/scan"
	"ff-scanner/internal/store"
	"ff-scanner/internal/universe"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-25"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Scanner  *scan.Scanner
	Universe *universe.Filter
	Store    store.ResultStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Scanner:  scan.NewScanner(cfg, logger),
		Universe: universe.NewFilter(config.DefaultConfigDir()),
	}

	// Initialize SQLite store
	dbPath := filepath.Join(config.DefaultConfigDir(), "scanner.db")
	resultStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, scan history will be unavailable")
	} else {
		app.Store = resultStore
		logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "ff-scanner",
		Short: "Forward Factor options scanner",
		Long: `ff-scanner finds term-structure dislocations in equity options.

It solves implied volatilities from option chain quotes, filters out
illiquid contracts, and compares near-term against next-term ATM IV via
the forward-volatility bootstrap. A positive Forward Factor means the
front month is rich relative to the forward the back month implies.

Use 'ff-scanner help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/ff-scanner)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addScanCommands(rootCmd, app)
	addUniverseCommands(rootCmd, app)
	addHistoryCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Forward Factor Scanner v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage scanner configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Scanning")
	output.Printf("  max tickers:       %d\n", cfg.Scanning.MaxTickers)
	output.Printf("  workers:           %d\n", cfg.Scanning.Workers)

	output.Bold("Liquidity")
	output.Printf("  min volume:        %d\n", cfg.Liquidity.MinVolume)
	output.Printf("  min open interest: %d\n", cfg.Liquidity.MinOpenInterest)
	output.Printf("  max spread:        %.1f%% / $%.2f\n", cfg.Liquidity.MaxSpreadPct, cfg.Liquidity.MaxSpreadAbs)
	output.Printf("  min bid/ask:       $%.2f / $%.2f\n", cfg.Liquidity.MinBid, cfg.Liquidity.MinAsk)
	output.Printf("  min mid price:     $%.2f\n", cfg.Liquidity.MinMidPrice)
	output.Printf("  DTE window:        %d-%d days\n", cfg.Liquidity.MinDTE, cfg.Liquidity.MaxDTE)

	output.Bold("Forward Factor")
	output.Printf("  bullish above:     %.1f%%\n", cfg.Signal.BullishThreshold)
	output.Printf("  bearish below:     %.1f%%\n", cfg.Signal.BearishThreshold)
	output.Printf("  min confidence:    %.1f\n", cfg.Signal.MinConfidence)
	output.Printf("  max opportunities: %d\n", cfg.Signal.MaxOpportunities)

	output.Bold("Output")
	output.Printf("  results dir:       %s\n", cfg.Output.ResultsDir)
	output.Printf("  save csv/json/db:  %v/%v/%v\n", cfg.Output.SaveCSV, cfg.Output.SaveJSON, cfg.Output.SaveDB)
	return nil
}
