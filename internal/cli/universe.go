package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addUniverseCommands adds ticker universe management commands.
func addUniverseCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newUniverseCmd(app))
}

func newUniverseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Manage the midcap scan universe",
		Long: `Inspect and manage which tickers the scanner considers.

The universe excludes mega and large caps, where the term structure is
heavily arbitraged, and non-equity symbols. A whitelist forces specific
tickers in; a blacklist forces them out. Both persist as JSON files in
the config directory.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the suggested scan universe",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			tickers := app.Universe.Suggested()
			if output.IsJSON() {
				output.JSON(map[string]interface{}{
					"count":   len(tickers),
					"tickers": tickers,
				})
				return
			}
			output.Bold("Suggested universe (%d tickers)", len(tickers))
			for i := 0; i < len(tickers); i += 10 {
				end := i + 10
				if end > len(tickers) {
					end = len(tickers)
				}
				output.Printf("  %s\n", strings.Join(tickers[i:end], " "))
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show universe filter statistics",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			stats := app.Universe.Stats()
			if output.IsJSON() {
				output.JSON(stats)
				return
			}
			output.Printf("Large-cap exclusions: %d\n", stats.LargeCapExclusions)
			output.Printf("Whitelisted tickers:  %d\n", stats.WhitelistSize)
			output.Printf("Blacklisted tickers:  %d\n", stats.BlacklistSize)
			output.Printf("Suggested universe:   %d\n", stats.SuggestedSize)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <ticker>...",
		Short: "Check whether tickers are scan candidates",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			results := make(map[string]bool, len(args))
			for _, arg := range args {
				ticker := strings.ToUpper(strings.TrimSpace(arg))
				results[ticker] = app.Universe.IsCandidate(ticker)
			}
			if output.IsJSON() {
				output.JSON(results)
				return
			}
			for _, arg := range args {
				ticker := strings.ToUpper(strings.TrimSpace(arg))
				if results[ticker] {
					output.Success("%s: candidate", ticker)
				} else {
					output.Warning("%s: excluded", ticker)
				}
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "allow <ticker>...",
		Short: "Add tickers to the whitelist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			app.Universe.AddToWhitelist(args)
			if err := app.Universe.Save(); err != nil {
				output.Error("Failed to save universe lists: %v", err)
				return err
			}
			output.Success("Whitelisted %d tickers", len(args))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "block <ticker>...",
		Short: "Add tickers to the blacklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			app.Universe.AddToBlacklist(args)
			if err := app.Universe.Save(); err != nil {
				output.Error("Failed to save universe lists: %v", err)
				return err
			}
			output.Success("Blacklisted %d tickers", len(args))
			return nil
		},
	})

	return cmd
}
