package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ff-scanner/internal/models"
	"ff-scanner/pkg/utils"
)

// addHistoryCommands adds scan-history commands.
func addHistoryCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse stored scan results",
		Long:  "List past scans and the opportunities they found.",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Scan history store is unavailable")
				return fmt.Errorf("store not initialized")
			}
			limit, _ := cmd.Flags().GetInt("limit")

			scans, err := app.Store.RecentScans(cmd.Context(), limit)
			if err != nil {
				output.Error("Failed to load scans: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(scans)
			}
			if len(scans) == 0 {
				output.Dim("No scans recorded yet")
				return nil
			}
			output.Bold("%-5s %-20s %8s %8s %10s", "ID", "STARTED", "TICKERS", "FOUND", "DURATION")
			for _, s := range scans {
				output.Printf("%-5d %-20s %8d %8d %10s\n",
					s.ID, s.StartedAt.Format("2006-01-02 15:04:05"),
					s.Tickers, s.Opportunities, utils.FormatDuration(s.Duration))
			}
			return nil
		},
	}
	listCmd.Flags().Int("limit", 10, "number of scans to show")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show the opportunities of one scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Scan history store is unavailable")
				return fmt.Errorf("store not initialized")
			}
			scanID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid scan id %q: %w", args[0], err)
			}

			opps, err := app.Store.ScanOpportunities(cmd.Context(), scanID)
			if err != nil {
				output.Error("Failed to load opportunities: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(opps)
			}
			if len(opps) == 0 {
				output.Dim("No opportunities recorded for scan #%d", scanID)
				return nil
			}
			displayHistory(output, opps)
			return nil
		},
	})

	tickerCmd := &cobra.Command{
		Use:   "ticker <symbol>",
		Short: "Show recent opportunities for one ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Error("Scan history store is unavailable")
				return fmt.Errorf("store not initialized")
			}
			limit, _ := cmd.Flags().GetInt("limit")
			ticker := strings.ToUpper(strings.TrimSpace(args[0]))

			opps, err := app.Store.TickerHistory(cmd.Context(), ticker, limit)
			if err != nil {
				output.Error("Failed to load ticker history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(opps)
			}
			if len(opps) == 0 {
				output.Dim("No recorded opportunities for %s", ticker)
				return nil
			}
			displayHistory(output, opps)
			return nil
		},
	}
	tickerCmd.Flags().Int("limit", 20, "number of records to show")
	cmd.AddCommand(tickerCmd)

	return cmd
}

func displayHistory(output *Output, opps []models.OpportunitySummary) {
	output.Bold("%-6s %-6s %-8s %8s %8s %7s", "TICKER", "TERM", "SIGNAL", "FF", "CONF", "LIQ")
	for _, o := range opps {
		output.Printf("%-6s %-6s %-17s %8s %8.1f %4d/%-2d\n",
			o.Ticker, o.Timeframe, output.Signal(o.OpportunityType),
			utils.FormatPercent(o.ForwardFactorPct), o.ConfidenceScore,
			o.NearLiquidityCount, o.NextLiquidityCount)
	}
}
