package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ff-scanner/internal/errors"
	"ff-scanner/internal/models"
	"ff-scanner/internal/report"
	"ff-scanner/internal/scan"
	"ff-scanner/internal/store"
	"ff-scanner/pkg/utils"
)

// addScanCommands adds the scanning commands.
func addScanCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newFFCmd(app))
}

// chainInput is the on-disk shape of one option chain. Contracts arrive as a
// list; NewChain keys and validates them.
type chainInput struct {
	Ticker          string            `json:"ticker"`
	Expiration      string            `json:"expiration_date"`
	DTE             int               `json:"days_to_expiration"`
	UnderlyingPrice float64           `json:"underlying_price"`
	Contracts       []models.Contract `json:"contracts"`
}

type tickerInput struct {
	Ticker string       `json:"ticker"`
	Chains []chainInput `json:"chains"`
}

// loadChains reads a chain snapshot file and materializes validated chains.
// When requested is non-empty, only those tickers are kept.
func loadChains(path string, requested map[string]bool) ([]scan.TickerChains, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewDataError("snapshot", "", "reading chains file", err)
	}

	var inputs []tickerInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, errors.NewDataError("snapshot", "", "parsing chains file", err)
	}

	var out []scan.TickerChains
	for _, in := range inputs {
		ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
		if len(requested) > 0 && !requested[ticker] {
			continue
		}

		chains := make([]*models.Chain, 0, len(in.Chains))
		for _, c := range in.Chains {
			chain, err := models.NewChain(ticker, c.Expiration, c.DTE, c.UnderlyingPrice, c.Contracts)
			if err != nil {
				return nil, errors.NewDataError("chain", ticker,
					fmt.Sprintf("invalid %s chain", c.Expiration), err)
			}
			chains = append(chains, chain)
		}
		out = append(out, scan.TickerChains{Ticker: ticker, Chains: chains})
	}
	return out, nil
}

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [tickers...]",
		Short: "Scan option chains for Forward Factor opportunities",
		Long: `Scan option chains for term-structure dislocations.

Chain data is read from a JSON snapshot file (--chains). Without ticker
arguments every midcap candidate in the snapshot is scanned; large caps
and non-equity symbols are skipped unless --all is given.

Each ticker is evaluated on three timeframes (30/60, 30/90, 60/90 days)
and results are ranked by confidence.`,
		Example: `  ff-scanner scan --chains chains.json
  ff-scanner scan TEAM SNOW --chains chains.json
  ff-scanner scan --chains chains.json --min-confidence 50 --no-save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			chainsPath, _ := cmd.Flags().GetString("chains")
			minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
			maxResults, _ := cmd.Flags().GetInt("max")
			noSave, _ := cmd.Flags().GetBool("no-save")
			includeAll, _ := cmd.Flags().GetBool("all")

			if chainsPath == "" {
				output.Error("No chain data. Provide a snapshot file with --chains.")
				return fmt.Errorf("chains file required")
			}

			requested := make(map[string]bool)
			for _, arg := range args {
				requested[strings.ToUpper(strings.TrimSpace(arg))] = true
			}

			inputs, err := loadChains(chainsPath, requested)
			if err != nil {
				output.Error("Failed to load chains: %v", err)
				return err
			}

			// No explicit tickers: restrict the snapshot to the midcap
			// universe.
			if len(requested) == 0 && !includeAll {
				filtered := inputs[:0]
				for _, in := range inputs {
					if app.Universe.IsCandidate(in.Ticker) {
						filtered = append(filtered, in)
					} else {
						app.Logger.Debug().Str("ticker", in.Ticker).Msg("Skipping non-universe ticker")
					}
				}
				inputs = filtered
			}
			if max := app.Config.Scanning.MaxTickers; max > 0 && len(inputs) > max {
				output.Warning("Snapshot has %d tickers, scanning first %d", len(inputs), max)
				inputs = inputs[:max]
			}
			if len(inputs) == 0 {
				output.Warning("Nothing to scan after universe filtering")
				return nil
			}

			// Per-run overrides travel with the scan call; the loaded
			// configuration is never mutated.
			sig := app.Config.Signal
			if cmd.Flags().Changed("min-confidence") {
				sig.MinConfidence = minConfidence
			}
			if cmd.Flags().Changed("max") {
				sig.MaxOpportunities = maxResults
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if !output.IsJSON() {
				output.Info("Scanning %d tickers across 3 timeframes...", len(inputs))
			}

			result := app.Scanner.ScanWithSignal(ctx, inputs, sig)

			summaries := make([]models.OpportunitySummary, 0, len(result.Opportunities))
			for _, opp := range result.Opportunities {
				summaries = append(summaries, opp.Summary())
			}

			if output.IsJSON() {
				output.JSON(map[string]interface{}{
					"tickers_scanned":     result.Tickers,
					"evaluated":           result.Evaluated,
					"opportunities_found": len(summaries),
					"duration":            result.Duration.String(),
					"opportunities":       summaries,
				})
			} else {
				displayScanResult(output, app, result, summaries)
			}

			if noSave {
				return nil
			}
			return saveScanResult(cmd.Context(), app, output, result, summaries)
		},
	}

	cmd.Flags().String("chains", "", "path to JSON chain snapshot file")
	cmd.Flags().Float64("min-confidence", 0, "override minimum confidence score")
	cmd.Flags().Int("max", 0, "override maximum opportunities returned")
	cmd.Flags().Bool("no-save", false, "skip CSV/JSON/database persistence")
	cmd.Flags().Bool("all", false, "scan every ticker in the snapshot, ignoring the universe filter")

	return cmd
}

func displayScanResult(output *Output, app *App, result *scan.ScanResult, summaries []models.OpportunitySummary) {
	output.Println()
	if len(summaries) == 0 {
		output.Warning("No opportunities passed the confidence cut (%d evaluated)", result.Evaluated)
		output.Dim("Scanned %d tickers in %s", result.Tickers, utils.FormatDuration(result.Duration))
		return
	}

	output.Bold("%-6s %-6s %-8s %8s %8s %9s %9s %7s", "TICKER", "TERM", "SIGNAL", "FF", "CONF", "NEAR IV", "NEXT IV", "LIQ")
	for _, s := range summaries {
		output.Printf("%-6s %-6s %-17s %8s %8.1f %8.1f%% %8.1f%% %4d/%-2d\n",
			s.Ticker, s.Timeframe, output.Signal(s.OpportunityType),
			utils.FormatPercent(s.ForwardFactorPct), s.ConfidenceScore,
			s.NearTermIV, s.NextTermIV,
			s.NearLiquidityCount, s.NextLiquidityCount)
	}

	output.Println()
	best := summaries[0]
	output.Printf("Top: %s %s at %s underlying. %s\n",
		best.Ticker, best.Timeframe, utils.FormatPrice(best.UnderlyingPrice), best.PrimaryReason)

	// The most tradeable contracts behind the top signal.
	if opp := result.Opportunities[0]; opp.NearChain != nil {
		analyzer := app.Scanner.Analyzer()
		if call, ok := analyzer.MostLiquidATM(opp.NearChain, models.Call); ok {
			output.Dim("ATM call: %g strike, %s volume, liquidity %.0f",
				call.Contract.Strike, utils.FormatQuantity(call.Contract.Volume), call.OverallScore)
		}
		if put, ok := analyzer.MostLiquidATM(opp.NearChain, models.Put); ok {
			output.Dim("ATM put:  %g strike, %s volume, liquidity %.0f",
				put.Contract.Strike, utils.FormatQuantity(put.Contract.Volume), put.OverallScore)
		}
	}

	output.Dim("Scanned %d tickers, evaluated %d pairings in %s",
		result.Tickers, result.Evaluated, utils.FormatDuration(result.Duration))
}

func saveScanResult(ctx context.Context, app *App, output *Output, result *scan.ScanResult, summaries []models.OpportunitySummary) error {
	out := app.Config.Output
	writer := report.NewWriter(out.ResultsDir, out.TimestampFiles)

	if out.SaveCSV {
		path, err := writer.WriteCSV(summaries)
		if err != nil {
			output.Error("Failed to write CSV: %v", err)
			return err
		}
		if !output.IsJSON() {
			output.Dim("Results saved to %s", path)
		}
	}
	if out.SaveJSON {
		path, err := writer.WriteJSON(summaries)
		if err != nil {
			output.Error("Failed to write JSON: %v", err)
			return err
		}
		if !output.IsJSON() {
			output.Dim("Results saved to %s", path)
		}
	}

	if out.SaveDB && app.Store != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		record := store.ScanRecord{
			StartedAt: time.Now().UTC().Add(-result.Duration),
			Duration:  result.Duration,
			Tickers:   result.Tickers,
		}
		scanID, err := app.Store.SaveScan(ctx, record, summaries)
		if err != nil {
			output.Error("Failed to save scan history: %v", err)
			return err
		}
		if !output.IsJSON() {
			output.Dim("Scan recorded as #%d", scanID)
		}
	}
	return nil
}
