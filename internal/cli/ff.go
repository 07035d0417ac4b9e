package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ff-scanner/internal/analysis/forward"
	"ff-scanner/pkg/utils"
)

func newFFCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ff <dte1> <iv1> <dte2> <iv2>",
		Short: "Compute the Forward Factor for one term pair",
		Long: `Compute the Forward Factor from two implied volatility points.

IVs are decimals (0.60 means 60%). The forward volatility between the
two expirations is bootstrapped from total variance and the Forward
Factor measures how rich the near-term IV is against it.`,
		Example: `  ff-scanner ff 25 0.604 74 0.496
  ff-scanner ff 30 0.35 60 0.30 --json`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			dte1, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid dte1 %q: %w", args[0], err)
			}
			iv1, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid iv1 %q: %w", args[1], err)
			}
			dte2, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid dte2 %q: %w", args[2], err)
			}
			iv2, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid iv2 %q: %w", args[3], err)
			}

			result := forward.Compute(dte1, iv1, dte2, iv2)

			if output.IsJSON() {
				return output.JSON(result)
			}

			if !result.IsValid {
				output.Error("Invalid term structure: %s", result.ErrorMessage)
				return fmt.Errorf("forward factor: %s", result.ErrorMessage)
			}

			output.Bold("Forward Factor: %s", utils.FormatPercent(result.ForwardFactorPct))
			output.Printf("  near term:    %d days at %.1f%% IV\n", result.NearTermDTE, result.NearTermIV*100)
			output.Printf("  next term:    %d days at %.1f%% IV\n", result.NextTermDTE, result.NextTermIV*100)
			output.Printf("  forward vol:  %.1f%% (%d-%d day window)\n",
				result.ForwardVolatility*100, result.NearTermDTE, result.NextTermDTE)

			switch {
			case result.ForwardFactorPct > app.Config.Signal.BullishThreshold:
				output.Success("Front month elevated relative to the forward")
			case result.ForwardFactorPct < app.Config.Signal.BearishThreshold:
				output.Error("Front month depressed relative to the forward")
			default:
				output.Dim("Within normal range")
			}
			return nil
		},
	}
}
