// Package scan orchestrates chain analysis into ranked Forward Factor
// opportunities.
package scan

import (
	"sort"

	"github.com/rs/zerolog"

	"ff-scanner/internal/analysis/liquidity"
	"ff-scanner/internal/analysis/vol"
	"ff-scanner/internal/errors"
	"ff-scanner/internal/models"
)

// IVAnalysis summarizes the implied volatility surface of one chain. All IV
// fields are percentages (25.0 means 25%); nil means the metric could not be
// computed from the liquid contracts available.
type IVAnalysis struct {
	Ticker       string   `json:"ticker"`
	Expiration   string   `json:"expiration"`
	DTE          int      `json:"days_to_expiration"`
	ATMIV        *float64 `json:"atm_iv,omitempty"`
	IVSkew       *float64 `json:"iv_skew,omitempty"`
	IVSmileSlope *float64 `json:"iv_smile_slope,omitempty"`
	AvgCallIV    *float64 `json:"avg_call_iv,omitempty"`
	AvgPutIV     *float64 `json:"avg_put_iv,omitempty"`
	LiquidCount  int      `json:"liquid_options_count"`
}

// Analyzer derives IV statistics from chains using the liquidity filter to
// pick trustworthy contracts and the solver to recover each contract's IV
// from its price. Stateless apart from its configuration; safe for
// concurrent use.
type Analyzer struct {
	filter *liquidity.Filter
	rate   float64
	logger zerolog.Logger
}

// NewAnalyzer builds an analyzer. riskFreeRate is an annualized decimal.
func NewAnalyzer(filter *liquidity.Filter, riskFreeRate float64, logger zerolog.Logger) *Analyzer {
	return &Analyzer{filter: filter, rate: riskFreeRate, logger: logger}
}

// SelectLiquid picks the contracts whose quotes are trustworthy enough for IV
// work: the delta-focused selection first for near-ATM coverage, falling back
// to the strict filter when it comes up empty.
func (a *Analyzer) SelectLiquid(chain *models.Chain) map[string]liquidity.Score {
	selected := a.filter.FilterChainDeltaFocused(chain)
	if len(selected) == 0 {
		selected = a.filter.FilterChain(chain)
	}
	return selected
}

// SummarizeChain reports chain-level liquidity statistics.
func (a *Analyzer) SummarizeChain(chain *models.Chain) liquidity.ChainSummary {
	return a.filter.Summarize(chain)
}

// MostLiquidATM finds the most liquid contract of the given type closest to
// the underlying price.
func (a *Analyzer) MostLiquidATM(chain *models.Chain, typ models.OptionType) (liquidity.Score, bool) {
	return a.filter.MostLiquidATM(chain, typ)
}

// AnalyzeChainIV computes per-chain IV statistics. Contracts whose price is
// unusable or whose IV inversion fails are skipped individually; a chain with
// no solvable contracts yields an analysis with nil metrics, not an error.
func (a *Analyzer) AnalyzeChainIV(chain *models.Chain) IVAnalysis {
	analysis := IVAnalysis{}
	if chain == nil {
		return analysis
	}
	analysis.Ticker = chain.Ticker
	analysis.Expiration = chain.ExpirationDate
	analysis.DTE = chain.DTE

	if len(chain.Contracts) == 0 {
		return analysis
	}

	selected := a.SelectLiquid(chain)
	if len(selected) == 0 {
		return analysis
	}
	analysis.LiquidCount = len(selected)

	years := vol.DaysToYears(chain.DTE)
	underlying := chain.UnderlyingPrice

	var callIVs, putIVs []float64

	// Solved decimals for the strike nearest spot on each side.
	var atmCallIV, atmPutIV float64
	var haveATMCall, haveATMPut bool
	minCallDiff := -1.0
	minPutDiff := -1.0

	for _, key := range sortedKeys(selected) {
		c := selected[key].Contract

		mid, err := vol.MidPrice(c.Bid, c.Ask, c.Last)
		if err != nil {
			continue
		}

		iv, err := vol.SolveIV(mid, underlying, c.Strike, years, a.rate, c.Type)
		if err != nil {
			solveErr := errors.NewSolveError(chain.Ticker, c.Strike, string(c.Type), err)
			a.logger.Debug().Err(solveErr).Msg("IV inversion failed, contract skipped")
			continue
		}

		ivPct := iv * 100
		strikeDiff := c.Strike - underlying
		if strikeDiff < 0 {
			strikeDiff = -strikeDiff
		}

		switch c.Type {
		case models.Call:
			callIVs = append(callIVs, ivPct)
			if minCallDiff < 0 || strikeDiff < minCallDiff {
				minCallDiff = strikeDiff
				atmCallIV = iv
				haveATMCall = true
			}
		case models.Put:
			putIVs = append(putIVs, ivPct)
			if minPutDiff < 0 || strikeDiff < minPutDiff {
				minPutDiff = strikeDiff
				atmPutIV = iv
				haveATMPut = true
			}
		}
	}

	switch {
	case haveATMCall && haveATMPut:
		analysis.ATMIV = floatPtr((atmCallIV + atmPutIV) / 2 * 100)
	case haveATMCall:
		analysis.ATMIV = floatPtr(atmCallIV * 100)
	case haveATMPut:
		analysis.ATMIV = floatPtr(atmPutIV * 100)
	}

	if haveATMCall && haveATMPut {
		analysis.IVSkew = floatPtr((atmPutIV - atmCallIV) * 100)
	}

	if len(callIVs) > 0 {
		analysis.AvgCallIV = floatPtr(mean(callIVs))
	}
	if len(putIVs) > 0 {
		analysis.AvgPutIV = floatPtr(mean(putIVs))
	}

	// Smile slope proxy: the spread of call IVs across strikes.
	if len(callIVs) > 1 {
		lo, hi := callIVs[0], callIVs[0]
		for _, v := range callIVs[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		analysis.IVSmileSlope = floatPtr(hi - lo)
	}

	return analysis
}

func sortedKeys(scores map[string]liquidity.Score) []string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func floatPtr(v float64) *float64 {
	return &v
}
