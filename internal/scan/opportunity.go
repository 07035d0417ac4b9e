package scan

import (
	"fmt"

	"ff-scanner/internal/analysis/forward"
	"ff-scanner/internal/analysis/liquidity"
	"ff-scanner/internal/config"
	"ff-scanner/internal/models"
)

// OpportunityType classifies the direction a Forward Factor signal implies.
type OpportunityType string

const (
	Bullish OpportunityType = "bullish"
	Bearish OpportunityType = "bearish"
	Neutral OpportunityType = "neutral"
)

// A chain needs at least this many liquid contracts before its ATM IV is
// trusted as a Forward Factor input.
const minLiquidContracts = 5

// Opportunity is the full evaluation of one (ticker, timeframe) pair. Built
// once and never mutated; re-evaluation produces a new value.
type Opportunity struct {
	Ticker          string  `json:"ticker"`
	UnderlyingPrice float64 `json:"underlying_price"`
	Timeframe       string  `json:"timeframe"`

	NearChain *models.Chain `json:"-"`
	NextChain *models.Chain `json:"-"`

	NearIV IVAnalysis `json:"near_term_iv"`
	NextIV IVAnalysis `json:"next_term_iv"`

	// FF is nil when one side lacked a usable ATM IV.
	FF *forward.Result `json:"ff_result,omitempty"`

	NearLiquidity map[string]liquidity.Score `json:"-"`
	NextLiquidity map[string]liquidity.Score `json:"-"`

	IsValid    bool            `json:"is_valid"`
	Type       OpportunityType `json:"opportunity_type"`
	Confidence float64         `json:"confidence_score"`
	Reasons    []string        `json:"reasons"`
}

// PrimaryReason returns the first accumulated reason.
func (o *Opportunity) PrimaryReason() string {
	if len(o.Reasons) == 0 {
		return "No reason provided"
	}
	return o.Reasons[0]
}

// Summary flattens the opportunity into the record used for serialization
// and display.
func (o *Opportunity) Summary() models.OpportunitySummary {
	s := models.OpportunitySummary{
		Ticker:             o.Ticker,
		Timeframe:          o.Timeframe,
		UnderlyingPrice:    o.UnderlyingPrice,
		OpportunityType:    string(o.Type),
		ConfidenceScore:    o.Confidence,
		NearLiquidityCount: o.NearIV.LiquidCount,
		NextLiquidityCount: o.NextIV.LiquidCount,
		PrimaryReason:      o.PrimaryReason(),
	}
	if o.NearChain != nil {
		s.NearTermDTE = o.NearChain.DTE
	}
	if o.NextChain != nil {
		s.NextTermDTE = o.NextChain.DTE
	}
	if o.NearIV.ATMIV != nil {
		s.NearTermIV = *o.NearIV.ATMIV
	}
	if o.NextIV.ATMIV != nil {
		s.NextTermIV = *o.NextIV.ATMIV
	}
	if o.FF != nil {
		s.ForwardFactorPct = o.FF.ForwardFactorPct
		s.ForwardVolPct = o.FF.ForwardVolatility * 100
	}
	return s
}

// EvaluateOpportunity runs the full pipeline over one chain pair: liquidity
// selection, per-contract IV inversion, per-chain aggregation, the Forward
// Factor calculation and finally classification. Failures along the way mark
// the opportunity invalid with reasons but never discard the partial data.
func (a *Analyzer) EvaluateOpportunity(near, next *models.Chain, timeframe string, sig config.SignalConfig) *Opportunity {
	nearIV := a.AnalyzeChainIV(near)
	nextIV := a.AnalyzeChainIV(next)

	nearLiquidity := a.SelectLiquid(near)
	nextLiquidity := a.SelectLiquid(next)

	var reasons []string
	valid := true

	if nearIV.ATMIV == nil {
		valid = false
		reasons = append(reasons, "No liquid ATM options in near-term chain")
	}
	if nextIV.ATMIV == nil {
		valid = false
		reasons = append(reasons, "No liquid ATM options in next-term chain")
	}
	if nearIV.LiquidCount < minLiquidContracts {
		valid = false
		reasons = append(reasons, fmt.Sprintf("Insufficient liquid near-term options: %d", nearIV.LiquidCount))
	}
	if nextIV.LiquidCount < minLiquidContracts {
		valid = false
		reasons = append(reasons, fmt.Sprintf("Insufficient liquid next-term options: %d", nextIV.LiquidCount))
	}

	var ff *forward.Result
	if nearIV.ATMIV != nil && nextIV.ATMIV != nil {
		// ATM IVs are stored as percentages; the calculator takes decimals.
		r := forward.Compute(near.DTE, *nearIV.ATMIV/100, next.DTE, *nextIV.ATMIV/100)
		ff = &r
		if !r.IsValid {
			valid = false
			reasons = append(reasons, fmt.Sprintf("Invalid Forward Factor calculation: %s", r.ErrorMessage))
		}
	} else {
		valid = false
		reasons = append(reasons, "Cannot calculate Forward Factor without valid IV data")
	}

	oppType := Neutral
	confidence := 0.0

	if ff != nil && ff.IsValid {
		ffPct := ff.ForwardFactorPct

		switch {
		case ffPct > sig.BullishThreshold:
			oppType = Bullish
			reasons = append(reasons, fmt.Sprintf("Bullish signal: FF = %.1f%% (front month elevated)", ffPct))
		case ffPct < sig.BearishThreshold:
			oppType = Bearish
			reasons = append(reasons, fmt.Sprintf("Bearish signal: FF = %.1f%% (front month depressed)", ffPct))
		default:
			oppType = Neutral
			reasons = append(reasons, fmt.Sprintf("Neutral: FF = %.1f%% (within normal range)", ffPct))
		}

		confidence = confidenceScore(ffPct, nearIV.LiquidCount, nextIV.LiquidCount, sig)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Analysis completed successfully")
	}

	return &Opportunity{
		Ticker:          near.Ticker,
		UnderlyingPrice: near.UnderlyingPrice,
		Timeframe:       timeframe,
		NearChain:       near,
		NextChain:       next,
		NearIV:          nearIV,
		NextIV:          nextIV,
		FF:              ff,
		NearLiquidity:   nearLiquidity,
		NextLiquidity:   nextLiquidity,
		IsValid:         valid,
		Type:            oppType,
		Confidence:      confidence,
		Reasons:         reasons,
	}
}

// confidenceScore maps a valid Forward Factor and per-side liquidity counts
// to a [0, 100] confidence. Directional signals start at min(100, |FF%|*5),
// neutral ones at a fixed base. More liquid contracts on both sides means
// more trustworthy ATM IVs, so the base is scaled by the thinner side's
// count, reaching full weight at 20 contracts. Non-decreasing in |FF%| at
// fixed counts and in either count at fixed FF%.
func confidenceScore(ffPct float64, nearCount, nextCount int, sig config.SignalConfig) float64 {
	base := 20.0
	if ffPct > sig.BullishThreshold || ffPct < sig.BearishThreshold {
		base = minFloat(100, absFloat(ffPct)*5)
	}

	adjustment := minFloat(
		float64(nearCount)/20.0,
		float64(nextCount)/20.0,
	)
	return minFloat(100, maxFloat(0, base*adjustment))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
