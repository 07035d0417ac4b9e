package liquidity

import (
	"math"
	"sort"

	"ff-scanner/internal/models"
)

// Thresholds configures the strict liquidity criteria. Zero values are not
// meaningful; use DefaultThresholds or build from loaded configuration.
type Thresholds struct {
	MinVolume        int64
	MinOpenInterest  int64
	MaxSpreadPct     float64
	MinBid           float64
	MinAsk           float64
	MaxSpreadAbs     float64
	MinMidPrice      float64
	MinVolumeOIRatio float64
	MaxDTE           int
	MinDTE           int
}

// DefaultThresholds returns the standard criteria for equity options.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinVolume:        50,
		MinOpenInterest:  100,
		MaxSpreadPct:     10.0,
		MinBid:           0.05,
		MinAsk:           0.10,
		MaxSpreadAbs:     2.0,
		MinMidPrice:      0.10,
		MinVolumeOIRatio: 0.1,
		MaxDTE:           90,
		MinDTE:           7,
	}
}

// Score is the liquidity evaluation of a single contract. Sub-scores are
// each on a 0-100 scale; OverallScore is their weighted combination.
type Score struct {
	Contract          models.Contract
	VolumeScore       float64
	OpenInterestScore float64
	SpreadScore       float64
	OverallScore      float64
	IsLiquid          bool
	Reasons           []Reason
}

// RankedScore pairs a contract key with its score for ordered output.
type RankedScore struct {
	Key   string
	Score Score
}

// ChainSummary aggregates liquidity statistics over one expiration.
type ChainSummary struct {
	Ticker          string  `json:"ticker"`
	Expiration      string  `json:"expiration"`
	DTE             int     `json:"dte"`
	TotalContracts  int     `json:"total_contracts"`
	LiquidContracts int     `json:"liquid_contracts"`
	LiquidityRatio  float64 `json:"liquidity_ratio"`
	AvgScore        float64 `json:"avg_score"`
	BestScore       float64 `json:"best_score"`
	AvgVolume       float64 `json:"avg_volume"`
	AvgOpenInterest float64 `json:"avg_open_interest"`
}

// Filter evaluates contracts against a fixed set of thresholds.
type Filter struct {
	thresholds Thresholds
}

// NewFilter builds a filter around the given thresholds.
func NewFilter(t Thresholds) *Filter {
	return &Filter{thresholds: t}
}

// Thresholds returns the criteria this filter applies.
func (f *Filter) Thresholds() Thresholds {
	return f.thresholds
}

// SpreadPct returns the bid-ask spread as a percentage of the quote midpoint,
// or +Inf when either side of the book is missing.
func SpreadPct(c models.Contract) float64 {
	if c.Bid <= 0 || c.Ask <= 0 {
		return math.Inf(1)
	}
	mid := (c.Bid + c.Ask) / 2
	if mid <= 0 {
		return math.Inf(1)
	}
	return (c.Ask - c.Bid) / mid * 100
}

// QuoteMid returns the bid-ask midpoint, or 0 when either side is missing.
// Distinct from the solver's price selection: this never falls back to last.
func QuoteMid(c models.Contract) float64 {
	if c.Bid <= 0 || c.Ask <= 0 {
		return 0
	}
	return (c.Bid + c.Ask) / 2
}

// VolumeOIRatio returns today's volume relative to open interest, a proxy for
// recent activity. Zero open interest yields a zero ratio.
func VolumeOIRatio(c models.Contract) float64 {
	if c.OpenInt <= 0 {
		return 0
	}
	return float64(c.Volume) / float64(c.OpenInt)
}

// Evaluate applies every strict criterion to one contract. All checks run
// even after the first failure so Reasons lists the complete set of defects.
func (f *Filter) Evaluate(c models.Contract) Score {
	t := f.thresholds
	var reasons []Reason
	liquid := true

	mid := QuoteMid(c)
	spreadPct := SpreadPct(c)
	spreadAbs := math.Inf(1)
	if c.Ask > c.Bid {
		spreadAbs = c.Ask - c.Bid
	}
	ratio := VolumeOIRatio(c)

	volumeScore := math.Min(100, float64(c.Volume)/float64(t.MinVolume)*25)
	if c.Volume < t.MinVolume {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowVolume, Value: float64(c.Volume), Limit: float64(t.MinVolume)})
	}

	oiScore := math.Min(100, float64(c.OpenInt)/float64(t.MinOpenInterest)*25)
	if c.OpenInt < t.MinOpenInterest {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowOpenInterest, Value: float64(c.OpenInt), Limit: float64(t.MinOpenInterest)})
	}

	var spreadScore float64
	if math.IsInf(spreadPct, 1) {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonInvalidQuotes})
	} else {
		spreadScore = math.Min(100, math.Max(0, 100-spreadPct*5))

		if spreadPct > t.MaxSpreadPct {
			liquid = false
			reasons = append(reasons, Reason{Code: ReasonWideSpreadPct, Value: spreadPct, Limit: t.MaxSpreadPct})
		}
		if spreadAbs > t.MaxSpreadAbs {
			liquid = false
			reasons = append(reasons, Reason{Code: ReasonWideSpreadAbs, Value: spreadAbs, Limit: t.MaxSpreadAbs})
		}
	}

	if c.Bid < t.MinBid {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowBid, Value: c.Bid, Limit: t.MinBid})
	}
	if c.Ask < t.MinAsk {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowAsk, Value: c.Ask, Limit: t.MinAsk})
	}
	if mid < t.MinMidPrice {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowMidPrice, Value: mid, Limit: t.MinMidPrice})
	}
	if ratio < t.MinVolumeOIRatio {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowVolumeOIRatio, Value: ratio, Limit: t.MinVolumeOIRatio})
	}

	overall := volumeScore*0.4 + oiScore*0.4 + spreadScore*0.2

	if len(reasons) == 0 {
		reasons = append(reasons, Reason{Code: ReasonMeetsAll})
	}

	return Score{
		Contract:          c,
		VolumeScore:       volumeScore,
		OpenInterestScore: oiScore,
		SpreadScore:       spreadScore,
		OverallScore:      overall,
		IsLiquid:          liquid,
		Reasons:           reasons,
	}
}

// FilterChain returns the liquid contracts in a chain, keyed as in the
// chain's contract map. A chain whose DTE falls outside the configured
// window is rejected wholesale and yields an empty result.
func (f *Filter) FilterChain(chain *models.Chain) map[string]Score {
	liquid := make(map[string]Score)

	if chain.DTE < f.thresholds.MinDTE || chain.DTE > f.thresholds.MaxDTE {
		return liquid
	}

	for _, key := range chain.SortedKeys() {
		score := f.Evaluate(chain.Contracts[key])
		if score.IsLiquid {
			liquid[key] = score
		}
	}
	return liquid
}

// MostLiquidATM returns the liquid contract of the given type whose strike
// sits closest to the underlying price. The second return is false when the
// chain holds no liquid contract of that type.
func (f *Filter) MostLiquidATM(chain *models.Chain, typ models.OptionType) (Score, bool) {
	liquid := f.FilterChain(chain)

	var best Score
	found := false
	minDistance := math.Inf(1)

	for _, key := range sortedScoreKeys(liquid) {
		score := liquid[key]
		if score.Contract.Type != typ {
			continue
		}
		distance := math.Abs(score.Contract.Strike - chain.UnderlyingPrice)
		if distance < minDistance {
			minDistance = distance
			best = score
			found = true
		}
	}
	return best, found
}

// Rank orders scored contracts best-first. Ties break on key so the order is
// stable across runs.
func Rank(scores map[string]Score) []RankedScore {
	ranked := make([]RankedScore, 0, len(scores))
	for key, score := range scores {
		ranked = append(ranked, RankedScore{Key: key, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score.OverallScore != ranked[j].Score.OverallScore {
			return ranked[i].Score.OverallScore > ranked[j].Score.OverallScore
		}
		return ranked[i].Key < ranked[j].Key
	})
	return ranked
}

// Summarize computes chain-level liquidity statistics.
func (f *Filter) Summarize(chain *models.Chain) ChainSummary {
	summary := ChainSummary{
		Ticker:         chain.Ticker,
		Expiration:     chain.ExpirationDate,
		DTE:            chain.DTE,
		TotalContracts: len(chain.Contracts),
	}

	liquid := f.FilterChain(chain)
	if len(liquid) == 0 {
		return summary
	}

	var sumScore, sumVolume, sumOI float64
	for _, score := range liquid {
		sumScore += score.OverallScore
		summary.BestScore = math.Max(summary.BestScore, score.OverallScore)
		sumVolume += float64(score.Contract.Volume)
		sumOI += float64(score.Contract.OpenInt)
	}

	n := float64(len(liquid))
	summary.LiquidContracts = len(liquid)
	summary.LiquidityRatio = n / float64(len(chain.Contracts))
	summary.AvgScore = sumScore / n
	summary.AvgVolume = sumVolume / n
	summary.AvgOpenInterest = sumOI / n
	return summary
}

func sortedScoreKeys(scores map[string]Score) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
