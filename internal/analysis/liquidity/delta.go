package liquidity

import (
	"math"
	"sort"

	"ff-scanner/internal/models"
)

// Delta band targeted by FilterChainDeltaFocused. Contracts near 50 delta
// carry the most reliable quotes for at-the-money IV work.
const (
	targetMinDelta = 35.0
	targetMaxDelta = 50.0

	// Expanded band used when the primary pass finds too few contracts for
	// a usable IV sample.
	expandedMinDelta = 25.0
	expandedMaxDelta = 60.0

	// Minimum contracts before the search widens.
	minDeltaFocusedResults = 3
)

type deltaCandidate struct {
	key      string
	contract models.Contract
	distance float64
}

// estimateDelta approximates the absolute delta of a near-the-money contract
// from moneyness alone, without a pricing model. ATM sits at 50; the estimate
// falls off linearly as the strike moves away from spot. Good enough to pick
// a strike window, not for hedging.
func estimateDelta(strike, underlying, slope, floor float64) float64 {
	moneyness := strike / underlying
	return math.Max(floor, slope*(2-moneyness))
}

// FilterChainDeltaFocused selects contracts in the 35-50 delta region under
// relaxed liquidity criteria. When the primary band yields fewer than three
// contracts the search widens to 25-60 delta. Chains outside the DTE window
// are rejected wholesale, as in FilterChain.
func (f *Filter) FilterChainDeltaFocused(chain *models.Chain) map[string]Score {
	selected := make(map[string]Score)

	if chain.DTE < f.thresholds.MinDTE || chain.DTE > f.thresholds.MaxDTE {
		return selected
	}

	underlying := chain.UnderlyingPrice

	var candidates []deltaCandidate
	for _, key := range chain.SortedKeys() {
		c := chain.Contracts[key]
		moneyness := c.Strike / underlying
		if moneyness < 0.95 || moneyness > 1.05 {
			continue
		}
		estimated := estimateDelta(c.Strike, underlying, 50, 20)
		if estimated < targetMinDelta || estimated > targetMaxDelta {
			continue
		}
		candidates = append(candidates, deltaCandidate{
			key:      key,
			contract: c,
			distance: math.Abs(50 - estimated),
		})
	}

	// Closest to ATM first; stable sort keeps strike order on ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	for _, cand := range candidates {
		score := f.evaluateDeltaFocused(cand.contract, cand.distance)
		if score.IsLiquid {
			selected[cand.key] = score
		}
	}

	if len(selected) >= minDeltaFocusedResults {
		return selected
	}

	// Widen the moneyness band and flatten the delta estimate to pull in
	// strikes further from spot.
	for _, key := range chain.SortedKeys() {
		if _, ok := selected[key]; ok {
			continue
		}
		c := chain.Contracts[key]
		moneyness := c.Strike / underlying
		if moneyness < 0.90 || moneyness > 1.15 {
			continue
		}
		estimated := estimateDelta(c.Strike, underlying, 60, 15)
		if estimated < expandedMinDelta || estimated > expandedMaxDelta {
			continue
		}
		score := f.evaluateDeltaFocused(c, math.Abs(50-estimated))
		if score.IsLiquid {
			selected[key] = score
		}
	}

	return selected
}

// evaluateDeltaFocused scores a contract against criteria far looser than the
// strict filter: volume and open interest floors are cut twentyfold and the
// spread ceiling is raised fivefold (capped at 75%). A delta-proximity bonus
// rewards contracts closest to ATM.
func (f *Filter) evaluateDeltaFocused(c models.Contract, deltaDistance float64) Score {
	t := f.thresholds
	var reasons []Reason
	liquid := true

	mid := QuoteMid(c)
	spreadPct := SpreadPct(c)

	relaxedMinVolume := maxInt64(1, t.MinVolume/20)
	relaxedMinOI := maxInt64(1, t.MinOpenInterest/20)
	relaxedMaxSpreadPct := math.Min(75.0, t.MaxSpreadPct*5)

	volumeScore := math.Min(100, float64(c.Volume)/float64(relaxedMinVolume)*30)
	if c.Volume < relaxedMinVolume {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowVolume, Value: float64(c.Volume), Limit: float64(relaxedMinVolume)})
	}

	oiScore := math.Min(100, float64(c.OpenInt)/float64(relaxedMinOI)*30)
	if c.OpenInt < relaxedMinOI {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonLowOpenInterest, Value: float64(c.OpenInt), Limit: float64(relaxedMinOI)})
	}

	var spreadScore float64
	if math.IsInf(spreadPct, 1) {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonInvalidQuotes})
	} else {
		spreadScore = math.Min(100, math.Max(0, 100-spreadPct*1.5))

		if spreadPct > relaxedMaxSpreadPct {
			liquid = false
			reasons = append(reasons, Reason{Code: ReasonExtremeSpreadPct, Value: spreadPct, Limit: relaxedMaxSpreadPct})
		}
	}

	if c.Bid <= 0 && c.Ask <= 0 {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonNoQuote})
	}
	if mid < 0.005 {
		liquid = false
		reasons = append(reasons, Reason{Code: ReasonExtremeLowMid, Value: mid})
	}

	deltaBonus := math.Max(0, 15-deltaDistance)
	overall := (volumeScore + oiScore + spreadScore + deltaBonus) * 0.25

	if len(reasons) == 0 {
		reasons = append(reasons, Reason{Code: ReasonMeetsDeltaFocused, Value: 50 - deltaDistance})
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

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
