package scan

import (
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ff-scanner/internal/config"
	"ff-scanner/internal/models"
)

// Property: any pair SelectPair returns lies inside the timeframe's windows
// with the near term strictly before the next term, and whenever it declines
// no conforming pair existed.
func TestProperty_SelectPairSound(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("selected pairs are window-conforming", prop.ForAll(
		func(dtes []int, tfIdx int) bool {
			tf := Timeframes()[tfIdx]

			chains := make([]*models.Chain, 0, len(dtes))
			for _, dte := range dtes {
				chain, err := models.NewChain("PROP", "2026-09-18", dte, 100, nil)
				if err != nil {
					return false
				}
				chains = append(chains, chain)
			}
			models.SortChainsByDTE(chains)

			near, next, ok := SelectPair(chains, tf)
			if !ok {
				// Declining is only sound if no conforming pair exists.
				for i, c1 := range chains {
					if !tf.nearMatches(c1.DTE) {
						continue
					}
					for _, c2 := range chains[i+1:] {
						if tf.nextMatches(c2.DTE) {
							return false
						}
					}
				}
				return true
			}

			if !tf.nearMatches(near.DTE) || !tf.nextMatches(next.DTE) {
				return false
			}
			// Strict ordering between the terms.
			if near.DTE > next.DTE {
				return false
			}

			// Optimality: no conforming pair scores strictly lower.
			best := tf.deviation(near.DTE, next.DTE)
			for i, c1 := range chains {
				if !tf.nearMatches(c1.DTE) {
					continue
				}
				for _, c2 := range chains[i+1:] {
					if tf.nextMatches(c2.DTE) && tf.deviation(c1.DTE, c2.DTE) < best {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(6, gen.IntRange(1, 150)),
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}

// Property: Rank output is sorted descending by confidence, contains only
// valid opportunities at or above the floor, and never exceeds the cap.
func TestProperty_RankSound(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("ranking respects floor, cap and order", prop.ForAll(
		func(confidences []float64, floor float64, maxResults int) bool {
			sig := config.SignalConfig{
				BullishThreshold: 5,
				BearishThreshold: -5,
				MinConfidence:    floor,
				MaxOpportunities: maxResults,
			}

			opps := make([]*Opportunity, len(confidences))
			eligible := 0
			for i, c := range confidences {
				valid := i%4 != 3 // every fourth is invalid
				opps[i] = &Opportunity{
					Ticker:     "PROP",
					Timeframe:  "30/60",
					IsValid:    valid,
					Confidence: c,
				}
				if valid && c >= floor {
					eligible++
				}
			}

			ranked := Rank(opps, sig)

			want := eligible
			if maxResults > 0 && want > maxResults {
				want = maxResults
			}
			if len(ranked) != want {
				return false
			}
			for _, opp := range ranked {
				if !opp.IsValid || opp.Confidence < floor {
					return false
				}
			}
			return sort.SliceIsSorted(ranked, func(i, j int) bool {
				return ranked[i].Confidence > ranked[j].Confidence
			})
		},
		gen.SliceOfN(10, gen.Float64Range(0, 100)),
		gen.Float64Range(0, 100),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}

// Property: confidence never decreases when the Forward Factor magnitude
// grows with liquidity held fixed, nor when liquidity deepens with the
// Forward Factor held fixed, and it always stays inside [0, 100].
func TestProperty_ConfidenceMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	sig := config.DefaultSignalConfig()

	properties.Property("non-decreasing in |FF%| at fixed liquidity", prop.ForAll(
		func(magA, magB float64, bearish bool, near, next int) bool {
			lo, hi := magA, magB
			if lo > hi {
				lo, hi = hi, lo
			}
			if bearish {
				lo, hi = -lo, -hi
			}

			confLo := confidenceScore(lo, near, next, sig)
			confHi := confidenceScore(hi, near, next, sig)
			if confLo < 0 || confLo > 100 || confHi < 0 || confHi > 100 {
				return false
			}
			return confHi >= confLo
		},
		gen.Float64Range(0, 80),
		gen.Float64Range(0, 80),
		gen.Bool(),
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
	))

	properties.Property("non-decreasing in liquidity at fixed FF%", prop.ForAll(
		func(ffPct float64, near, next, moreNear, moreNext int) bool {
			thin := confidenceScore(ffPct, near, next, sig)
			deep := confidenceScore(ffPct, near+moreNear, next+moreNext, sig)
			if thin < 0 || thin > 100 || deep < 0 || deep > 100 {
				return false
			}
			return deep >= thin
		},
		gen.Float64Range(-80, 80),
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}
