package liquidity

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ff-scanner/internal/models"
)

// contractGen generates contracts with realistic quote shapes, including
// one-sided and crossed books so the defect paths get exercised.
func contractGen(strike float64, typ models.OptionType) gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Contract{}), map[string]gopter.Gen{
		"Bid":     gen.Float64Range(0, 8),
		"Ask":     gen.Float64Range(0, 8),
		"Last":    gen.Float64Range(0, 8),
		"Volume":  gen.Int64Range(0, 2000),
		"OpenInt": gen.Int64Range(0, 5000),
	}).Map(func(c models.Contract) models.Contract {
		c.Ticker = "PROP"
		c.Expiration = "2026-09-18"
		c.Strike = strike
		c.Type = typ
		return c
	})
}

// Property: every sub-score and the overall score stay in [0, 100] no matter
// how degenerate the quotes are.
func TestProperty_ScoresBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	f := NewFilter(DefaultThresholds())

	bounded := func(v float64) bool {
		return v >= 0 && v <= 100 && !math.IsNaN(v)
	}

	properties.Property("strict scores bounded", prop.ForAll(
		func(c models.Contract) bool {
			s := f.Evaluate(c)
			return bounded(s.VolumeScore) && bounded(s.OpenInterestScore) &&
				bounded(s.SpreadScore) && bounded(s.OverallScore)
		},
		contractGen(100, models.Call),
	))

	properties.Property("delta-focused scores bounded", prop.ForAll(
		func(c models.Contract, distance float64) bool {
			s := f.evaluateDeltaFocused(c, distance)
			return bounded(s.VolumeScore) && bounded(s.OpenInterestScore) &&
				bounded(s.SpreadScore) && bounded(s.OverallScore)
		},
		contractGen(100, models.Call),
		gen.Float64Range(0, 25),
	))

	properties.TestingRun(t)
}

// Property: a contract marked liquid satisfies every strict threshold, and a
// contract failing any threshold is never marked liquid.
func TestProperty_LiquidImpliesThresholds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	th := DefaultThresholds()
	f := NewFilter(th)

	meets := func(c models.Contract) bool {
		spreadAbs := math.Inf(1)
		if c.Ask > c.Bid {
			spreadAbs = c.Ask - c.Bid
		}
		return c.Volume >= th.MinVolume &&
			c.OpenInt >= th.MinOpenInterest &&
			SpreadPct(c) <= th.MaxSpreadPct &&
			spreadAbs <= th.MaxSpreadAbs &&
			c.Bid >= th.MinBid &&
			c.Ask >= th.MinAsk &&
			QuoteMid(c) >= th.MinMidPrice &&
			VolumeOIRatio(c) >= th.MinVolumeOIRatio
	}

	properties.Property("IsLiquid matches threshold conjunction", prop.ForAll(
		func(c models.Contract) bool {
			return f.Evaluate(c).IsLiquid == meets(c)
		},
		contractGen(100, models.Call),
	))

	properties.TestingRun(t)
}

// Property: filtering is idempotent. Re-filtering a chain built from the
// surviving contracts returns exactly the same key set.
func TestProperty_FilterIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	f := NewFilter(DefaultThresholds())

	properties.Property("strict filter is idempotent", prop.ForAll(
		func(c95, c100, c105 models.Contract) bool {
			chain, err := models.NewChain("PROP", "2026-09-18", 30, 100,
				[]models.Contract{c95, c100, c105})
			if err != nil {
				return false
			}

			first := f.FilterChain(chain)

			survivors := make([]models.Contract, 0, len(first))
			for _, s := range first {
				survivors = append(survivors, s.Contract)
			}
			rechain, err := models.NewChain("PROP", "2026-09-18", 30, 100, survivors)
			if err != nil {
				return false
			}
			second := f.FilterChain(rechain)

			if len(first) != len(second) {
				return false
			}
			for key := range first {
				if _, ok := second[key]; !ok {
					return false
				}
			}
			return true
		},
		contractGen(95, models.Call),
		contractGen(100, models.Call),
		contractGen(105, models.Put),
	))

	properties.TestingRun(t)
}
