package scan

import (
	"math"
	"strings"
	"testing"

	"ff-scanner/internal/config"
)

func TestEvaluateOpportunityBullish(t *testing.T) {
	a := newTestAnalyzer()
	// Elevated front-month vol against a calmer next term produces a large
	// positive Forward Factor.
	near := pricedChain(t, 32, 100, 0.35, []float64{100, 102.5, 105})
	next := pricedChain(t, 58, 100, 0.30, []float64{100, 102.5, 105})

	opp := a.EvaluateOpportunity(near, next, "30/60", config.DefaultSignalConfig())

	if !opp.IsValid {
		t.Fatalf("expected valid opportunity, reasons: %v", opp.Reasons)
	}
	if opp.Type != Bullish {
		t.Errorf("Type = %s, want bullish", opp.Type)
	}
	if opp.FF == nil || !opp.FF.IsValid {
		t.Fatal("expected a valid Forward Factor result")
	}
	if opp.FF.ForwardFactorPct < 5 {
		t.Errorf("ForwardFactorPct = %.2f, want well above bullish threshold", opp.FF.ForwardFactorPct)
	}
	// Raw confidence caps at 100, then 6 liquid contracts a side scale it
	// by 6/20.
	if math.Abs(opp.Confidence-30) > 0.5 {
		t.Errorf("Confidence = %.2f, want ~30", opp.Confidence)
	}
	if opp.Confidence < 0 || opp.Confidence > 100 {
		t.Errorf("Confidence %.2f outside [0,100]", opp.Confidence)
	}
	if !strings.Contains(opp.PrimaryReason(), "Bullish signal") {
		t.Errorf("PrimaryReason = %q", opp.PrimaryReason())
	}
}

func TestEvaluateOpportunityNeutral(t *testing.T) {
	a := newTestAnalyzer()
	// A flat term structure: FF near zero, classified neutral with the
	// fixed low base confidence.
	near := pricedChain(t, 32, 100, 0.30, []float64{100, 102.5, 105})
	next := pricedChain(t, 58, 100, 0.30, []float64{100, 102.5, 105})

	opp := a.EvaluateOpportunity(near, next, "30/60", config.DefaultSignalConfig())

	if !opp.IsValid {
		t.Fatalf("expected valid opportunity, reasons: %v", opp.Reasons)
	}
	if opp.Type != Neutral {
		t.Errorf("Type = %s, want neutral", opp.Type)
	}
	// Base 20 scaled by 6/20 liquidity.
	if math.Abs(opp.Confidence-6) > 0.5 {
		t.Errorf("Confidence = %.2f, want ~6", opp.Confidence)
	}
}

func TestEvaluateOpportunityIlliquidChains(t *testing.T) {
	a := newTestAnalyzer()
	near := bareChain(t, 32)
	next := bareChain(t, 58)

	opp := a.EvaluateOpportunity(near, next, "30/60", config.DefaultSignalConfig())

	if opp.IsValid {
		t.Fatal("expected invalid opportunity")
	}
	joined := strings.Join(opp.Reasons, "; ")
	for _, want := range []string{
		"No liquid ATM options in near-term chain",
		"No liquid ATM options in next-term chain",
		"Insufficient liquid near-term options: 0",
		"Insufficient liquid next-term options: 0",
		"Cannot calculate Forward Factor without valid IV data",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("reasons missing %q: %v", want, opp.Reasons)
		}
	}
	if opp.FF != nil {
		t.Error("FF must be nil without IV data")
	}
	if opp.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", opp.Confidence)
	}
	// Partial data still surfaced.
	if opp.NearIV.Ticker != "TEST" || opp.NearIV.DTE != 32 {
		t.Error("partial near-term analysis not carried")
	}
}

func TestEvaluateOpportunityThinButSolvable(t *testing.T) {
	a := newTestAnalyzer()
	// Two strikes a side: ATM IV computes but the 5-contract floor fails,
	// so the opportunity is invalid while the FF result stays visible.
	near := pricedChain(t, 32, 100, 0.35, []float64{100, 105})
	next := pricedChain(t, 58, 100, 0.30, []float64{100, 102.5, 105})

	opp := a.EvaluateOpportunity(near, next, "30/60", config.DefaultSignalConfig())

	if opp.IsValid {
		t.Fatal("expected invalid: near chain has only 4 liquid contracts")
	}
	if opp.FF == nil || !opp.FF.IsValid {
		t.Error("FF should still be computed from the partial data")
	}
	joined := strings.Join(opp.Reasons, "; ")
	if !strings.Contains(joined, "Insufficient liquid near-term options: 4") {
		t.Errorf("reasons = %v", opp.Reasons)
	}
}

func TestOpportunitySummary(t *testing.T) {
	a := newTestAnalyzer()
	near := pricedChain(t, 32, 100, 0.35, []float64{100, 102.5, 105})
	next := pricedChain(t, 58, 100, 0.30, []float64{100, 102.5, 105})

	opp := a.EvaluateOpportunity(near, next, "30/60", config.DefaultSignalConfig())
	s := opp.Summary()

	if s.Ticker != "TEST" || s.Timeframe != "30/60" {
		t.Errorf("identity fields wrong: %+v", s)
	}
	if s.NearTermDTE != 32 || s.NextTermDTE != 58 {
		t.Errorf("DTEs = %d/%d, want 32/58", s.NearTermDTE, s.NextTermDTE)
	}
	if math.Abs(s.NearTermIV-35.0) > 0.1 {
		t.Errorf("NearTermIV = %.4f, want ~35", s.NearTermIV)
	}
	if s.OpportunityType != "bullish" {
		t.Errorf("OpportunityType = %s", s.OpportunityType)
	}
	if s.ForwardFactorPct == 0 || s.ForwardVolPct == 0 {
		t.Error("FF fields not populated")
	}
	if s.NearLiquidityCount != 6 || s.NextLiquidityCount != 6 {
		t.Errorf("liquidity counts = %d/%d, want 6/6", s.NearLiquidityCount, s.NextLiquidityCount)
	}
	if s.PrimaryReason == "" {
		t.Error("PrimaryReason empty")
	}
}
