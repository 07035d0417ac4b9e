package liquidity

import (
	"testing"

	"ff-scanner/internal/models"
)

func TestDeltaFocusedSelectsNearATMBand(t *testing.T) {
	f := NewFilter(DefaultThresholds())
	// Identical healthy quotes at every strike; selection should come down
	// to the estimated delta band alone.
	var contracts []models.Contract
	for _, strike := range []float64{90, 95, 100, 105, 110} {
		contracts = append(contracts,
			makeContract(strike, models.Call, 2.40, 2.60, 40, 80),
			makeContract(strike, models.Put, 2.40, 2.60, 40, 80),
		)
	}
	chain := makeChain(t, 30, 100, contracts)

	selected := f.FilterChainDeltaFocused(chain)

	// Strikes at or above spot estimate to 50 delta or below; strikes below
	// spot estimate above 50 and fall outside the target band.
	for _, strike := range []float64{100, 105} {
		for _, typ := range []models.OptionType{models.Call, models.Put} {
			if _, ok := selected[models.ContractKey(strike, typ)]; !ok {
				t.Errorf("expected %g %s in selection", strike, typ)
			}
		}
	}
	if _, ok := selected[models.ContractKey(95, models.Call)]; ok {
		t.Error("95 strike estimates above 50 delta and should be excluded")
	}
}

func TestDeltaFocusedExpandsWhenSparse(t *testing.T) {
	f := NewFilter(DefaultThresholds())
	// Only strikes above the primary moneyness band; the primary pass finds
	// nothing and the expanded 25-60 delta band must take over.
	chain := makeChain(t, 30, 100, []models.Contract{
		makeContract(110, models.Call, 1.00, 1.10, 40, 80),
		makeContract(110, models.Put, 1.00, 1.10, 40, 80),
		makeContract(115, models.Call, 0.50, 0.60, 40, 80),
		makeContract(115, models.Put, 0.50, 0.60, 40, 80),
		makeContract(80, models.Call, 20.00, 20.50, 40, 80),
	})

	selected := f.FilterChainDeltaFocused(chain)
	if len(selected) != 4 {
		t.Fatalf("expected 4 contracts from expanded band, got %d", len(selected))
	}
	if _, ok := selected[models.ContractKey(80, models.Call)]; ok {
		t.Error("80 strike lies outside even the expanded moneyness band")
	}
}

func TestDeltaFocusedNoExpansionWhenEnough(t *testing.T) {
	f := NewFilter(DefaultThresholds())
	var contracts []models.Contract
	// Four contracts inside the target band plus one that only the expanded
	// band would admit.
	for _, strike := range []float64{100, 105} {
		contracts = append(contracts,
			makeContract(strike, models.Call, 2.40, 2.60, 40, 80),
			makeContract(strike, models.Put, 2.40, 2.60, 40, 80),
		)
	}
	contracts = append(contracts, makeContract(112, models.Call, 0.80, 0.90, 40, 80))
	chain := makeChain(t, 30, 100, contracts)

	selected := f.FilterChainDeltaFocused(chain)
	if _, ok := selected[models.ContractKey(112, models.Call)]; ok {
		t.Error("expansion ran despite enough primary-band contracts")
	}
}

func TestDeltaFocusedRelaxedCriteria(t *testing.T) {
	f := NewFilter(DefaultThresholds())
	// Volume 3 and OI 6 fail the strict floors (50/100) but clear the
	// relaxed ones (50/20=2, 100/20=5).
	c := makeContract(102, models.Call, 1.00, 1.30, 3, 6)

	if strict := f.Evaluate(c); strict.IsLiquid {
		t.Fatal("contract should fail strict criteria")
	}

	score := f.evaluateDeltaFocused(c, 1.0)
	if !score.IsLiquid {
		t.Fatalf("expected liquid under relaxed criteria, reasons: %v", ReasonStrings(score.Reasons))
	}
	if len(score.Reasons) != 1 || score.Reasons[0].Code != ReasonMeetsDeltaFocused {
		t.Errorf("expected single ReasonMeetsDeltaFocused, got %v", ReasonStrings(score.Reasons))
	}
}

func TestDeltaFocusedRejectsUnquoted(t *testing.T) {
	f := NewFilter(DefaultThresholds())
	c := makeContract(100, models.Call, 0, 0, 40, 80)

	score := f.evaluateDeltaFocused(c, 0)
	if score.IsLiquid {
		t.Fatal("expected not liquid without any quote")
	}
	if !HasCode(score.Reasons, ReasonNoQuote) {
		t.Errorf("expected ReasonNoQuote, got %v", ReasonStrings(score.Reasons))
	}
}

func TestDeltaFocusedBonusFavorsATM(t *testing.T) {
	f := NewFilter(DefaultThresholds())
	atm := makeContract(100, models.Call, 2.40, 2.60, 40, 80)
	away := makeContract(105, models.Call, 2.40, 2.60, 40, 80)

	atmScore := f.evaluateDeltaFocused(atm, 0)
	awayScore := f.evaluateDeltaFocused(away, 2.5)
	if atmScore.OverallScore <= awayScore.OverallScore {
		t.Errorf("ATM bonus missing: %v <= %v", atmScore.OverallScore, awayScore.OverallScore)
	}
}

func TestDeltaFocusedRespectsDTEWindow(t *testing.T) {
	f := NewFilter(DefaultThresholds())
	contracts := []models.Contract{makeContract(100, models.Call, 2.40, 2.60, 40, 80)}

	chain := makeChain(t, 3, 100, contracts)
	if got := f.FilterChainDeltaFocused(chain); len(got) != 0 {
		t.Errorf("DTE 3: expected empty selection, got %d", len(got))
	}
}
