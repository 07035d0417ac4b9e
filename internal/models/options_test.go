package models

import (
	"testing"

	"ff-scanner/internal/errors"
)

func TestContractKey(t *testing.T) {
	tests := []struct {
		strike float64
		typ    OptionType
		want   string
	}{
		{100, Call, "100_CALL"},
		{102.5, Put, "102.5_PUT"},
		{7.5, Call, "7.5_CALL"},
	}
	for _, tt := range tests {
		if got := ContractKey(tt.strike, tt.typ); got != tt.want {
			t.Errorf("ContractKey(%v, %s) = %q, want %q", tt.strike, tt.typ, got, tt.want)
		}
	}
}

func TestNewChainValidation(t *testing.T) {
	contracts := []Contract{{Strike: 100, Type: Call}}

	if _, err := NewChain("TEAM", "2026-09-26", 30, 0, contracts); err == nil {
		t.Error("expected error for zero underlying")
	}
	if _, err := NewChain("TEAM", "2026-09-26", -1, 100, contracts); err == nil {
		t.Error("expected error for negative DTE")
	}

	dup := []Contract{
		{Strike: 100, Type: Call},
		{Strike: 100, Type: Call},
	}
	err := func() error {
		_, err := NewChain("TEAM", "2026-09-26", 30, 100, dup)
		return err
	}()
	if err == nil {
		t.Error("expected error for duplicate contract key")
	}
	var verr *errors.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error %v is not a ValidationError", err)
	} else if verr.Field != "contracts" {
		t.Errorf("ValidationError field = %s, want contracts", verr.Field)
	}

	chain, err := NewChain("TEAM", "2026-09-26", 30, 100, contracts)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if len(chain.Contracts) != 1 {
		t.Errorf("got %d contracts, want 1", len(chain.Contracts))
	}
}

func TestSortedKeysOrdering(t *testing.T) {
	chain, err := NewChain("TEAM", "2026-09-26", 30, 100, []Contract{
		{Strike: 105, Type: Put},
		{Strike: 100, Type: Put},
		{Strike: 100, Type: Call},
		{Strike: 95, Type: Call},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	want := []string{"95_CALL", "100_CALL", "100_PUT", "105_PUT"}
	got := chain.SortedKeys()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSortChainsByDTE(t *testing.T) {
	mk := func(dte int) *Chain {
		ch, err := NewChain("TEAM", "2026-09-26", dte, 100, nil)
		if err != nil {
			t.Fatalf("NewChain: %v", err)
		}
		return ch
	}
	chains := []*Chain{mk(90), mk(30), mk(60)}
	SortChainsByDTE(chains)
	for i, want := range []int{30, 60, 90} {
		if chains[i].DTE != want {
			t.Errorf("chains[%d].DTE = %d, want %d", i, chains[i].DTE, want)
		}
	}
}

func TestParseOptionType(t *testing.T) {
	for _, s := range []string{"CALL", "call", " C "} {
		typ, err := ParseOptionType(s)
		if err != nil || typ != Call {
			t.Errorf("ParseOptionType(%q) = %v, %v", s, typ, err)
		}
	}
	typ, err := ParseOptionType("put")
	if err != nil || typ != Put {
		t.Errorf("ParseOptionType(put) = %v, %v", typ, err)
	}
	if _, err := ParseOptionType("straddle"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestTotalVolume(t *testing.T) {
	chain, err := NewChain("TEAM", "2026-09-26", 30, 100, []Contract{
		{Strike: 95, Type: Call, Volume: 120},
		{Strike: 100, Type: Call, Volume: 80},
		{Strike: 100, Type: Put, Volume: 50},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if got := chain.TotalVolume(); got != 250 {
		t.Errorf("TotalVolume = %d, want 250", got)
	}
}
