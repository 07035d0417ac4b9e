// Package models defines the domain types shared across the scanner.
package models

import (
	"fmt"
	"sort"
	"strings"

	"ff-scanner/internal/errors"
)

// OptionType identifies a contract as a call or a put.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// Greeks holds provider-supplied greeks. The core never computes these; they
// are carried through untouched for downstream consumers.
type Greeks struct {
	Delta *float64 `json:"delta,omitempty"`
	Gamma *float64 `json:"gamma,omitempty"`
	Theta *float64 `json:"theta,omitempty"`
	Vega  *float64 `json:"vega,omitempty"`
}

// Contract represents a single quoted option contract. Immutable once built.
type Contract struct {
	Ticker     string     `json:"ticker"`
	Expiration string     `json:"expiration"`
	Strike     float64    `json:"strike"`
	Type       OptionType `json:"type"`
	Bid        float64    `json:"bid"`
	Ask        float64    `json:"ask"`
	Last       float64    `json:"last"`
	Volume     int64      `json:"volume"`
	OpenInt    int64      `json:"open_interest"`

	// ImpliedVol is the provider-quoted IV (decimal). The pipeline recomputes
	// its own IV from prices; this value is a fallback for display only.
	ImpliedVol float64 `json:"implied_volatility"`
	Greeks     Greeks  `json:"greeks"`
}

// Key returns the composite contract key, e.g. "100_CALL".
func (c Contract) Key() string {
	return ContractKey(c.Strike, c.Type)
}

// ContractKey builds the composite (strike, type) key used to index a chain.
func ContractKey(strike float64, typ OptionType) string {
	return fmt.Sprintf("%g_%s", strike, typ)
}

// Chain holds every quoted contract for one underlying and expiration.
// Built once per retrieval and never mutated afterwards.
type Chain struct {
	Ticker          string              `json:"ticker"`
	ExpirationDate  string              `json:"expiration_date"`
	DTE             int                 `json:"days_to_expiration"`
	UnderlyingPrice float64             `json:"underlying_price"`
	Contracts       map[string]Contract `json:"contracts"`
}

// NewChain builds a chain from a contract slice. Duplicate (strike, type)
// pairs are a contract violation and reported as an error.
func NewChain(ticker, expiration string, dte int, underlying float64, contracts []Contract) (*Chain, error) {
	if underlying <= 0 {
		return nil, errors.NewValidationError("underlying_price", underlying, "must be positive")
	}
	if dte < 0 {
		return nil, errors.NewValidationError("days_to_expiration", dte, "must be non-negative")
	}

	m := make(map[string]Contract, len(contracts))
	for _, c := range contracts {
		key := c.Key()
		if _, ok := m[key]; ok {
			return nil, errors.NewValidationError("contracts", key,
				fmt.Sprintf("duplicate contract key in %s %s chain", ticker, expiration))
		}
		m[key] = c
	}

	return &Chain{
		Ticker:          ticker,
		ExpirationDate:  expiration,
		DTE:             dte,
		UnderlyingPrice: underlying,
		Contracts:       m,
	}, nil
}

// SortedKeys returns contract keys ordered by strike, calls before puts at the
// same strike. Map iteration order is random in Go; every pass over a chain
// goes through this so results are deterministic.
func (ch *Chain) SortedKeys() []string {
	keys := make([]string, 0, len(ch.Contracts))
	for k := range ch.Contracts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := ch.Contracts[keys[i]], ch.Contracts[keys[j]]
		if a.Strike != b.Strike {
			return a.Strike < b.Strike
		}
		return a.Type < b.Type
	})
	return keys
}

// TotalVolume sums contract volume across the chain.
func (ch *Chain) TotalVolume() int64 {
	var total int64
	for _, c := range ch.Contracts {
		total += c.Volume
	}
	return total
}

// SortChainsByDTE orders chains by ascending days to expiration.
func SortChainsByDTE(chains []*Chain) {
	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].DTE < chains[j].DTE
	})
}

// ParseOptionType normalizes a type string to Call or Put.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CALL":
		return Call, nil
	case "P", "PUT":
		return Put, nil
	}
	return "", fmt.Errorf("unknown option type %q", s)
}
