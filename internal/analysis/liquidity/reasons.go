// Package liquidity scores and filters option contracts by tradability.
package liquidity

import "fmt"

// ReasonCode identifies a liquidity evaluation outcome. Reasons are tagged
// values rather than free-form strings so callers and tests can match on the
// cause instead of message content.
type ReasonCode int

const (
	// ReasonMeetsAll marks a contract passing every strict criterion.
	ReasonMeetsAll ReasonCode = iota
	// ReasonMeetsDeltaFocused marks a contract passing the relaxed
	// delta-focused criteria.
	ReasonMeetsDeltaFocused
	ReasonLowVolume
	ReasonLowOpenInterest
	ReasonInvalidQuotes
	ReasonWideSpreadPct
	ReasonWideSpreadAbs
	ReasonLowBid
	ReasonLowAsk
	ReasonLowMidPrice
	ReasonLowVolumeOIRatio
	ReasonNoQuote
	ReasonExtremeSpreadPct
	ReasonExtremeLowMid
)

// Reason is one evaluation outcome with its offending value and the threshold
// it was compared against, where applicable.
type Reason struct {
	Code  ReasonCode
	Value float64
	Limit float64
}

func (r Reason) String() string {
	switch r.Code {
	case ReasonMeetsAll:
		return "Meets all liquidity criteria"
	case ReasonMeetsDeltaFocused:
		return fmt.Sprintf("Meets delta-focused criteria (delta ~%.0f)", r.Value)
	case ReasonLowVolume:
		return fmt.Sprintf("Low volume: %d < %d", int64(r.Value), int64(r.Limit))
	case ReasonLowOpenInterest:
		return fmt.Sprintf("Low OI: %d < %d", int64(r.Value), int64(r.Limit))
	case ReasonInvalidQuotes:
		return "Invalid bid/ask prices"
	case ReasonWideSpreadPct:
		return fmt.Sprintf("Wide spread: %.1f%% > %g%%", r.Value, r.Limit)
	case ReasonWideSpreadAbs:
		return fmt.Sprintf("Wide spread: $%.2f > $%g", r.Value, r.Limit)
	case ReasonLowBid:
		return fmt.Sprintf("Low bid: $%.2f < $%g", r.Value, r.Limit)
	case ReasonLowAsk:
		return fmt.Sprintf("Low ask: $%.2f < $%g", r.Value, r.Limit)
	case ReasonLowMidPrice:
		return fmt.Sprintf("Low mid price: $%.2f < $%g", r.Value, r.Limit)
	case ReasonLowVolumeOIRatio:
		return fmt.Sprintf("Low volume/OI ratio: %.2f < %g", r.Value, r.Limit)
	case ReasonNoQuote:
		return "No bid or ask price"
	case ReasonExtremeSpreadPct:
		return fmt.Sprintf("Extremely wide spread: %.1f%% > %g%%", r.Value, r.Limit)
	case ReasonExtremeLowMid:
		return fmt.Sprintf("Extremely low mid price: $%.4f", r.Value)
	}
	return fmt.Sprintf("unknown reason code %d", int(r.Code))
}

// HasCode reports whether any reason in the list carries the given code.
func HasCode(reasons []Reason, code ReasonCode) bool {
	for _, r := range reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

// ReasonStrings renders a reason list for display.
func ReasonStrings(reasons []Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.String()
	}
	return out
}
