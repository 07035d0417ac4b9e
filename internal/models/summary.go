package models

// OpportunitySummary is the flat record exported for each opportunity. Field
// order matches the CSV column order the report writer emits.
type OpportunitySummary struct {
	Ticker             string  `json:"ticker" csv:"ticker"`
	Timeframe          string  `json:"timeframe" csv:"timeframe"`
	UnderlyingPrice    float64 `json:"underlying_price" csv:"underlying_price"`
	OpportunityType    string  `json:"opportunity_type" csv:"opportunity_type"`
	ConfidenceScore    float64 `json:"confidence_score" csv:"confidence_score"`
	ForwardFactorPct   float64 `json:"forward_factor_pct" csv:"forward_factor_pct"`
	ForwardVolPct      float64 `json:"forward_volatility_pct" csv:"forward_volatility_pct"`
	NearTermDTE        int     `json:"near_term_dte" csv:"near_term_dte"`
	NextTermDTE        int     `json:"next_term_dte" csv:"next_term_dte"`
	NearTermIV         float64 `json:"near_term_iv" csv:"near_term_iv"`
	NextTermIV         float64 `json:"next_term_iv" csv:"next_term_iv"`
	NearLiquidityCount int     `json:"near_term_liquidity_count" csv:"near_term_liquidity_count"`
	NextLiquidityCount int     `json:"next_term_liquidity_count" csv:"next_term_liquidity_count"`
	PrimaryReason      string  `json:"primary_reason" csv:"primary_reason"`
}
