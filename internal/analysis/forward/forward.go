// Package forward implements the variance-weighted forward volatility and
// Forward Factor calculation between two option terms.
//
// Forward variance identity, with T = DTE/365 and sigma as a decimal:
//
//	sigma_fwd = sqrt((sigma2^2*T2 - sigma1^2*T1) / (T2 - T1))
//	FF        = (sigma1 - sigma_fwd) / sigma_fwd
package forward

import (
	"fmt"
	"math"

	"ff-scanner/internal/analysis/vol"
)

// Cause identifies why a calculation was rejected. Callers branch on the
// cause; ErrorMessage carries the human-readable detail.
type Cause int

const (
	// CauseNone marks a valid result.
	CauseNone Cause = iota
	// CauseTermOrder: near-term DTE not strictly less than next-term DTE.
	CauseTermOrder
	// CauseNonPositiveIV: either IV is zero or negative.
	CauseNonPositiveIV
	// CauseNonFiniteIV: either IV is NaN or infinite.
	CauseNonFiniteIV
	// CausePercentScaleIV: an IV above 3.0, almost certainly a percentage
	// passed where a decimal was expected.
	CausePercentScaleIV
	// CauseNonPositiveTimeDiff: year fractions collapse to a non-positive
	// difference.
	CauseNonPositiveTimeDiff
	// CauseNonPositiveForwardVariance: the term structure implies a negative
	// or zero forward variance, so no real forward volatility exists.
	CauseNonPositiveForwardVariance
	// CauseZeroForwardVol: forward volatility of exactly zero leaves the
	// ratio undefined.
	CauseZeroForwardVol
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseTermOrder:
		return "term_order"
	case CauseNonPositiveIV:
		return "non_positive_iv"
	case CauseNonFiniteIV:
		return "non_finite_iv"
	case CausePercentScaleIV:
		return "percent_scale_iv"
	case CauseNonPositiveTimeDiff:
		return "non_positive_time_diff"
	case CauseNonPositiveForwardVariance:
		return "non_positive_forward_variance"
	case CauseZeroForwardVol:
		return "zero_forward_vol"
	}
	return fmt.Sprintf("cause(%d)", int(c))
}

// Result carries the Forward Factor calculation outcome. Invalid inputs
// produce a Result with IsValid false and a populated Cause, never a panic:
// bad market data is an expected condition, not a program error.
type Result struct {
	ForwardFactor    float64 `json:"forward_factor"`
	ForwardFactorPct float64 `json:"forward_factor_percent"`
	// ForwardVolatility is the annualized forward vol as a decimal, zero
	// when invalid.
	ForwardVolatility float64 `json:"forward_volatility"`
	NearTermDTE       int     `json:"near_term_dte"`
	NextTermDTE       int     `json:"next_term_dte"`
	NearTermIV        float64 `json:"near_term_iv"`
	NextTermIV        float64 `json:"next_term_iv"`
	IsValid           bool    `json:"is_valid"`
	Cause             Cause   `json:"-"`
	ErrorMessage      string  `json:"error_message,omitempty"`
}

func invalid(dte1 int, iv1 float64, dte2 int, iv2 float64, cause Cause, msg string) Result {
	return Result{
		NearTermDTE:  dte1,
		NextTermDTE:  dte2,
		NearTermIV:   iv1,
		NextTermIV:   iv2,
		Cause:        cause,
		ErrorMessage: msg,
	}
}

// Compute derives the Forward Factor between a near and a next option term.
// IVs are annualized decimals (0.25 means 25%). Validation runs in a fixed
// order so a given bad input always reports the same cause.
func Compute(dte1 int, iv1 float64, dte2 int, iv2 float64) Result {
	if dte1 >= dte2 {
		return invalid(dte1, iv1, dte2, iv2, CauseTermOrder,
			fmt.Sprintf("Near term DTE (%d) must be less than next term DTE (%d)", dte1, dte2))
	}
	if iv1 <= 0 || iv2 <= 0 {
		return invalid(dte1, iv1, dte2, iv2, CauseNonPositiveIV,
			fmt.Sprintf("Invalid IV values: near=%.4f, next=%.4f", iv1, iv2))
	}
	if !isFinite(iv1) || !isFinite(iv2) {
		return invalid(dte1, iv1, dte2, iv2, CauseNonFiniteIV,
			"Invalid IV values (not finite numbers)")
	}
	// Decimals above the solver's accepted band are almost certainly
	// percentages that skipped the /100 conversion.
	if iv1 > vol.MaxIV || iv2 > vol.MaxIV {
		return invalid(dte1, iv1, dte2, iv2, CausePercentScaleIV,
			fmt.Sprintf("IV values appear to be percentages instead of decimals (iv1=%.2f, iv2=%.2f). "+
				"Expected decimal format (e.g., 0.25 for 25%%). Convert by dividing by 100.", iv1, iv2))
	}

	t1 := vol.DaysToYears(dte1)
	t2 := vol.DaysToYears(dte2)
	timeDiff := t2 - t1
	if timeDiff <= 0 {
		return invalid(dte1, iv1, dte2, iv2, CauseNonPositiveTimeDiff,
			"Time difference must be positive")
	}

	forwardVariance := (iv2*iv2*t2 - iv1*iv1*t1) / timeDiff
	if forwardVariance <= 0 {
		return invalid(dte1, iv1, dte2, iv2, CauseNonPositiveForwardVariance,
			fmt.Sprintf("Forward variance is negative or zero: %.6f", forwardVariance))
	}

	forwardVol := math.Sqrt(forwardVariance)
	if forwardVol == 0 {
		return invalid(dte1, iv1, dte2, iv2, CauseZeroForwardVol,
			"Forward volatility is zero - cannot calculate Forward Factor")
	}

	ff := (iv1 - forwardVol) / forwardVol
	return Result{
		ForwardFactor:     ff,
		ForwardFactorPct:  ff * 100,
		ForwardVolatility: forwardVol,
		NearTermDTE:       dte1,
		NextTermDTE:       dte2,
		NearTermIV:        iv1,
		NextTermIV:        iv2,
		IsValid:           true,
		Cause:             CauseNone,
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
