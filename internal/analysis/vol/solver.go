package vol

import (
	"math"

	"ff-scanner/internal/errors"
	"ff-scanner/internal/models"
)

const (
	// Plausibility band for an accepted IV: 1% to 300% annualized. These are
	// defensive bounds against numerically degenerate inputs, not a claim
	// that such volatilities cannot exist.
	MinIV = 0.01
	MaxIV = 3.0

	// Search bracket, deliberately wider than the accepted band so the
	// post-check rejects out-of-band results instead of the bracket clamping
	// them to a plausible-looking edge value.
	bracketLow  = 1e-4
	bracketHigh = 4.0

	maxNewtonIterations = 50
	maxBisectIterations = 200
	relPriceTolerance   = 1e-9
)

// MidPrice returns the best available price estimate for a contract:
// (bid+ask)/2 when both sides are valid and crossed correctly, otherwise the
// last trade, otherwise ErrNoUsablePrice. Every price fed into the solver
// goes through this helper so the selection rule is applied uniformly.
func MidPrice(bid, ask, last float64) (float64, error) {
	if bid > 0 && ask > 0 && ask > bid {
		return (bid + ask) / 2.0, nil
	}
	if last > 0 {
		return last, nil
	}
	return 0, errors.ErrNoUsablePrice
}

// DaysToYears converts whole days to expiration into year fractions using a
// 365-day calendar. A deliberate simplification, applied consistently.
func DaysToYears(days int) float64 {
	return float64(days) / 365.0
}

// SolveIV inverts the Black-Scholes formula to recover the implied volatility
// matching an observed option price. Newton-Raphson on the analytic vega with
// a bracketed bisection fallback. Returns an error, never panics, for every
// expected data-quality failure: non-positive inputs, prices below intrinsic
// value, non-convergence and implausible results.
func SolveIV(price, spot, strike, timeYears, rate float64, typ models.OptionType) (float64, error) {
	if price <= 0 || spot <= 0 || strike <= 0 || timeYears <= 0 {
		return 0, errors.ErrNonPositiveInput
	}

	// No non-negative volatility can price an option below exercise value.
	if price < Intrinsic(spot, strike, typ) {
		return 0, errors.ErrPriceBelowIntrinsic
	}

	iv, err := solve(price, spot, strike, timeYears, rate, typ)
	if err != nil {
		return 0, err
	}

	if iv < MinIV || iv > MaxIV {
		return 0, errors.ErrIVOutOfRange
	}
	return iv, nil
}

func solve(price, spot, strike, timeYears, rate float64, typ models.OptionType) (float64, error) {
	tol := relPriceTolerance * price

	// Brenner-Subrahmanyam starting point for the ATM-ish case.
	sigma := math.Sqrt(2*math.Pi/timeYears) * price / spot
	if sigma < bracketLow {
		sigma = bracketLow
	}
	if sigma > bracketHigh {
		sigma = bracketHigh
	}

	for i := 0; i < maxNewtonIterations; i++ {
		diff := Price(spot, strike, timeYears, rate, sigma, typ) - price
		if math.Abs(diff) <= tol {
			return sigma, nil
		}

		vega := Vega(spot, strike, timeYears, rate, sigma)
		if vega < 1e-10 {
			break
		}

		next := sigma - diff/vega
		if next <= bracketLow || next >= bracketHigh {
			break
		}
		if math.Abs(next-sigma) < 1e-12 {
			return next, nil
		}
		sigma = next
	}

	return bisect(price, spot, strike, timeYears, rate, typ, tol)
}

// bisect falls back to bracketed bisection. Price is strictly increasing in
// sigma, so a root inside the bracket is unique.
func bisect(price, spot, strike, timeYears, rate float64, typ models.OptionType, tol float64) (float64, error) {
	low, high := bracketLow, bracketHigh
	fLow := Price(spot, strike, timeYears, rate, low, typ) - price
	fHigh := Price(spot, strike, timeYears, rate, high, typ) - price

	if fLow > 0 || fHigh < 0 {
		return 0, errors.ErrNoConvergence
	}

	for i := 0; i < maxBisectIterations; i++ {
		mid := 0.5 * (low + high)
		fMid := Price(spot, strike, timeYears, rate, mid, typ) - price

		if math.Abs(fMid) <= tol || high-low < 1e-10 {
			return mid, nil
		}
		if fMid > 0 {
			high = mid
		} else {
			low = mid
		}
	}

	return 0, errors.ErrNoConvergence
}
