// Package vol provides Black-Scholes pricing and implied volatility inversion.
package vol

import (
	"math"

	"ff-scanner/internal/models"
)

// DefaultRiskFreeRate is the annualized risk-free rate used when the caller
// does not supply one.
const DefaultRiskFreeRate = 0.05

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// Price returns the Black-Scholes price of a European option.
// spot, strike and timeYears must be positive; sigma is the annualized
// volatility as a decimal.
func Price(spot, strike, timeYears, rate, sigma float64, typ models.OptionType) float64 {
	sqrtT := math.Sqrt(timeYears)
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*timeYears) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	discount := math.Exp(-rate * timeYears)
	if typ == models.Call {
		return spot*normCDF(d1) - strike*discount*normCDF(d2)
	}
	return strike*discount*normCDF(-d2) - spot*normCDF(-d1)
}

// Vega returns the Black-Scholes vega (identical for calls and puts).
func Vega(spot, strike, timeYears, rate, sigma float64) float64 {
	sqrtT := math.Sqrt(timeYears)
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*timeYears) / (sigma * sqrtT)
	return spot * normPDF(d1) * sqrtT
}

// Intrinsic returns the exercise value of an option at the current spot.
func Intrinsic(spot, strike float64, typ models.OptionType) float64 {
	if typ == models.Call {
		return math.Max(0, spot-strike)
	}
	return math.Max(0, strike-spot)
}
