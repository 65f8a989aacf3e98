package market

import "math"

// RoundTo rounds v to the given number of decimal places. Rounding is a
// post-processing step applied to already-computed results; calculators keep
// full precision internally.
func RoundTo(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
