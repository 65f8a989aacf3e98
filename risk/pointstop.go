package risk

import (
	"math"

	"stockwatch/market"
)

// VolatilityStop is a stateless point-in-time stop computed from a current
// price and a single ATR reading.
type VolatilityStop struct {
	ATR                float64 `json:"atr"`
	StopLoss           float64 `json:"stopLoss"`
	StopLossPercentage float64 `json:"stopLossPercentage"`
	Recommendation     Signal  `json:"recommendation"`
}

// StopPolicy selects which recommendations PointStop may emit. Two call
// sites historically diverged on whether a BUY is ever recommended; the
// difference is kept as an explicit flag rather than collapsed.
type StopPolicy struct {
	// AllowBuySignal enables the BUY recommendation for tight stops
	// (distance < 3%). When false the tight-stop case degrades to HOLD.
	AllowBuySignal bool

	// ForceSell overrides the distance checks entirely.
	ForceSell bool
}

// DefaultStopPolicy allows the full HOLD/BUY/SELL range.
func DefaultStopPolicy() StopPolicy {
	return StopPolicy{AllowBuySignal: true}
}

// PointStop computes a volatility stop for a single quote.
//
// stopLoss = price - atr*multiplier. The recommendation is SELL when the
// stop sits more than 10% below price (or policy.ForceSell is set), BUY when
// it sits within 3% and the policy allows buys, HOLD otherwise.
func PointStop(price, atr, multiplier float64, policy StopPolicy) (VolatilityStop, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return VolatilityStop{}, market.Errorf("current price must be finite and positive, got %v", price)
	}
	if math.IsNaN(atr) || math.IsInf(atr, 0) || atr < 0 {
		return VolatilityStop{}, market.Errorf("atr must be finite and non-negative, got %v", atr)
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return VolatilityStop{}, market.Errorf("atr multiplier must be finite and positive, got %v", multiplier)
	}

	stopLoss := price - atr*multiplier
	pct := (price - stopLoss) / price * 100

	rec := SignalHold
	switch {
	case policy.ForceSell:
		rec = SignalSell
	case pct > 10:
		rec = SignalSell
	case pct < 3 && policy.AllowBuySignal:
		rec = SignalBuy
	}

	return VolatilityStop{
		ATR:                atr,
		StopLoss:           stopLoss,
		StopLossPercentage: pct,
		Recommendation:     rec,
	}, nil
}

// Rounded returns a copy with the numeric fields rounded to the given number
// of decimal places, for display and alert payloads.
func (v VolatilityStop) Rounded(places int) VolatilityStop {
	v.ATR = market.RoundTo(v.ATR, places)
	v.StopLoss = market.RoundTo(v.StopLoss, places)
	v.StopLossPercentage = market.RoundTo(v.StopLossPercentage, places)
	return v
}

// Rounded returns a copy with the numeric fields rounded for display.
func (p TrailingStopPoint) Rounded(places int) TrailingStopPoint {
	p.Close = market.RoundTo(p.Close, places)
	p.ATR = market.RoundTo(p.ATR, places)
	p.StopLoss = market.RoundTo(p.StopLoss, places)
	p.StopLossPercentage = market.RoundTo(p.StopLossPercentage, places)
	return p
}
