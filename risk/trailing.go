// Package risk derives stop-loss levels and exit/entry signals from price
// and volatility data: a full ATR trailing-stop replay over a series and a
// stateless point-in-time volatility stop.
package risk

import (
	"math"

	"stockwatch/indicators"
	"stockwatch/market"
)

// Trend is the direction the trailing stop is currently following.
type Trend string

// Signal is an actionable recommendation attached to a bar or quote.
type Signal string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"

	SignalHold Signal = "HOLD"
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

// TrailingStopPoint is one bar of the trailing-stop replay. StopLoss and
// Trend depend only on the immediately preceding point; there is no
// look-ahead.
type TrailingStopPoint struct {
	Date               string  `json:"date"`
	Close              float64 `json:"close"`
	ATR                float64 `json:"atr"`
	StopLoss           float64 `json:"stopLoss"`
	StopLossPercentage float64 `json:"stopLossPercentage"`
	Trend              Trend   `json:"trend"`
	Signal             Signal  `json:"signal"`
}

// TrailingStops replays the ATR trailing-stop state machine over the series.
//
// Each bar carries two candidate levels: close - multiplier*atr (the floor
// while trending up) and close + multiplier*atr (the ceiling while trending
// down). In an uptrend the stop only ratchets upward; a close below it emits
// SELL, flips the trend, and the stop is recomputed from the ceiling on that
// same bar. The downtrend case mirrors it with BUY. The first bar starts the
// machine in an uptrend with a HOLD.
func TrailingStops(series []market.Candle, atrPeriod int, multiplier float64) ([]TrailingStopPoint, error) {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return nil, market.Errorf("atr multiplier must be finite and positive, got %v", multiplier)
	}

	atrs, err := indicators.ATRSeries(series, atrPeriod)
	if err != nil {
		return nil, err
	}

	// bars[i] pairs with atrs[i]; the warm-up bars before index atrPeriod
	// carry no ATR and are not replayed.
	bars := series[atrPeriod:]

	points := make([]TrailingStopPoint, 0, len(bars))
	var (
		trend    Trend
		stopLoss float64
	)

	for i, bar := range bars {
		atr := atrs[i].ATR
		stopUp := bar.Close - multiplier*atr
		stopDown := bar.Close + multiplier*atr
		signal := SignalHold

		switch {
		case i == 0:
			trend = TrendUp
			stopLoss = stopUp

		case trend == TrendUp:
			stopLoss = math.Max(stopLoss, stopUp)
			if bar.Close < stopLoss {
				signal = SignalSell
				trend = TrendDown
				stopLoss = stopDown
			}

		default: // TrendDown
			stopLoss = math.Min(stopLoss, stopDown)
			if bar.Close > stopLoss {
				signal = SignalBuy
				trend = TrendUp
				stopLoss = stopUp
			}
		}

		pct := 0.0
		if bar.Close != 0 {
			pct = math.Abs(bar.Close-stopLoss) / bar.Close * 100
		}

		points = append(points, TrailingStopPoint{
			Date:               bar.Date,
			Close:              bar.Close,
			ATR:                atr,
			StopLoss:           stopLoss,
			StopLossPercentage: pct,
			Trend:              trend,
			Signal:             signal,
		})
	}

	return points, nil
}
