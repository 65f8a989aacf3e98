// Package indicators provides the technical calculations behind the signal
// engine: true range / ATR volatility series and simple moving averages.
// All functions are pure and safe for concurrent use.
package indicators

import (
	"math"

	"stockwatch/market"
)

// ATRPoint is one bar of the Average True Range series, aligned to the
// candle at the same date once the warm-up period has elapsed.
type ATRPoint struct {
	Date string  `json:"date"`
	ATR  float64 `json:"atr"`
}

// TrueRange returns the True Range of the current candle relative to the
// previous close: the largest of high-low, |high-prevClose|, |low-prevClose|.
func TrueRange(cur, prev market.Candle) float64 {
	highLow := cur.High - cur.Low
	highClose := math.Abs(cur.High - prev.Close)
	lowClose := math.Abs(cur.Low - prev.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}

// ATRSeries computes the Average True Range series for the given period.
//
// The series must be valid and hold at least period+1 candles (true range
// needs a previous close). The first ATR value is the simple average of the
// first `period` true ranges, anchored to the candle at index `period`;
// subsequent values use Wilder smoothing:
//
//	atr[i] = (atr[i-1]*(period-1) + tr[i]) / period
//
// A perfectly flat series yields ATR = 0 for every bar.
func ATRSeries(series []market.Candle, period int) ([]ATRPoint, error) {
	if period <= 0 {
		return nil, market.Errorf("atr period must be positive, got %d", period)
	}
	if len(series) < period+1 {
		return nil, market.Errorf("not enough candles for ATR(%d): need %d, got %d",
			period, period+1, len(series))
	}
	if err := market.Validate(series); err != nil {
		return nil, err
	}

	trueRanges := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		trueRanges = append(trueRanges, TrueRange(series[i], series[i-1]))
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trueRanges[i]
	}
	atr := sum / float64(period)

	points := make([]ATRPoint, 0, len(trueRanges)-period+1)
	points = append(points, ATRPoint{Date: series[period].Date, ATR: atr})

	for i := period; i < len(trueRanges); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
		points = append(points, ATRPoint{Date: series[i+1].Date, ATR: atr})
	}

	return points, nil
}

// LastATR returns only the most recent ATR value. It is a thin wrapper over
// ATRSeries for callers that need a single point-in-time reading.
func LastATR(series []market.Candle, period int) (ATRPoint, error) {
	points, err := ATRSeries(series, period)
	if err != nil {
		return ATRPoint{}, err
	}
	return points[len(points)-1], nil
}
