package risk

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/market"
)

func day(i int) string {
	return fmt.Sprintf("2025-%02d-%02d", 1+i/28, 1+i%28)
}

// barsFromCloses builds a series with a fixed 2-point range around each close.
func barsFromCloses(closes ...float64) []market.Candle {
	series := make([]market.Candle, len(closes))
	for i, c := range closes {
		series[i] = market.Candle{Date: day(i), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	return series
}

func TestTrailingStopsFirstBar(t *testing.T) {
	series := barsFromCloses(100, 101, 102, 103, 104, 105, 106)
	points, err := TrailingStops(series, 5, 2.0)
	require.NoError(t, err)
	require.Len(t, points, 2)

	first := points[0]
	assert.Equal(t, TrendUp, first.Trend)
	assert.Equal(t, SignalHold, first.Signal)
	assert.InDelta(t, first.Close-2*first.ATR, first.StopLoss, 1e-9)
}

func TestTrailingStopsMonotoneWithinTrend(t *testing.T) {
	// rally, crash, recovery: exercises both trend directions
	closes := []float64{
		100, 102, 104, 106, 108, 110, 112, 114, 116, 118,
		120, 110, 100, 95, 90, 85, 80, 82, 84, 95,
		105, 110, 115, 120, 125,
	}
	points, err := TrailingStops(barsFromCloses(closes...), 5, 2.0)
	require.NoError(t, err)
	require.NotEmpty(t, points)

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if prev.Trend == TrendUp && cur.Trend == TrendUp {
			assert.GreaterOrEqual(t, cur.StopLoss, prev.StopLoss,
				"uptrend stop must not retreat at %s", cur.Date)
		}
		if prev.Trend == TrendDown && cur.Trend == TrendDown {
			assert.LessOrEqual(t, cur.StopLoss, prev.StopLoss,
				"downtrend stop must not retreat at %s", cur.Date)
		}
	}
}

func TestTrailingStopsSignalDomain(t *testing.T) {
	closes := []float64{
		50, 55, 60, 58, 40, 35, 30, 45, 60, 62,
		61, 40, 39, 38, 60, 61, 62, 63, 64, 65,
	}
	points, err := TrailingStops(barsFromCloses(closes...), 5, 2.0)
	require.NoError(t, err)

	for _, p := range points {
		assert.Contains(t, []Trend{TrendUp, TrendDown}, p.Trend)
		assert.Contains(t, []Signal{SignalHold, SignalBuy, SignalSell}, p.Signal)
		assert.GreaterOrEqual(t, p.StopLossPercentage, 0.0)
	}
}

func TestTrailingStopsSellFlip(t *testing.T) {
	// steady rise then a crash far below any plausible stop
	closes := []float64{100, 101, 102, 103, 104, 105, 106, 107, 60, 55}
	points, err := TrailingStops(barsFromCloses(closes...), 5, 2.0)
	require.NoError(t, err)

	var sell *TrailingStopPoint
	for i := range points {
		if points[i].Signal == SignalSell {
			sell = &points[i]
			break
		}
	}
	require.NotNil(t, sell, "crash must trigger a SELL")
	assert.Equal(t, TrendDown, sell.Trend)
	// stop is recomputed from the ceiling on the flip bar itself
	assert.InDelta(t, sell.Close+2*sell.ATR, sell.StopLoss, 1e-9)
}

func TestTrailingStopsBuyFlip(t *testing.T) {
	// decline, then a sharp recovery above the falling ceiling
	closes := []float64{100, 98, 96, 94, 92, 90, 88, 86, 84, 82, 130, 135}
	points, err := TrailingStops(barsFromCloses(closes...), 5, 2.0)
	require.NoError(t, err)

	var buy *TrailingStopPoint
	for i := range points {
		if points[i].Signal == SignalBuy {
			buy = &points[i]
			break
		}
	}
	require.NotNil(t, buy, "recovery must trigger a BUY")
	assert.Equal(t, TrendUp, buy.Trend)
	assert.InDelta(t, buy.Close-2*buy.ATR, buy.StopLoss, 1e-9)
}

func TestTrailingStopsBadMultiplier(t *testing.T) {
	series := barsFromCloses(100, 101, 102, 103, 104, 105, 106)
	for _, m := range []float64{0, -1} {
		_, err := TrailingStops(series, 5, m)
		var verr *market.ValidationError
		require.ErrorAs(t, err, &verr, "multiplier %v", m)
	}
}

func TestTrailingStopsShortSeries(t *testing.T) {
	_, err := TrailingStops(barsFromCloses(100, 101, 102), 5, 2.0)
	var verr *market.ValidationError
	require.ErrorAs(t, err, &verr)
}
