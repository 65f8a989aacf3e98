package strategies

import (
	"stockwatch/indicators"
	"stockwatch/market"
)

// MinBars is the number of bars both strategies need before they produce a
// result; anything shorter returns the nil insufficient-data sentinel.
const MinBars = 200

// trendThresholdPct is the band around the 200-DMA that separates BULLISH
// and BEARISH from NEUTRAL.
const trendThresholdPct = 2.0

// dmaSnapshot carries the shared moving-average state both strategies
// derive their signals from.
type dmaSnapshot struct {
	price  float64
	dma50  float64
	dma150 float64
	dma200 float64

	// aligned rolling series, used for trailing-window crossover scans;
	// values before index MinBars-1 are warm-up and must not be read
	closes    []float64
	dma200Seq []float64
}

// computeSnapshot validates the series and computes the shared DMA state.
// It returns (nil, nil) when the series is too short for a 200-bar window.
func computeSnapshot(series []market.Candle) (*dmaSnapshot, error) {
	if len(series) < MinBars {
		return nil, nil
	}
	if err := market.Validate(series); err != nil {
		return nil, err
	}

	closes := market.Closes(series)

	dma50, err := indicators.SMA(closes, 50)
	if err != nil {
		return nil, err
	}
	dma150, err := indicators.SMA(closes, 150)
	if err != nil {
		return nil, err
	}
	dma200, err := indicators.SMA(closes, 200)
	if err != nil {
		return nil, err
	}

	return &dmaSnapshot{
		price:     closes[len(closes)-1],
		dma50:     dma50,
		dma150:    dma150,
		dma200:    dma200,
		closes:    closes,
		dma200Seq: indicators.SMASeries(closes, 200),
	}, nil
}

// distPct is the signed distance of price from the reference level, as a
// percentage of the reference.
func distPct(price, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return (price - ref) / ref * 100
}

func (s *dmaSnapshot) trendState() TrendState {
	d := distPct(s.price, s.dma200)
	switch {
	case d > trendThresholdPct:
		return Bullish
	case d < -trendThresholdPct:
		return Bearish
	default:
		return Neutral
	}
}

// crossedAbove200Within reports whether the close crossed from at-or-below
// the 200-DMA to above it within the trailing `window` bars. The scan uses
// only already-computed past-and-current values; no future bar participates.
func (s *dmaSnapshot) crossedAbove200Within(window int) bool {
	n := len(s.closes)
	start := n - window
	if start < MinBars {
		// the earlier bar of the pair still needs a valid 200-DMA
		start = MinBars
	}
	for i := start; i < n; i++ {
		prevBelow := s.closes[i-1] <= s.dma200Seq[i-1]
		nowAbove := s.closes[i] > s.dma200Seq[i]
		if prevBelow && nowAbove {
			return true
		}
	}
	return false
}

// analysis seeds a DMAAnalysis with the shared fields; the strategies fill
// in Signal, Recommendation and Details.
func (s *dmaSnapshot) analysis() *DMAAnalysis {
	return &DMAAnalysis{
		CurrentPrice:   s.price,
		DMA50:          s.dma50,
		DMA150:         s.dma150,
		DMA200:         s.dma200,
		TrendState:     s.trendState(),
		DistFromDMA50:  distPct(s.price, s.dma50),
		DistFromDMA150: distPct(s.price, s.dma150),
		DistFromDMA200: distPct(s.price, s.dma200),
	}
}
