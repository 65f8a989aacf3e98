package strategies

import (
	"fmt"
	"math"

	"stockwatch/market"
)

// PositionStrategy is the full multi-signal DMA classifier. It layers a
// no-trade override, prioritized sell checks, and trend-conditional entry
// setups on top of the shared 50/150/200-DMA snapshot.
type PositionStrategy struct {
	// CrossoverWindow is how many trailing bars the Setup B scan looks
	// back for a close crossing above the 200-DMA.
	CrossoverWindow int
}

func NewPositionStrategy() *PositionStrategy {
	return &PositionStrategy{CrossoverWindow: 10}
}

func (p *PositionStrategy) Name() string { return "position" }

// Analyze classifies the series. It returns (nil, nil) when fewer than
// MinBars bars are available.
func (p *PositionStrategy) Analyze(series []market.Candle) (*DMAAnalysis, error) {
	snap, err := computeSnapshot(series)
	if err != nil || snap == nil {
		return nil, err
	}

	a := snap.analysis()

	// No-trade override: compressed DMAs or an overextended price make
	// any setup unreliable; all further checks are skipped.
	if pair, ok := compressedPair(snap); ok {
		a.Signal = NoTrade
		a.Recommendation = "No trade: moving averages compressed, trend unclear"
		a.Details = append(a.Details, fmt.Sprintf("%s within %.0f%% of each other", pair, trendThresholdPct))
		return a, nil
	}
	if a.DistFromDMA50 > 15 {
		a.Signal = NoTrade
		a.Recommendation = "No trade: price overextended above the 50-DMA"
		a.Details = append(a.Details, fmt.Sprintf("price %.2f%% above 50-DMA, beyond the 15%% limit", a.DistFromDMA50))
		return a, nil
	}

	// Sell checks, first match wins.
	switch {
	case snap.price < snap.dma200:
		a.Signal = SellFull
		a.Recommendation = "Exit the full position: price lost the 200-DMA"
		a.Details = append(a.Details, fmt.Sprintf("price %.2f below 200-DMA %.2f", snap.price, snap.dma200))
		return a, nil
	case snap.dma50 < snap.dma150:
		a.Signal = SellMajority
		a.Recommendation = "Sell the majority: 50-DMA crossed below 150-DMA"
		a.Details = append(a.Details, fmt.Sprintf("50-DMA %.2f below 150-DMA %.2f", snap.dma50, snap.dma150))
		return a, nil
	case snap.price < snap.dma50:
		a.Signal = SellPartial
		a.Recommendation = "Trim the position: price slipped below the 50-DMA"
		a.Details = append(a.Details, fmt.Sprintf("price %.2f below 50-DMA %.2f", snap.price, snap.dma50))
		return a, nil
	}

	switch a.TrendState {
	case Bullish:
		// Setup A: stacked DMAs with price riding just above the 50-DMA.
		if snap.price > snap.dma200 && snap.dma150 > snap.dma200 &&
			snap.dma50 > snap.dma150 &&
			snap.price >= snap.dma50 && a.DistFromDMA50 <= 3 {
			a.Signal = BuySetupA
			a.Recommendation = "Strong buy: stacked DMAs with price at the 50-DMA"
			a.Details = append(a.Details,
				"50-DMA > 150-DMA > 200-DMA with price above all three",
				fmt.Sprintf("price within %.2f%% of the 50-DMA", a.DistFromDMA50))
			return a, nil
		}
		// Setup B: recent reclaim of the 200-DMA with a bullish DMA pair.
		if snap.crossedAbove200Within(p.CrossoverWindow) && snap.dma50 > snap.dma150 {
			a.Signal = BuySetupB
			a.Recommendation = "Moderate buy: price reclaimed the 200-DMA"
			a.Details = append(a.Details,
				fmt.Sprintf("close crossed above the 200-DMA within the last %d bars", p.CrossoverWindow),
				"50-DMA above 150-DMA")
			return a, nil
		}
		a.Signal = Hold
		a.Recommendation = "Hold: uptrend intact, wait for a pullback entry"

	case Bearish:
		if snap.price < snap.dma200 &&
			snap.dma50 < snap.dma150 && snap.dma150 < snap.dma200 &&
			(math.Abs(a.DistFromDMA50) <= 3 || math.Abs(a.DistFromDMA150) <= 3) {
			a.Signal = Short
			a.Recommendation = "Short setup: inverted DMAs with price at resistance"
			a.Details = append(a.Details,
				"50-DMA < 150-DMA < 200-DMA with price below the 200-DMA",
				"price within 3% of the 50- or 150-DMA")
			return a, nil
		}
		a.Signal = Hold
		a.Recommendation = "Hold: downtrend, no short setup present"

	default:
		a.Signal = Hold
		a.Recommendation = "Hold: price near the 200-DMA, no clear trend"
	}

	return a, nil
}

// compressedPair reports whether any pair of the three DMAs sits within the
// compression threshold of each other, naming the first such pair.
func compressedPair(s *dmaSnapshot) (string, bool) {
	pairs := []struct {
		name string
		a, b float64
	}{
		{"50-DMA and 150-DMA", s.dma50, s.dma150},
		{"50-DMA and 200-DMA", s.dma50, s.dma200},
		{"150-DMA and 200-DMA", s.dma150, s.dma200},
	}
	for _, p := range pairs {
		if p.b != 0 && math.Abs(distPct(p.a, p.b)) < trendThresholdPct {
			return p.name, true
		}
	}
	return "", false
}
