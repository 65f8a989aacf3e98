package strategies

import (
	"fmt"
	"math"

	"stockwatch/market"
)

// SwingStrategy is the simplified DMA classifier: buy pullbacks to the
// 150-DMA inside an uptrend, take profit when price stretches too far above
// the 50-DMA, and stand aside below the 200-DMA.
type SwingStrategy struct{}

func NewSwingStrategy() *SwingStrategy { return &SwingStrategy{} }

func (s *SwingStrategy) Name() string { return "swing" }

// Analyze classifies the series. It returns (nil, nil) when fewer than
// MinBars bars are available.
func (s *SwingStrategy) Analyze(series []market.Candle) (*DMAAnalysis, error) {
	snap, err := computeSnapshot(series)
	if err != nil || snap == nil {
		return nil, err
	}

	a := snap.analysis()
	ext50 := a.DistFromDMA50

	switch {
	case math.Abs(a.DistFromDMA150) <= 2 && snap.price > snap.dma200:
		a.Signal = BuyAt150DMA
		a.Recommendation = "Buy the pullback: price at the 150-DMA above the 200-DMA"
		a.Details = append(a.Details,
			fmt.Sprintf("price within %.2f%% of the 150-DMA", math.Abs(a.DistFromDMA150)),
			"200-DMA holding below as trend support")

	case ext50 > 15:
		a.Signal = Reduce30Percent
		a.Recommendation = "Reduce 30% now: price severely extended above the 50-DMA"
		a.Details = append(a.Details,
			fmt.Sprintf("price %.2f%% above the 50-DMA, well past the take-profit zone", ext50))

	case ext50 >= 10:
		a.Signal = Reduce30Percent
		a.Recommendation = "Reduce 30%: price in the take-profit zone above the 50-DMA"
		a.Details = append(a.Details,
			fmt.Sprintf("price %.2f%% above the 50-DMA (10-15%% take-profit zone)", ext50))

	case snap.price > snap.dma150 && ext50 >= 0:
		a.Signal = Hold
		a.Recommendation = "Hold: riding the trend above the 150-DMA"
		a.Details = append(a.Details,
			fmt.Sprintf("price %.2f%% above the 50-DMA, no action needed", ext50))

	case snap.price < snap.dma200:
		a.Signal = Wait
		a.Recommendation = "Wait: price below the 200-DMA, awaiting trend confirmation"
		a.Details = append(a.Details,
			fmt.Sprintf("price %.2f%% below the 200-DMA", math.Abs(a.DistFromDMA200)))

	default:
		a.Signal = Wait
		a.Recommendation = "Wait: no swing setup present"
	}

	return a, nil
}
