// Package strategies classifies trend state and actionable signals from
// 50/150/200-day moving averages. Two interchangeable strategies share the
// moving-average computation and differ only in how they derive a signal:
// the full position strategy and the simplified swing strategy.
package strategies

import "stockwatch/market"

type StrategyRegistry map[string]Strategy

var (
	registry = make(StrategyRegistry)
)

// Strategy analyzes a validated ascending price series and produces a
// DMAAnalysis, or (nil, nil) when fewer than MinBars bars are available.
// That nil result is an expected insufficient-data sentinel, distinct from a
// validation failure.
type Strategy interface {
	Name() string
	Analyze(series []market.Candle) (*DMAAnalysis, error)
}

// TrendState classifies price relative to the 200-day moving average.
type TrendState string

const (
	Bullish TrendState = "BULLISH"
	Bearish TrendState = "BEARISH"
	Neutral TrendState = "NEUTRAL"
)

// Signal is a strategy-specific classification. The position strategy and
// the swing strategy each emit from their own subset.
type Signal string

const (
	// position strategy signals
	BuySetupA    Signal = "BUY_SETUP_A"
	BuySetupB    Signal = "BUY_SETUP_B"
	SellPartial  Signal = "SELL_PARTIAL"
	SellMajority Signal = "SELL_MAJORITY"
	SellFull     Signal = "SELL_FULL"
	Short        Signal = "SHORT"
	Hold         Signal = "HOLD"
	NoTrade      Signal = "NO_TRADE"

	// swing strategy signals
	BuyAt150DMA     Signal = "BUY_AT_150DMA"
	Reduce30Percent Signal = "REDUCE_30_PERCENT"
	Wait            Signal = "WAIT"
)

// DMAAnalysis is the result of one strategy run. Produced fresh on every
// call and never mutated afterwards.
type DMAAnalysis struct {
	CurrentPrice float64 `json:"currentPrice"`
	DMA50        float64 `json:"dma50"`
	DMA150       float64 `json:"dma150"`
	DMA200       float64 `json:"dma200"`

	TrendState TrendState `json:"trendState"`
	Signal     Signal     `json:"signal"`

	// signed distance of price from each DMA, as a percentage of the DMA
	DistFromDMA50  float64 `json:"distFromDma50"`
	DistFromDMA150 float64 `json:"distFromDma150"`
	DistFromDMA200 float64 `json:"distFromDma200"`

	Recommendation string   `json:"recommendation"`
	Details        []string `json:"details"`
}

// Rounded returns a copy with numeric fields rounded for display.
func (a *DMAAnalysis) Rounded(places int) *DMAAnalysis {
	if a == nil {
		return nil
	}
	out := *a
	out.CurrentPrice = market.RoundTo(a.CurrentPrice, places)
	out.DMA50 = market.RoundTo(a.DMA50, places)
	out.DMA150 = market.RoundTo(a.DMA150, places)
	out.DMA200 = market.RoundTo(a.DMA200, places)
	out.DistFromDMA50 = market.RoundTo(a.DistFromDMA50, places)
	out.DistFromDMA150 = market.RoundTo(a.DistFromDMA150, places)
	out.DistFromDMA200 = market.RoundTo(a.DistFromDMA200, places)
	return &out
}

func Register(name string, strat Strategy) {
	registry[name] = strat
}

func GetStrategy(name string) (strat Strategy) {
	var ok bool
	if strat, ok = registry[name]; !ok {
		return nil
	}
	return strat
}

func init() {
	Register("position", NewPositionStrategy())
	Register("swing", NewSwingStrategy())
}
