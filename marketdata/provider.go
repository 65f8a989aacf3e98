// Package marketdata routes symbol lookups to external price providers,
// applies tiered caching, rate limiting and retry, and normalizes results
// into the candle series consumed by the indicator and strategy packages.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockwatch/market"
)

// Region selects which provider group services a lookup.
type Region string

const (
	RegionIN Region = "IN"
	RegionUS Region = "US"
)

// ParseRegion maps free-text input onto a Region.
func ParseRegion(s string) (Region, error) {
	switch Region(strings.ToUpper(strings.TrimSpace(s))) {
	case RegionIN:
		return RegionIN, nil
	case RegionUS:
		return RegionUS, nil
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// Quote is a current-price snapshot for one symbol.
type Quote struct {
	Symbol string    `json:"symbol"`
	Region Region    `json:"region"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"asOf"`
}

// Recommendation is one period of analyst recommendation counts.
type Recommendation struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// QuoteProvider serves current prices.
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// HistoryProvider serves daily OHLC history, ascending by date.
type HistoryProvider interface {
	Name() string
	History(ctx context.Context, symbol string, days int) ([]market.Candle, error)
}

// RecommendationProvider serves analyst recommendation trends.
type RecommendationProvider interface {
	Name() string
	Recommendations(ctx context.Context, symbol string) ([]Recommendation, error)
}

// ProviderError is raised when an upstream call fails after any local
// recovery (retry/backoff) has been exhausted.
type ProviderError struct {
	Provider string
	Symbol   string
	Message  string

	// RateLimited marks errors the retry policy treats as retryable.
	// Providers classify by message content, not HTTP status.
	RateLimited bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Symbol, e.Message)
}

// IsRateLimited reports whether err is a rate-limit-class provider error.
func IsRateLimited(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.RateLimited
}
