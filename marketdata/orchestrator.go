package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockwatch/market"
	"stockwatch/metrics"
)

// Config tunes the orchestrator's cache tiers.
type Config struct {
	PriceTTL          time.Duration // default 5m
	HistoryTTL        time.Duration // default 1h
	RecommendationTTL time.Duration // default 6h

	// Redis enables the second cache tier when non-nil.
	Redis *RedisTier

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.PriceTTL <= 0 {
		out.PriceTTL = 5 * time.Minute
	}
	if out.HistoryTTL <= 0 {
		out.HistoryTTL = time.Hour
	}
	if out.RecommendationTTL <= 0 {
		out.RecommendationTTL = 6 * time.Hour
	}
	if out.Metrics == nil {
		out.Metrics = metrics.New()
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

// Orchestrator routes symbol+region lookups to the registered providers and
// serves repeats from three independent TTL caches. Providers are injected
// explicitly; there are no package-level singletons.
type Orchestrator struct {
	quotes  map[Region]QuoteProvider
	history map[Region]HistoryProvider
	recs    map[Region]RecommendationProvider

	priceCache *tieredCache[Quote]
	histCache  *tieredCache[[]market.Candle]
	recCache   *tieredCache[[]Recommendation]

	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewOrchestrator creates an orchestrator with empty provider routing.
func NewOrchestrator(cfg Config) *Orchestrator {
	c := cfg.withDefaults()
	return &Orchestrator{
		quotes:     make(map[Region]QuoteProvider),
		history:    make(map[Region]HistoryProvider),
		recs:       make(map[Region]RecommendationProvider),
		priceCache: newTieredCache[Quote](c.PriceTTL, c.Redis),
		histCache:  newTieredCache[[]market.Candle](c.HistoryTTL, c.Redis),
		recCache:   newTieredCache[[]Recommendation](c.RecommendationTTL, c.Redis),
		metrics:    c.Metrics,
		log:        c.Logger,
	}
}

// RegisterQuoteProvider routes quote lookups for the region to p.
func (o *Orchestrator) RegisterQuoteProvider(r Region, p QuoteProvider) {
	o.quotes[r] = p
}

// RegisterHistoryProvider routes history lookups for the region to p.
func (o *Orchestrator) RegisterHistoryProvider(r Region, p HistoryProvider) {
	o.history[r] = p
}

// RegisterRecommendationProvider routes recommendation lookups for the
// region to p. Regions without a registered provider return empty results.
func (o *Orchestrator) RegisterRecommendationProvider(r Region, p RecommendationProvider) {
	o.recs[r] = p
}

// CurrentPrice returns the current quote for symbol in region, served from
// cache inside the price TTL.
func (o *Orchestrator) CurrentPrice(ctx context.Context, symbol string, region Region) (Quote, error) {
	key := fmt.Sprintf("price:%s:%s", region, symbol)
	if q, ok := o.priceCache.get(ctx, key); ok {
		o.metrics.CacheHits.WithLabelValues("price").Inc()
		return q, nil
	}
	o.metrics.CacheMisses.WithLabelValues("price").Inc()

	p, ok := o.quotes[region]
	if !ok {
		return Quote{}, fmt.Errorf("no quote provider registered for region %s", region)
	}

	o.metrics.ProviderCalls.WithLabelValues(p.Name(), "quote").Inc()
	q, err := p.Quote(ctx, symbol)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues(p.Name(), "quote").Inc()
		o.log.Warn("quote fetch failed", "provider", p.Name(), "symbol", symbol, "err", err)
		return Quote{}, err
	}
	q.Region = region

	o.priceCache.set(ctx, key, q)
	return q, nil
}

// HistoricalSeries returns up to `days` validated daily candles for symbol
// in region, ascending by date, served from cache inside the history TTL.
func (o *Orchestrator) HistoricalSeries(ctx context.Context, symbol string, region Region, days int) ([]market.Candle, error) {
	if days <= 0 {
		return nil, market.Errorf("days must be positive, got %d", days)
	}

	key := fmt.Sprintf("history:%s:%s:%d", region, symbol, days)
	if series, ok := o.histCache.get(ctx, key); ok {
		o.metrics.CacheHits.WithLabelValues("history").Inc()
		return series, nil
	}
	o.metrics.CacheMisses.WithLabelValues("history").Inc()

	p, ok := o.history[region]
	if !ok {
		return nil, fmt.Errorf("no history provider registered for region %s", region)
	}

	o.metrics.ProviderCalls.WithLabelValues(p.Name(), "history").Inc()
	series, err := p.History(ctx, symbol, days)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues(p.Name(), "history").Inc()
		o.log.Warn("history fetch failed", "provider", p.Name(), "symbol", symbol, "err", err)
		return nil, err
	}
	if err := market.Validate(series); err != nil {
		return nil, fmt.Errorf("%s returned malformed history for %s: %w", p.Name(), symbol, err)
	}

	o.histCache.set(ctx, key, series)
	return series, nil
}

// Recommendations returns the analyst recommendation trend for symbol in
// region. Regions without analyst coverage yield an empty slice, not an
// error.
func (o *Orchestrator) Recommendations(ctx context.Context, symbol string, region Region) ([]Recommendation, error) {
	p, ok := o.recs[region]
	if !ok {
		return []Recommendation{}, nil
	}

	key := fmt.Sprintf("recs:%s:%s", region, symbol)
	if recs, ok := o.recCache.get(ctx, key); ok {
		o.metrics.CacheHits.WithLabelValues("recommendations").Inc()
		return recs, nil
	}
	o.metrics.CacheMisses.WithLabelValues("recommendations").Inc()

	o.metrics.ProviderCalls.WithLabelValues(p.Name(), "recommendations").Inc()
	recs, err := p.Recommendations(ctx, symbol)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues(p.Name(), "recommendations").Inc()
		return nil, err
	}
	if recs == nil {
		recs = []Recommendation{}
	}

	o.recCache.set(ctx, key, recs)
	return recs, nil
}

// WireDefaultProviders registers the production routing: Yahoo Finance for
// IN (quotes, history, recommendations), Finnhub quotes and Alpha Vantage
// history for US.
func (o *Orchestrator) WireDefaultProviders(finnhubKey, alphaVantageKey string, avOpts AlphaVantageOptions) {
	yahoo := NewYahooProvider()
	o.RegisterQuoteProvider(RegionIN, yahoo)
	o.RegisterHistoryProvider(RegionIN, yahoo)
	o.RegisterRecommendationProvider(RegionIN, yahoo)

	o.RegisterQuoteProvider(RegionUS, NewFinnhubProvider(finnhubKey))
	o.RegisterHistoryProvider(RegionUS, NewAlphaVantageProvider(alphaVantageKey, avOpts))
}
