package marketdata

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/market"
)

type stubQuoteProvider struct {
	calls int
	price float64
	err   error
}

func (s *stubQuoteProvider) Name() string { return "stub-quotes" }

func (s *stubQuoteProvider) Quote(_ context.Context, symbol string) (Quote, error) {
	s.calls++
	if s.err != nil {
		return Quote{}, s.err
	}
	return Quote{Symbol: symbol, Price: s.price, AsOf: time.Now()}, nil
}

type stubHistoryProvider struct {
	calls  int
	series []market.Candle
	err    error
}

func (s *stubHistoryProvider) Name() string { return "stub-history" }

func (s *stubHistoryProvider) History(_ context.Context, _ string, days int) ([]market.Candle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.series) > days {
		return s.series[len(s.series)-days:], nil
	}
	return s.series, nil
}

type stubRecProvider struct {
	calls int
	recs  []Recommendation
}

func (s *stubRecProvider) Name() string { return "stub-recs" }

func (s *stubRecProvider) Recommendations(_ context.Context, _ string) ([]Recommendation, error) {
	s.calls++
	return s.recs, nil
}

func testSeries(n int) []market.Candle {
	series := make([]market.Candle, n)
	for i := range series {
		c := 100 + float64(i)
		series[i] = market.Candle{
			Date:  fmt.Sprintf("2025-%02d-%02d", 1+i/28, 1+i%28),
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return series
}

func TestCurrentPriceCaching(t *testing.T) {
	o := NewOrchestrator(Config{PriceTTL: time.Minute})
	stub := &stubQuoteProvider{price: 187.5}
	o.RegisterQuoteProvider(RegionUS, stub)

	clock := time.Now()
	o.priceCache.mem.now = func() time.Time { return clock }

	ctx := context.Background()
	q1, err := o.CurrentPrice(ctx, "AAPL", RegionUS)
	require.NoError(t, err)
	assert.Equal(t, 187.5, q1.Price)
	assert.Equal(t, RegionUS, q1.Region)

	// second call inside the TTL must not reach the provider
	_, err = o.CurrentPrice(ctx, "AAPL", RegionUS)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)

	// after expiry exactly one new provider call is issued
	clock = clock.Add(2 * time.Minute)
	_, err = o.CurrentPrice(ctx, "AAPL", RegionUS)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCurrentPriceRouting(t *testing.T) {
	o := NewOrchestrator(Config{})
	us := &stubQuoteProvider{price: 10}
	in := &stubQuoteProvider{price: 20}
	o.RegisterQuoteProvider(RegionUS, us)
	o.RegisterQuoteProvider(RegionIN, in)

	ctx := context.Background()
	q, err := o.CurrentPrice(ctx, "RELIANCE", RegionIN)
	require.NoError(t, err)
	assert.Equal(t, 20.0, q.Price)
	assert.Equal(t, 0, us.calls)
	assert.Equal(t, 1, in.calls)
}

func TestCurrentPriceUnroutedRegion(t *testing.T) {
	o := NewOrchestrator(Config{})
	_, err := o.CurrentPrice(context.Background(), "AAPL", RegionUS)
	assert.ErrorContains(t, err, "no quote provider")
}

func TestCurrentPriceProviderErrorNotCached(t *testing.T) {
	o := NewOrchestrator(Config{})
	stub := &stubQuoteProvider{err: &ProviderError{Provider: "stub-quotes", Symbol: "AAPL", Message: "boom"}}
	o.RegisterQuoteProvider(RegionUS, stub)

	ctx := context.Background()
	_, err := o.CurrentPrice(ctx, "AAPL", RegionUS)
	require.Error(t, err)

	// failures are not cached: next call hits the provider again
	_, _ = o.CurrentPrice(ctx, "AAPL", RegionUS)
	assert.Equal(t, 2, stub.calls)
}

func TestHistoricalSeriesCachingPerDayCount(t *testing.T) {
	o := NewOrchestrator(Config{HistoryTTL: time.Hour})
	stub := &stubHistoryProvider{series: testSeries(250)}
	o.RegisterHistoryProvider(RegionIN, stub)

	ctx := context.Background()
	s1, err := o.HistoricalSeries(ctx, "TCS", RegionIN, 200)
	require.NoError(t, err)
	assert.Len(t, s1, 200)

	_, err = o.HistoricalSeries(ctx, "TCS", RegionIN, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls, "same day-count must be served from cache")

	// a different day count is a different cache key
	_, err = o.HistoricalSeries(ctx, "TCS", RegionIN, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestHistoricalSeriesRejectsMalformed(t *testing.T) {
	bad := testSeries(10)
	bad[4].High = bad[4].Low - 1

	o := NewOrchestrator(Config{})
	o.RegisterHistoryProvider(RegionUS, &stubHistoryProvider{series: bad})

	_, err := o.HistoricalSeries(context.Background(), "AAPL", RegionUS, 10)
	var verr *market.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestHistoricalSeriesBadDays(t *testing.T) {
	o := NewOrchestrator(Config{})
	_, err := o.HistoricalSeries(context.Background(), "AAPL", RegionUS, 0)
	var verr *market.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRecommendationsUncoveredRegionIsEmpty(t *testing.T) {
	o := NewOrchestrator(Config{})
	o.RegisterRecommendationProvider(RegionIN, &stubRecProvider{
		recs: []Recommendation{{Period: "0m", Buy: 10}},
	})

	ctx := context.Background()
	recs, err := o.Recommendations(ctx, "AAPL", RegionUS)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NotNil(t, recs)

	recs, err = o.Recommendations(ctx, "TCS", RegionIN)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecommendationsCached(t *testing.T) {
	o := NewOrchestrator(Config{RecommendationTTL: time.Hour})
	stub := &stubRecProvider{recs: []Recommendation{{Period: "0m", Hold: 5}}}
	o.RegisterRecommendationProvider(RegionIN, stub)

	ctx := context.Background()
	_, err := o.Recommendations(ctx, "TCS", RegionIN)
	require.NoError(t, err)
	_, err = o.Recommendations(ctx, "TCS", RegionIN)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
}
