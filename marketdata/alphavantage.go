package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stockwatch/market"
	"stockwatch/metrics"
)

// AlphaVantageProvider serves daily history for the US region. The free API
// tier is tightly rate limited, so every request passes through a shared
// sliding-window limiter, and rate-limit rejections (reported inside a 200
// response body, not by HTTP status) are retried with exponential backoff.
type AlphaVantageProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	limiter *slidingWindowLimiter
	retry   retryPolicy
}

// AlphaVantageOptions tunes the limiter and retry policy.
type AlphaVantageOptions struct {
	RequestsPerMinute int           // default 5
	MaxRetries        int           // default 3
	RetryBaseDelay    time.Duration // default 2s

	// Metrics, when set, counts limiter-induced waits.
	Metrics *metrics.Metrics
}

func NewAlphaVantageProvider(apiKey string, opts AlphaVantageOptions) *AlphaVantageProvider {
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 5
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 2 * time.Second
	}
	limiter := newSlidingWindowLimiter(opts.RequestsPerMinute, time.Minute)
	if opts.Metrics != nil {
		limiter.onWait = opts.Metrics.RateLimitWaits.Inc
	}
	return &AlphaVantageProvider{
		BaseURL: "https://www.alphavantage.co",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		retry:   newRetryPolicy(opts.MaxRetries, opts.RetryBaseDelay),
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

// alphaDaily is the TIME_SERIES_DAILY response. Rate-limit rejections come
// back as a Note or Information field instead of a series.
type alphaDaily struct {
	Note        string                       `json:"Note"`
	Information string                       `json:"Information"`
	ErrorMsg    string                       `json:"Error Message"`
	Series      map[string]map[string]string `json:"Time Series (Daily)"`
}

// History returns up to `days` daily candles, ascending by date.
func (p *AlphaVantageProvider) History(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	var candles []market.Candle
	err := p.retry.do(ctx, func() error {
		var ferr error
		candles, ferr = p.fetchDaily(ctx, symbol, days)
		return ferr
	})
	return candles, err
}

func (p *AlphaVantageProvider) fetchDaily(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	if err := p.limiter.reserve(ctx); err != nil {
		return nil, err
	}

	outputsize := "compact"
	if days > 100 {
		outputsize = "full"
	}
	u := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=%s&apikey=%s",
		p.BaseURL, url.QueryEscape(USSymbol(symbol)), outputsize, url.QueryEscape(p.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: fmt.Sprintf("read body: %v", err)}
	}

	var daily alphaDaily
	if err := json.Unmarshal(body, &daily); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: fmt.Sprintf("decode: %v", err)}
	}
	if daily.ErrorMsg != "" {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: daily.ErrorMsg}
	}
	for _, note := range [...]string{daily.Note, daily.Information} {
		if note != "" {
			return nil, &ProviderError{
				Provider:    p.Name(),
				Symbol:      symbol,
				Message:     note,
				RateLimited: isRateLimitMessage(note),
			}
		}
	}
	if len(daily.Series) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: "no data returned"}
	}

	candles := make([]market.Candle, 0, len(daily.Series))
	for date, fields := range daily.Series {
		c, ok := parseDailyBar(date, fields)
		if !ok {
			continue
		}
		candles = append(candles, c)
	}

	candles = market.SortByDate(candles)
	if len(candles) > days {
		candles = candles[len(candles)-days:]
	}
	return candles, nil
}

func parseDailyBar(date string, fields map[string]string) (market.Candle, bool) {
	c := market.Candle{Date: date}
	parse := func(key string) (float64, bool) {
		v, err := strconv.ParseFloat(fields[key], 64)
		return v, err == nil
	}

	var ok bool
	if c.Open, ok = parse("1. open"); !ok {
		return c, false
	}
	if c.High, ok = parse("2. high"); !ok {
		return c, false
	}
	if c.Low, ok = parse("3. low"); !ok {
		return c, false
	}
	if c.Close, ok = parse("4. close"); !ok {
		return c, false
	}
	return c, true
}
