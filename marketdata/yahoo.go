package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockwatch/market"
)

// YahooProvider serves quotes, history and analyst recommendations for the
// IN region from the Yahoo Finance public API.
type YahooProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooProvider creates a Yahoo Finance provider with a bounded request
// timeout.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		BaseURL: "https://query1.finance.yahoo.com",
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// YahooSymbol rewrites a symbol into Yahoo's NSE convention: a bare symbol
// gains the ".NS" exchange suffix, an already-suffixed one passes through.
// Pure and idempotent.
func YahooSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || strings.Contains(s, ".") || strings.HasPrefix(s, "^") {
		return s
	}
	return s + ".NS"
}

// yahooChart is the response structure from the Yahoo chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, interval, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		p.BaseURL, url.PathEscape(YahooSymbol(symbol)), interval, rng)

	body, err := p.getJSON(ctx, symbol, u)
	if err != nil {
		return nil, err
	}

	chart := &yahooChart{}
	if err := json.Unmarshal(body, chart); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: fmt.Sprintf("decode: %v", err)}
	}
	if chart.Chart.Error != nil {
		return nil, &ProviderError{
			Provider:    p.Name(),
			Symbol:      symbol,
			Message:     chart.Chart.Error.Description,
			RateLimited: isRateLimitMessage(chart.Chart.Error.Description),
		}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: "no data returned"}
	}
	return chart, nil
}

func (p *YahooProvider) getJSON(ctx context.Context, symbol, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: fmt.Sprintf("read body: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider:    p.Name(),
			Symbol:      symbol,
			Message:     fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
			RateLimited: isRateLimitMessage(string(body)),
		}
	}
	return body, nil
}

// Quote returns the latest close for the symbol.
func (p *YahooProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	chart, err := p.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return Quote{}, err
	}

	result := chart.Chart.Result[0]
	price := result.Meta.RegularMarketPrice
	if price == 0 {
		candles := chartCandles(chart)
		if len(candles) == 0 {
			return Quote{}, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: "no price data"}
		}
		price = candles[len(candles)-1].Close
	}

	return Quote{Symbol: symbol, Region: RegionIN, Price: price, AsOf: time.Now()}, nil
}

// History returns up to `days` daily candles, ascending by date.
func (p *YahooProvider) History(ctx context.Context, symbol string, days int) ([]market.Candle, error) {
	chart, err := p.fetchChart(ctx, symbol, "1d", yahooRange(days))
	if err != nil {
		return nil, err
	}

	candles := chartCandles(chart)
	if len(candles) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: "no data returned"}
	}

	candles = market.SortByDate(candles)
	if len(candles) > days {
		candles = candles[len(candles)-days:]
	}
	return candles, nil
}

// yahooRange maps a day count onto the smallest Yahoo range that covers it.
func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

func chartCandles(chart *yahooChart) []market.Candle {
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]

	candles := make([]market.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil ||
			quote.High[i] == nil || quote.Low[i] == nil {
			continue // null bars on holidays etc.
		}
		c := market.Candle{
			Date:  time.Unix(ts, 0).UTC().Format(market.DateLayout),
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			c.Open = *quote.Open[i]
		}
		candles = append(candles, c)
	}
	return candles
}

// yahooQuoteSummary is the recommendationTrend module response.
type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			RecommendationTrend struct {
				Trend []struct {
					Period     string `json:"period"`
					StrongBuy  int    `json:"strongBuy"`
					Buy        int    `json:"buy"`
					Hold       int    `json:"hold"`
					Sell       int    `json:"sell"`
					StrongSell int    `json:"strongSell"`
				} `json:"trend"`
			} `json:"recommendationTrend"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Recommendations returns analyst recommendation counts per period.
func (p *YahooProvider) Recommendations(ctx context.Context, symbol string) ([]Recommendation, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=recommendationTrend",
		p.BaseURL, url.PathEscape(YahooSymbol(symbol)))

	body, err := p.getJSON(ctx, symbol, u)
	if err != nil {
		return nil, err
	}

	var summary yahooQuoteSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: fmt.Sprintf("decode: %v", err)}
	}
	if summary.QuoteSummary.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: summary.QuoteSummary.Error.Description}
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	trend := summary.QuoteSummary.Result[0].RecommendationTrend.Trend
	recs := make([]Recommendation, 0, len(trend))
	for _, t := range trend {
		recs = append(recs, Recommendation{
			Period:     t.Period,
			StrongBuy:  t.StrongBuy,
			Buy:        t.Buy,
			Hold:       t.Hold,
			Sell:       t.Sell,
			StrongSell: t.StrongSell,
		})
	}
	return recs, nil
}

// isRateLimitMessage classifies rate-limit-class errors by message content.
func isRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "call frequency")
}
