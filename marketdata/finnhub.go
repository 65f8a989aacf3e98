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
)

// FinnhubProvider serves current quotes for the US region.
type FinnhubProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewFinnhubProvider(apiKey string) *FinnhubProvider {
	return &FinnhubProvider{
		BaseURL: "https://finnhub.io/api/v1",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *FinnhubProvider) Name() string { return "finnhub" }

// USSymbol strips any Indian exchange suffix: US providers expect the bare
// ticker. Pure and idempotent.
func USSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range [...]string{".NS", ".BO"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return s
}

// finnhubQuote is the /quote response: c = current, t = unix time.
type finnhubQuote struct {
	Current   float64 `json:"c"`
	Timestamp int64   `json:"t"`
}

// Quote returns the current price for the symbol.
func (p *FinnhubProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		p.BaseURL, url.QueryEscape(USSymbol(symbol)), url.QueryEscape(p.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return Quote{}, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: fmt.Sprintf("read body: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, &ProviderError{
			Provider:    p.Name(),
			Symbol:      symbol,
			Message:     fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
			RateLimited: resp.StatusCode == http.StatusTooManyRequests || isRateLimitMessage(string(body)),
		}
	}

	var q finnhubQuote
	if err := json.Unmarshal(body, &q); err != nil {
		return Quote{}, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: fmt.Sprintf("decode: %v", err)}
	}
	if q.Current == 0 {
		return Quote{}, &ProviderError{Provider: p.Name(), Symbol: symbol, Message: "no price data"}
	}

	asOf := time.Now()
	if q.Timestamp > 0 {
		asOf = time.Unix(q.Timestamp, 0).UTC()
	}
	return Quote{Symbol: symbol, Region: RegionUS, Price: q.Current, AsOf: asOf}, nil
}
