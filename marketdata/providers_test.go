package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahooSymbolNormalization(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"RELIANCE", "RELIANCE.NS"},
		{"reliance", "RELIANCE.NS"},
		{" TCS ", "TCS.NS"},
		{"RELIANCE.NS", "RELIANCE.NS"},
		{"500325.BO", "500325.BO"},
		{"^NSEI", "^NSEI"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, YahooSymbol(tt.in), "input %q", tt.in)
	}

	// idempotent: applying twice changes nothing
	for _, tt := range tests {
		assert.Equal(t, YahooSymbol(tt.in), YahooSymbol(YahooSymbol(tt.in)))
	}
}

func TestUSSymbolNormalization(t *testing.T) {
	assert.Equal(t, "AAPL", USSymbol("AAPL"))
	assert.Equal(t, "AAPL", USSymbol("aapl"))
	assert.Equal(t, "INFY", USSymbol("INFY.NS"))
	assert.Equal(t, "INFY", USSymbol("INFY.BO"))
	assert.Equal(t, USSymbol("INFY.NS"), USSymbol(USSymbol("INFY.NS")))
}

func yahooChartJSON(timestamps []int64, closes []float64) string {
	ts, hs, ls, cs := "", "", "", ""
	for i, t := range timestamps {
		if i > 0 {
			ts, hs, ls, cs = ts+",", hs+",", ls+",", cs+","
		}
		ts += fmt.Sprintf("%d", t)
		hs += fmt.Sprintf("%g", closes[i]+1)
		ls += fmt.Sprintf("%g", closes[i]-1)
		cs += fmt.Sprintf("%g", closes[i])
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%g},
		"timestamp":[%s],
		"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s]}]}}],
		"error":null}}`, closes[len(closes)-1], ts, cs, hs, ls, cs)
}

func TestYahooHistory(t *testing.T) {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	timestamps := make([]int64, 5)
	closes := make([]float64, 5)
	for i := range timestamps {
		timestamps[i] = base.AddDate(0, 0, i).Unix()
		closes[i] = 100 + float64(i)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "RELIANCE.NS")
		fmt.Fprint(w, yahooChartJSON(timestamps, closes))
	}))
	defer srv.Close()

	p := NewYahooProvider()
	p.BaseURL = srv.URL

	series, err := p.History(context.Background(), "RELIANCE", 5)
	require.NoError(t, err)
	require.Len(t, series, 5)
	assert.Equal(t, "2025-03-03", series[0].Date)
	assert.Equal(t, 100.0, series[0].Close)
	assert.Equal(t, "2025-03-07", series[4].Date)
}

func TestYahooQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, yahooChartJSON([]int64{time.Now().Unix()}, []float64{2456.75}))
	}))
	defer srv.Close()

	p := NewYahooProvider()
	p.BaseURL = srv.URL

	q, err := p.Quote(context.Background(), "RELIANCE")
	require.NoError(t, err)
	assert.Equal(t, 2456.75, q.Price)
	assert.Equal(t, RegionIN, q.Region)
}

func TestYahooAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider()
	p.BaseURL = srv.URL

	_, err := p.Quote(context.Background(), "NOPE")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "delisted")
	assert.False(t, perr.RateLimited)
}

func TestYahooRecommendations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "recommendationTrend")
		fmt.Fprint(w, `{"quoteSummary":{"result":[{"recommendationTrend":{"trend":[
			{"period":"0m","strongBuy":5,"buy":10,"hold":3,"sell":1,"strongSell":0},
			{"period":"-1m","strongBuy":4,"buy":11,"hold":3,"sell":1,"strongSell":1}
		]}}],"error":null}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider()
	p.BaseURL = srv.URL

	recs, err := p.Recommendations(context.Background(), "TCS")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "0m", recs[0].Period)
	assert.Equal(t, 5, recs[0].StrongBuy)
	assert.Equal(t, 10, recs[0].Buy)
}

func TestFinnhubQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		fmt.Fprint(w, `{"c":187.42,"h":189.1,"l":186.2,"o":188.0,"pc":186.9,"t":1740000000}`)
	}))
	defer srv.Close()

	p := NewFinnhubProvider("test-key")
	p.BaseURL = srv.URL

	q, err := p.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 187.42, q.Price)
	assert.Equal(t, RegionUS, q.Region)
}

func TestFinnhubRateLimitStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"API limit reached"}`)
	}))
	defer srv.Close()

	p := NewFinnhubProvider("test-key")
	p.BaseURL = srv.URL

	_, err := p.Quote(context.Background(), "AAPL")
	assert.True(t, IsRateLimited(err))
}

func alphaDailyJSON(dates []string, base float64) string {
	out := `{"Time Series (Daily)":{`
	for i, d := range dates {
		if i > 0 {
			out += ","
		}
		c := base + float64(i)
		out += fmt.Sprintf(`"%s":{"1. open":"%g","2. high":"%g","3. low":"%g","4. close":"%g","5. volume":"1000"}`,
			d, c, c+1, c-1, c)
	}
	return out + "}}"
}

func TestAlphaVantageHistory(t *testing.T) {
	// response deliberately unordered by date: provider must sort ascending
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "INFY", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, alphaDailyJSON([]string{"2025-03-05", "2025-03-03", "2025-03-04"}, 100))
	}))
	defer srv.Close()

	p := NewAlphaVantageProvider("k", AlphaVantageOptions{})
	p.BaseURL = srv.URL

	series, err := p.History(context.Background(), "INFY.NS", 10)
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "2025-03-03", series[0].Date)
	assert.Equal(t, "2025-03-05", series[2].Date)
}

func TestAlphaVantageRateLimitRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// rate-limit rejection arrives inside a 200 body
			fmt.Fprint(w, `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`)
			return
		}
		fmt.Fprint(w, alphaDailyJSON([]string{"2025-03-03", "2025-03-04"}, 100))
	}))
	defer srv.Close()

	p := NewAlphaVantageProvider("k", AlphaVantageOptions{
		RequestsPerMinute: 100,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
	})
	p.BaseURL = srv.URL

	series, err := p.History(context.Background(), "INFY", 10)
	require.NoError(t, err)
	assert.Len(t, series, 2)
	assert.Equal(t, 2, calls)
}

func TestAlphaVantageErrorMessagePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message":"Invalid API call."}`)
	}))
	defer srv.Close()

	p := NewAlphaVantageProvider("k", AlphaVantageOptions{RequestsPerMinute: 100})
	p.BaseURL = srv.URL

	_, err := p.History(context.Background(), "NOPE", 10)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.False(t, perr.RateLimited)
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("us")
	require.NoError(t, err)
	assert.Equal(t, RegionUS, r)

	r, err = ParseRegion(" IN ")
	require.NoError(t, err)
	assert.Equal(t, RegionIN, r)

	_, err = ParseRegion("EU")
	assert.Error(t, err)
}
