// Package market defines the shared price-history data model consumed by the
// indicator and strategy packages, plus the structural validation every
// calculation requires before it runs.
package market

import "time"

// DateLayout is the calendar-date format carried on every candle.
const DateLayout = "2006-01-02"

// Candle represents one trading session of OHLC data.
// A series is always ordered ascending by date before any calculation.
type Candle struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open,omitempty"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Time parses the candle's date. The zero time and an error are returned for
// an unparseable date; Validate rejects those before calculators see them.
func (c Candle) Time() (time.Time, error) {
	return time.Parse(DateLayout, c.Date)
}

// Closes extracts the close prices from a series, preserving order.
func Closes(series []Candle) []float64 {
	closes := make([]float64, len(series))
	for i, c := range series {
		closes[i] = c.Close
	}
	return closes
}
