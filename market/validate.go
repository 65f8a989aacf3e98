package market

import (
	"fmt"
	"math"
	"sort"
)

// ValidationError reports a structural precondition violation on input data.
// Index is -1 when the violation is not tied to a single candle.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid series: %s", e.Reason)
	}
	return fmt.Sprintf("invalid candle at index %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// Errorf builds a ValidationError not tied to a particular candle.
func Errorf(format string, args ...any) *ValidationError {
	return &ValidationError{Index: -1, Reason: fmt.Sprintf(format, args...)}
}

// Validate enforces the structural invariants every calculator relies on:
// finite high/low/close, high >= low, a parseable non-empty date, and
// non-decreasing date order. It returns a *ValidationError naming the
// offending index and field, or nil. Callers must not run calculations on a
// series that failed validation.
func Validate(series []Candle) error {
	var prevDate string
	for i, c := range series {
		if c.Date == "" {
			return &ValidationError{Index: i, Field: "date", Reason: "empty date"}
		}
		if _, err := c.Time(); err != nil {
			return &ValidationError{Index: i, Field: "date", Reason: fmt.Sprintf("unparseable date %q", c.Date)}
		}
		for _, f := range [...]struct {
			name string
			v    float64
		}{{"high", c.High}, {"low", c.Low}, {"close", c.Close}} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return &ValidationError{Index: i, Field: f.name, Reason: "not a finite number"}
			}
		}
		if c.High < c.Low {
			return &ValidationError{
				Index: i, Field: "high",
				Reason: fmt.Sprintf("high %.4f below low %.4f", c.High, c.Low),
			}
		}
		if c.Date < prevDate {
			return &ValidationError{
				Index: i, Field: "date",
				Reason: fmt.Sprintf("date %s out of order (prev %s); sort before validating", c.Date, prevDate),
			}
		}
		prevDate = c.Date
	}
	return nil
}

// SortByDate returns a new copy of the series sorted ascending by date.
// The input is never mutated; callers that cannot guarantee order must sort
// explicitly before calling Validate.
func SortByDate(series []Candle) []Candle {
	out := make([]Candle, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
