package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOK(t *testing.T) {
	series := []Candle{
		{Date: "2025-01-02", High: 105, Low: 99, Close: 102},
		{Date: "2025-01-03", High: 107, Low: 101, Close: 105},
		{Date: "2025-01-06", High: 108, Low: 104, Close: 106},
	}
	assert.NoError(t, Validate(series))
}

func TestValidateEmptySeries(t *testing.T) {
	assert.NoError(t, Validate(nil))
}

func TestValidateHighBelowLow(t *testing.T) {
	series := []Candle{
		{Date: "2025-01-02", High: 105, Low: 99, Close: 102},
		{Date: "2025-01-03", High: 100, Low: 104, Close: 102},
	}
	err := Validate(series)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "high", verr.Field)
}

func TestValidateNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		candle Candle
		field  string
	}{
		{"nan close", Candle{Date: "2025-01-02", High: 10, Low: 9, Close: math.NaN()}, "close"},
		{"inf high", Candle{Date: "2025-01-02", High: math.Inf(1), Low: 9, Close: 9.5}, "high"},
		{"nan low", Candle{Date: "2025-01-02", High: 10, Low: math.NaN(), Close: 9.5}, "low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]Candle{tt.candle})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, 0, verr.Index)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateBadDate(t *testing.T) {
	err := Validate([]Candle{{Date: "02/01/2025", High: 10, Low: 9, Close: 9.5}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)

	err = Validate([]Candle{{High: 10, Low: 9, Close: 9.5}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)
}

func TestValidateOutOfOrder(t *testing.T) {
	series := []Candle{
		{Date: "2025-01-06", High: 10, Low: 9, Close: 9.5},
		{Date: "2025-01-03", High: 10, Low: 9, Close: 9.5},
	}
	err := Validate(series)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
}

func TestSortByDateDoesNotMutate(t *testing.T) {
	series := []Candle{
		{Date: "2025-01-06", Close: 3},
		{Date: "2025-01-02", Close: 1},
		{Date: "2025-01-03", Close: 2},
	}
	sorted := SortByDate(series)

	assert.Equal(t, "2025-01-02", sorted[0].Date)
	assert.Equal(t, "2025-01-03", sorted[1].Date)
	assert.Equal(t, "2025-01-06", sorted[2].Date)
	// original untouched
	assert.Equal(t, "2025-01-06", series[0].Date)

	assert.NoError(t, Validate(sorted))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.23, RoundTo(1.2345, 2))
	assert.Equal(t, 1.235, RoundTo(1.2345, 3))
	assert.Equal(t, 3.0, RoundTo(2.5, 0))
	assert.Equal(t, 1.2345, RoundTo(1.2345, -1))
}
