package indicators

import "stockwatch/market"

// SMA calculates the simple moving average of the most recent `period`
// values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, market.Errorf("sma period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, market.Errorf("not enough values for SMA(%d): need %d, got %d",
			period, period, len(values))
	}

	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// SMASeries computes a rolling simple moving average aligned to the input:
// out[i] averages values[i-period+1 .. i]. Entries before the warm-up window
// has filled are left at 0; callers index from period-1 onward.
//
// A rolling sum keeps this O(n); the strategies package walks these series
// when scanning trailing windows for crossovers.
func SMASeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}
