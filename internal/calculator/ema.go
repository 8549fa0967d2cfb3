package calculator

import "errors"

// EMA computes the exponential moving average series over the given period.
// The first value is seeded with the simple average of the first `period`
// closes, so the returned slice holds one value per bar starting at index
// period-1 of the input.
func EMA(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) < period {
		return nil, errors.New("not enough data for EMA calculation")
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	ema := sum / float64(period)

	k := 2.0 / (float64(period) + 1.0)
	out := make([]float64, 0, len(closes)-period+1)
	out = append(out, ema)
	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*k + ema
		out = append(out, ema)
	}
	return out, nil
}
