package calculator

import "errors"

// MACD computes the MACD line (fast EMA minus slow EMA) and its signal line
// (EMA of the MACD line over signalPeriod). Both returned slices are aligned
// to each other and to the tail of the input, so the last element of each is
// the value for the most recent bar.
// Requires at least slow+signalPeriod-1 closes for one value; two or more
// values are needed for crossover detection.
func MACD(closes []float64, fast, slow, signalPeriod int) (macd, signal []float64, err error) {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 {
		return nil, nil, errors.New("periods must be positive")
	}
	if fast >= slow {
		return nil, nil, errors.New("fast period must be shorter than slow period")
	}
	if len(closes) < slow+signalPeriod-1 {
		return nil, nil, errors.New("not enough data for MACD calculation")
	}

	fastEMA, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, err
	}
	slowEMA, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, err
	}

	// The slow series starts later; align the fast series to it.
	offset := len(fastEMA) - len(slowEMA)
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signal, err = EMA(line, signalPeriod)
	if err != nil {
		return nil, nil, err
	}
	macd = line[len(line)-len(signal):]
	return macd, signal, nil
}
