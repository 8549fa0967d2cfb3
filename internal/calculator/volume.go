package calculator

import "errors"

// TrailingAverage computes the average of the `window` values immediately
// preceding the final element, excluding the final element itself. Used for
// volume confirmation, where the current bar should not count toward its own
// baseline.
func TrailingAverage(values []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(values) < window+1 {
		return 0, errors.New("not enough data for trailing average")
	}
	sum := 0.0
	for i := len(values) - window - 1; i < len(values)-1; i++ {
		sum += values[i]
	}
	return sum / float64(window), nil
}
