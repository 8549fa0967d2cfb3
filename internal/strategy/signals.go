package strategy

import (
	"fmt"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/calculator"
)

// rsiSignal scores the RSI component: +1 on a cross above the oversold band
// or while pinned below it, -1 on a cross below the overbought band or while
// pinned above it, 0 in the neutral zone.
func (e *Engine) rsiSignal(closes []float64) (int, []string) {
	if len(closes) < e.RSIPeriod+2 {
		return 0, nil
	}
	rsi, err := calculator.RSI(closes, e.RSIPeriod)
	if err != nil || len(rsi) < 2 {
		return 0, nil
	}
	return classifyRSI(rsi[len(rsi)-2], rsi[len(rsi)-1], e.RSIOversold, e.RSIOverbought)
}

func classifyRSI(prev, curr, oversold, overbought float64) (int, []string) {
	switch {
	case prev <= oversold && curr > oversold:
		return 1, []string{fmt.Sprintf("RSI crossed above %g (bullish)", oversold)}
	case prev >= overbought && curr < overbought:
		return -1, []string{fmt.Sprintf("RSI crossed below %g (bearish)", overbought)}
	case curr > oversold && curr < overbought:
		return 0, nil
	case curr <= oversold:
		return 1, []string{fmt.Sprintf("RSI at oversold %.1f (bullish)", curr)}
	default:
		return -1, []string{fmt.Sprintf("RSI at overbought %.1f (bearish)", curr)}
	}
}

// macdSignal scores the MACD component: +1 when the MACD line crosses above
// its signal line, -1 when it crosses below, 0 otherwise.
func (e *Engine) macdSignal(closes []float64) (int, []string) {
	if len(closes) < e.MACDSlow+e.MACDSignal+2 {
		return 0, nil
	}
	macd, signal, err := calculator.MACD(closes, e.MACDFast, e.MACDSlow, e.MACDSignal)
	if err != nil || len(macd) < 2 {
		return 0, nil
	}
	n := len(macd)
	return classifyMACD(macd[n-2], macd[n-1], signal[n-2], signal[n-1])
}

func classifyMACD(prevMACD, currMACD, prevSignal, currSignal float64) (int, []string) {
	if prevMACD <= prevSignal && currMACD > currSignal {
		return 1, []string{"MACD crossed above signal (bullish)"}
	}
	if prevMACD >= prevSignal && currMACD < currSignal {
		return -1, []string{"MACD crossed below signal (bearish)"}
	}
	return 0, nil
}

// emaSignal scores the EMA component: +1 when the fast EMA crosses above the
// slow EMA, -1 when it crosses below, 0 otherwise.
func (e *Engine) emaSignal(closes []float64) (int, []string) {
	if len(closes) < e.EMASlow+2 {
		return 0, nil
	}
	fast, err := calculator.EMA(closes, e.EMAFast)
	if err != nil || len(fast) < 2 {
		return 0, nil
	}
	slow, err := calculator.EMA(closes, e.EMASlow)
	if err != nil || len(slow) < 2 {
		return 0, nil
	}
	nf, ns := len(fast), len(slow)
	score, crossed := classifyCross(fast[nf-2], fast[nf-1], slow[ns-2], slow[ns-1])
	if !crossed {
		return 0, nil
	}
	if score > 0 {
		return 1, []string{fmt.Sprintf("EMA%d crossed above EMA%d (bullish)", e.EMAFast, e.EMASlow)}
	}
	return -1, []string{fmt.Sprintf("EMA%d crossed below EMA%d (bearish)", e.EMAFast, e.EMASlow)}
}

func classifyCross(prevFast, currFast, prevSlow, currSlow float64) (int, bool) {
	if prevFast <= prevSlow && currFast > currSlow {
		return 1, true
	}
	if prevFast >= prevSlow && currFast < currSlow {
		return -1, true
	}
	return 0, false
}

// volumeConfirmed reports whether the current bar's volume clears the
// multiplier over the trailing window average. The current bar is excluded
// from its own baseline. A missing or zero baseline counts as confirmed.
func (e *Engine) volumeConfirmed(volumes []float64) bool {
	if len(volumes) < e.VolumeWindow+1 {
		return false
	}
	avg, err := calculator.TrailingAverage(volumes, e.VolumeWindow)
	if err != nil {
		return false
	}
	if avg <= 0 {
		return true
	}
	return volumes[len(volumes)-1] >= e.VolumeMultiplier*avg
}
