package strategy

import (
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

const (
	// minIntradayBars is how many 4-hour bars we need before preferring them
	// over daily bars.
	minIntradayBars = 20
	// minPrimaryBars is the floor below which no signal is computed at all.
	minPrimaryBars = 10
)

// Params holds the tunable inputs of the momentum strategy.
type Params struct {
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	EMAFast int
	EMASlow int

	VolumeWindow     int
	VolumeMultiplier float64

	// Threshold is the absolute composite score required to emit an entry
	// signal.
	Threshold int
}

// DefaultParams returns the standard configuration: RSI(14) with 30/70
// bands, MACD(12,26,9), EMA 9/21 crossover, and 1.5x 20-bar volume
// confirmation.
func DefaultParams() Params {
	return Params{
		RSIPeriod:        14,
		RSIOversold:      30,
		RSIOverbought:    70,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		EMAFast:          9,
		EMASlow:          21,
		VolumeWindow:     20,
		VolumeMultiplier: 1.5,
		Threshold:        1,
	}
}

// Engine scores symbols with a composite momentum strategy: RSI, MACD, and
// EMA crossovers each contribute -1, 0, or +1, and volume acts as an
// advisory check that annotates but never blocks the signal.
type Engine struct {
	Params
}

// New returns an Engine using the given parameters.
func New(p Params) *Engine {
	return &Engine{Params: p}
}

// Calculate produces the composite signal for one symbol. Four-hour bars are
// preferred when enough of them exist; otherwise daily bars are used. Too few
// bars of either kind yields NO_TRADE.
func (e *Engine) Calculate(symbol string, daily, fourHour []model.Bar) model.Signal {
	primary := daily
	if len(fourHour) >= minIntradayBars {
		primary = fourHour
	}
	if len(primary) < minPrimaryBars {
		return model.Signal{
			Symbol:    symbol,
			Direction: model.NoTrade,
			Reasons:   []string{"Insufficient bar data"},
		}
	}

	closes := model.Closes(primary)
	volumes := model.Volumes(primary)

	rsiScore, rsiReasons := e.rsiSignal(closes)
	macdScore, macdReasons := e.macdSignal(closes)
	emaScore, emaReasons := e.emaSignal(closes)

	reasons := make([]string, 0, 4)
	reasons = append(reasons, rsiReasons...)
	reasons = append(reasons, macdReasons...)
	reasons = append(reasons, emaReasons...)
	if !e.volumeConfirmed(volumes) {
		reasons = append(reasons, "Volume below confirmation threshold (signal not blocked)")
	}

	score := rsiScore + macdScore + emaScore

	return model.Signal{
		Symbol:    symbol,
		Direction: directionFor(score, e.Threshold),
		Score:     score,
		Reasons:   reasons,
	}
}

func directionFor(score, threshold int) model.Direction {
	switch {
	case score >= threshold:
		return model.BuyCall
	case score <= -threshold:
		return model.BuyPut
	}
	return model.NoTrade
}
