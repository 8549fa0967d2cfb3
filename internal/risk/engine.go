package risk

import (
	"math"
	"time"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// Exit reasons returned by ShouldExit, in check priority order.
const (
	ExitStopLoss    = "stop_loss"
	ExitTakeProfit  = "take_profit"
	ExitMaxHoldTime = "max_hold_time"
)

// contractMultiplier is the standard equity option multiplier.
const contractMultiplier = 100.0

// Limits holds the portfolio risk parameters.
type Limits struct {
	// MaxPositionPct caps a single position at this percent of portfolio
	// value.
	MaxPositionPct float64
	// MaxOpenPositions caps concurrent open positions.
	MaxOpenPositions int
	// StopLossPct exits when the premium falls this percent below entry.
	StopLossPct float64
	// TakeProfitPct exits when the premium rises this percent above entry.
	TakeProfitPct float64
	// MaxHoldDays exits after holding this many calendar days.
	MaxHoldDays int
}

// DefaultLimits returns the standard risk configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionPct:   10,
		MaxOpenPositions: 4,
		StopLossPct:      15,
		TakeProfitPct:    20,
		MaxHoldDays:      5,
	}
}

// Engine applies position sizing and exit rules.
type Engine struct {
	Limits

	now func() time.Time
}

// New returns an Engine enforcing the given limits.
func New(l Limits) *Engine {
	return &Engine{Limits: l, now: time.Now}
}

// CanOpenPosition reports whether another position may be opened given the
// current portfolio value and number of open positions.
func (e *Engine) CanOpenPosition(accountValue float64, openPositions int) bool {
	if accountValue <= 0 {
		return false
	}
	return openPositions < e.MaxOpenPositions
}

// PositionSize returns the number of contracts to buy so the position stays
// within MaxPositionPct of the portfolio. The premium is quoted per share;
// one contract costs premium times the 100x multiplier. Returns 0 when even
// one contract does not fit.
func (e *Engine) PositionSize(accountValue, premium float64) int {
	if accountValue <= 0 || premium <= 0 {
		return 0
	}
	maxDollars := accountValue * e.MaxPositionPct / 100.0
	costPerContract := premium * contractMultiplier
	contracts := int(maxDollars / costPerContract)
	if contracts < 0 {
		return 0
	}
	return contracts
}

// EntryPrice derives the average entry premium from a position's cost basis.
// Option positions carry the 100x multiplier in their cost basis; plain
// equity positions do not.
func EntryPrice(pos model.Position) float64 {
	qty := math.Abs(pos.Qty)
	if qty <= 0 {
		return 0
	}
	if model.IsOptionSymbol(pos.Symbol) {
		return pos.CostBasis / (qty * contractMultiplier)
	}
	return pos.CostBasis / qty
}

// ShouldExit runs the exit checks in priority order: stop loss, then take
// profit, then max hold time. It returns the first reason that fires.
// Positions with unusable entry or current prices never trigger the price
// checks.
func (e *Engine) ShouldExit(pos model.Position) (bool, string) {
	entry := EntryPrice(pos)
	current := pos.CurrentPrice
	if entry > 0 && current > 0 {
		change := 100.0 * (current - entry) / entry
		if change <= -e.StopLossPct {
			return true, ExitStopLoss
		}
		if change >= e.TakeProfitPct {
			return true, ExitTakeProfit
		}
	}
	if pos.OpenedAt != nil {
		held := int(e.now().UTC().Sub(pos.OpenedAt.UTC()).Hours() / 24)
		if held >= e.MaxHoldDays {
			return true, ExitMaxHoldTime
		}
	}
	return false, ""
}
