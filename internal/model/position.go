package model

import (
	"strings"
	"time"
)

// Position is a broker-reported open position, normalized at the boundary so
// the rest of the bot never touches raw SDK records. The broker is the source
// of truth for quantity and pricing; OpenedAt is filled from the local store
// when the broker doesn't supply one.
type Position struct {
	Symbol       string
	Qty          float64
	CostBasis    float64
	MarketValue  float64
	CurrentPrice float64
	UnrealizedPL float64
	OpenedAt     *time.Time
}

// IsOptionSymbol reports whether a symbol looks like an OCC option contract
// (e.g. AAPL240119C00100000) rather than a plain equity ticker.
func IsOptionSymbol(symbol string) bool {
	return len(symbol) > 12 && (strings.Contains(symbol, "C") || strings.Contains(symbol, "P"))
}

// UnderlyingOf extracts the underlying ticker from an OCC option symbol.
// OCC symbols end with a fixed 15-character tail: YYMMDD, C or P, and an
// eight-digit strike. Non-option symbols come back unchanged.
func UnderlyingOf(symbol string) string {
	if !IsOptionSymbol(symbol) || len(symbol) <= 15 {
		return symbol
	}
	return symbol[:len(symbol)-15]
}

// AccountSnapshot is a whole-account view from the broker.
type AccountSnapshot struct {
	PortfolioValue float64
	BuyingPower    float64
	Cash           float64
	Status         string
	Positions      []Position
}
