package recorder

import (
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// SignalRecord holds one computed signal for a watchlist symbol.
type SignalRecord struct {
	Symbol    string
	Direction model.Direction
	Score     int
	Reasons   []string
	Approved  bool
	Reasoning string
}

// TradeRecord holds one submitted entry or exit order.
type TradeRecord struct {
	Symbol     string
	Underlying string
	Side       string // "buy" or "sell"
	Qty        int
	Price      float64
	Reason     string
	OrderID    string
	PnL        float64
}

// ScanRecord holds one day's pre-market scanner output.
type ScanRecord struct {
	Picks     []string
	Watchlist []string
}

// SummaryRecord holds the end-of-day portfolio snapshot.
type SummaryRecord struct {
	PortfolioValue float64
	BuyingPower    float64
	Cash           float64
	UnrealizedPL   float64
	OpenPositions  int
	TradeCount     int
	SignalCount    int
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSignal(rec *SignalRecord) error
	RecordTrade(rec *TradeRecord) error
	RecordScan(rec *ScanRecord) error
	RecordSummary(rec *SummaryRecord) error
	Close() error
}
