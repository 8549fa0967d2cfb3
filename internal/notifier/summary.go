package notifier

import (
	"sync"
	"time"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// TradeEvent is one entry or exit recorded for the daily summary.
type TradeEvent struct {
	Symbol string
	Side   string
	Qty    int
	Price  float64
	Reason string
	PnL    float64
	At     time.Time
}

// Summary is everything the end-of-day report covers.
type Summary struct {
	GeneratedAt  time.Time
	Account      *model.AccountSnapshot
	UnrealizedPL float64
	Trades       []TradeEvent
	Signals      []model.Signal
	ScannerPicks []string
}

// Accumulator collects the day's signals, trades, and scanner picks in
// memory so the evening summary can report them. Safe for concurrent use
// from scheduler jobs.
type Accumulator struct {
	mu      sync.Mutex
	trades  []TradeEvent
	signals []model.Signal
	picks   []string
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// RecordSignal logs a computed signal.
func (a *Accumulator) RecordSignal(sig model.Signal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signals = append(a.signals, sig)
}

// RecordTrade logs an entry or exit.
func (a *Accumulator) RecordTrade(ev TradeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trades = append(a.trades, ev)
}

// RecordScannerPicks replaces the day's scanner picks.
func (a *Accumulator) RecordScannerPicks(picks []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.picks = append([]string(nil), picks...)
}

// Build assembles the summary from the accumulated day plus the given
// account snapshot.
func (a *Accumulator) Build(account *model.AccountSnapshot) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Summary{
		GeneratedAt:  time.Now().UTC(),
		Account:      account,
		Trades:       append([]TradeEvent(nil), a.trades...),
		Signals:      append([]model.Signal(nil), a.signals...),
		ScannerPicks: append([]string(nil), a.picks...),
	}
	if account != nil {
		for _, pos := range account.Positions {
			s.UnrealizedPL += pos.UnrealizedPL
		}
	}
	return s
}

// Reset clears the accumulated day, typically right after the summary is
// sent.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trades = nil
	a.signals = nil
	a.picks = nil
}
