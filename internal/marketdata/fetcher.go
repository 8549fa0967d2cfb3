package marketdata

import (
	"time"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// Snapshot is the slice of a symbol's latest state used by the pre-market
// scanner: the most recent price and the prior session's close.
type Snapshot struct {
	Symbol    string
	Latest    float64
	PrevClose float64
}

// ChangePct returns the percent move from the previous close, or 0 when the
// previous close is unusable.
func (s Snapshot) ChangePct() float64 {
	if s.PrevClose <= 0 || s.Latest <= 0 {
		return 0
	}
	return 100.0 * (s.Latest - s.PrevClose) / s.PrevClose
}

// Fetcher defines the interface for fetching market data and account state.
type Fetcher interface {
	DailyBars(symbol string, lookback int) ([]model.Bar, error)
	FourHourBars(symbol string, lookback int) ([]model.Bar, error)
	CurrentPrice(symbol string) (float64, error)
	Snapshots(symbols []string) (map[string]Snapshot, error)
	Headlines(symbol string, limit int) ([]string, error)
	Account() (*model.AccountSnapshot, error)
	IsMarketDay(day time.Time) (bool, error)
	Name() string
}
