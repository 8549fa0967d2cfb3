package marketdata

import (
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	md "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// snapshotBatch caps symbols per snapshot request.
const snapshotBatch = 100

// AlpacaFetcher implements Fetcher on the Alpaca trading and data APIs.
type AlpacaFetcher struct {
	trading *alpaca.Client
	data    *md.Client
	feed    md.Feed
}

// NewAlpacaFetcher creates a fetcher from already-configured Alpaca clients.
func NewAlpacaFetcher(trading *alpaca.Client, data *md.Client, feed md.Feed) *AlpacaFetcher {
	if feed == "" {
		feed = md.IEX
	}
	return &AlpacaFetcher{trading: trading, data: data, feed: feed}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// DailyBars fetches up to lookback daily OHLCV bars, most recent last.
func (f *AlpacaFetcher) DailyBars(symbol string, lookback int) ([]model.Bar, error) {
	end := time.Now().UTC()
	// Pad trading days out to calendar days.
	start := end.AddDate(0, 0, -(lookback*7/5 + 10))
	bars, err := f.data.GetBars(symbol, md.GetBarsRequest{
		TimeFrame:  md.OneDay,
		Adjustment: md.Split,
		Start:      start,
		End:        end,
		Feed:       f.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("get daily bars %s: %w", symbol, err)
	}
	return tailBars(convertBars(bars), lookback), nil
}

// FourHourBars fetches up to lookback 4-hour OHLCV bars, most recent last.
func (f *AlpacaFetcher) FourHourBars(symbol string, lookback int) ([]model.Bar, error) {
	end := time.Now().UTC()
	// Roughly 2 bars per trading day within market hours.
	days := lookback/2*7/5 + 7
	if days < 14 {
		days = 14
	}
	bars, err := f.data.GetBars(symbol, md.GetBarsRequest{
		TimeFrame:  md.NewTimeFrame(4, md.Hour),
		Adjustment: md.Split,
		Start:      end.AddDate(0, 0, -days),
		End:        end,
		Feed:       f.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("get 4h bars %s: %w", symbol, err)
	}
	return tailBars(convertBars(bars), lookback), nil
}

// CurrentPrice returns the latest quote midpoint, falling back to the latest
// trade price when the quote is one-sided.
func (f *AlpacaFetcher) CurrentPrice(symbol string) (float64, error) {
	q, err := f.data.GetLatestQuote(symbol, md.GetLatestQuoteRequest{Feed: f.feed})
	if err == nil && q != nil && q.AskPrice > 0 && q.BidPrice > 0 {
		return (q.AskPrice + q.BidPrice) / 2.0, nil
	}
	t, terr := f.data.GetLatestTrade(symbol, md.GetLatestTradeRequest{Feed: f.feed})
	if terr != nil {
		if err != nil {
			return 0, fmt.Errorf("get latest quote %s: %w", symbol, err)
		}
		return 0, fmt.Errorf("get latest trade %s: %w", symbol, terr)
	}
	if t == nil || t.Price <= 0 {
		return 0, fmt.Errorf("no usable price for %s", symbol)
	}
	return t.Price, nil
}

// Snapshots fetches latest/previous-close snapshots for the given symbols in
// batches. Symbols with no usable data are omitted from the result.
func (f *AlpacaFetcher) Snapshots(symbols []string) (map[string]Snapshot, error) {
	out := make(map[string]Snapshot, len(symbols))
	for i := 0; i < len(symbols); i += snapshotBatch {
		batch := symbols[i:min(i+snapshotBatch, len(symbols))]
		snaps, err := f.data.GetSnapshots(batch, md.GetSnapshotRequest{Feed: f.feed})
		if err != nil {
			return nil, fmt.Errorf("get snapshots: %w", err)
		}
		for sym, snap := range snaps {
			if snap == nil {
				continue
			}
			s := Snapshot{Symbol: sym}
			if snap.DailyBar != nil {
				s.Latest = snap.DailyBar.Close
			}
			if s.Latest == 0 && snap.LatestQuote != nil {
				s.Latest = (snap.LatestQuote.AskPrice + snap.LatestQuote.BidPrice) / 2.0
			}
			if snap.PrevDailyBar != nil {
				s.PrevClose = snap.PrevDailyBar.Close
			}
			if s.PrevClose == 0 {
				s.PrevClose = s.Latest
			}
			if s.Latest > 0 {
				out[sym] = s
			}
		}
	}
	return out, nil
}

// Headlines returns up to limit recent news headlines for symbol, formatted
// as "headline (author)".
func (f *AlpacaFetcher) Headlines(symbol string, limit int) ([]string, error) {
	news, err := f.data.GetNews(md.GetNewsRequest{
		Symbols:    []string{symbol},
		Start:      time.Now().AddDate(0, 0, -7),
		Sort:       md.SortDesc,
		TotalLimit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get news %s: %w", symbol, err)
	}
	headlines := make([]string, 0, len(news))
	for _, n := range news {
		if n.Headline == "" {
			continue
		}
		if n.Author != "" {
			headlines = append(headlines, fmt.Sprintf("%s (%s)", n.Headline, n.Author))
		} else {
			headlines = append(headlines, n.Headline)
		}
	}
	return headlines, nil
}

// Account returns portfolio value, buying power, and all open positions.
func (f *AlpacaFetcher) Account() (*model.AccountSnapshot, error) {
	acc, err := f.trading.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	positions, err := f.trading.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	snap := &model.AccountSnapshot{
		PortfolioValue: acc.PortfolioValue.InexactFloat64(),
		BuyingPower:    acc.BuyingPower.InexactFloat64(),
		Cash:           acc.Cash.InexactFloat64(),
		Status:         acc.Status,
		Positions:      make([]model.Position, 0, len(positions)),
	}
	for _, p := range positions {
		pos := model.Position{
			Symbol:    p.Symbol,
			Qty:       p.Qty.InexactFloat64(),
			CostBasis: p.CostBasis.InexactFloat64(),
		}
		if p.MarketValue != nil {
			pos.MarketValue = p.MarketValue.InexactFloat64()
		}
		if p.CurrentPrice != nil {
			pos.CurrentPrice = p.CurrentPrice.InexactFloat64()
		}
		if p.UnrealizedPL != nil {
			pos.UnrealizedPL = p.UnrealizedPL.InexactFloat64()
		}
		snap.Positions = append(snap.Positions, pos)
	}
	return snap, nil
}

// IsMarketDay reports whether the exchange calendar has a session on the
// given day.
func (f *AlpacaFetcher) IsMarketDay(day time.Time) (bool, error) {
	days, err := f.trading.GetCalendar(alpaca.GetCalendarRequest{Start: day, End: day})
	if err != nil {
		return false, fmt.Errorf("get calendar: %w", err)
	}
	want := day.Format("2006-01-02")
	for _, d := range days {
		if d.Date == want {
			return true, nil
		}
	}
	return false, nil
}

func convertBars(bars []md.Bar) []model.Bar {
	out := make([]model.Bar, len(bars))
	for i, b := range bars {
		out[i] = model.Bar{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return out
}

func tailBars(bars []model.Bar, n int) []model.Bar {
	if len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
