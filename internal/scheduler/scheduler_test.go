package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/llm"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/marketdata"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/notifier"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/options"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/recorder"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/risk"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/scanner"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/strategy"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/trading"
)

type stubExecutor struct {
	buys  []string
	qtys  []int
	sells []string
	err   error
}

func (s *stubExecutor) BuyToOpen(c *model.SelectedContract, qty int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.buys = append(s.buys, c.Symbol)
	s.qtys = append(s.qtys, qty)
	return "order-1", nil
}

func (s *stubExecutor) SellToClose(symbol string) error {
	if s.err != nil {
		return s.err
	}
	s.sells = append(s.sells, symbol)
	return nil
}

func (s *stubExecutor) CancelOpenOrders() (int, error) { return 0, nil }

type stubChain struct {
	candidates []model.ContractCandidate
	listed     bool
}

func (c *stubChain) Candidates(string, model.OptionType, int, int) ([]model.ContractCandidate, error) {
	return c.candidates, nil
}

func (c *stubChain) HasContracts(string) (bool, error) { return c.listed, nil }

type captureRecorder struct {
	signals   []recorder.SignalRecord
	trades    []recorder.TradeRecord
	scans     []recorder.ScanRecord
	summaries []recorder.SummaryRecord
}

func (r *captureRecorder) RecordSignal(rec *recorder.SignalRecord) error {
	r.signals = append(r.signals, *rec)
	return nil
}

func (r *captureRecorder) RecordTrade(rec *recorder.TradeRecord) error {
	r.trades = append(r.trades, *rec)
	return nil
}

func (r *captureRecorder) RecordScan(rec *recorder.ScanRecord) error {
	r.scans = append(r.scans, *rec)
	return nil
}

func (r *captureRecorder) RecordSummary(rec *recorder.SummaryRecord) error {
	r.summaries = append(r.summaries, *rec)
	return nil
}

func (r *captureRecorder) Close() error { return nil }

// bullishBars produces a long decline with a sharp final reversal, enough
// history for every indicator and a guaranteed RSI cross above oversold.
func bullishBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	price := 100.0 + float64(n)
	for i := range bars {
		price -= 1
		c := price
		if i == n-1 {
			c = price + 10
		}
		bars[i] = model.Bar{
			Time:   time.Now().AddDate(0, 0, -(n - i)),
			Open:   price,
			High:   c + 1,
			Low:    price - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func flatBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	return bars
}

func callCandidate(underlying string) model.ContractCandidate {
	return model.ContractCandidate{
		Symbol:       underlying + "260116C00100000",
		Underlying:   underlying,
		Type:         model.Call,
		Strike:       100,
		Expiration:   time.Now().AddDate(0, 0, 30),
		Bid:          2.40,
		Ask:          2.50,
		OpenInterest: 500,
		Volume:       100,
	}
}

func newTestScheduler(t *testing.T, fetcher *marketdata.MockFetcher, chain options.ChainFetcher, exec trading.Executor, rec recorder.Recorder, core []string) *Scheduler {
	t.Helper()
	store, err := trading.NewOpenDateStore(filepath.Join(t.TempDir(), "positions.json"))
	if err != nil {
		t.Fatal(err)
	}
	riskEngine := risk.New(risk.DefaultLimits())
	return NewScheduler(Deps{
		Fetcher:  fetcher,
		Engine:   strategy.New(strategy.DefaultParams()),
		Selector: options.NewSelector(chain, options.DefaultCriteria()),
		Risk:     riskEngine,
		Executor: exec,
		Tracker:  trading.NewTracker(fetcher, riskEngine, exec, store, time.UTC),
		Scanner:  scanner.New(fetcher, chain, []string{"TSLA"}, 2),
		Filter:   llm.NewFilter(nil, fetcher, false, time.Second),
		Notifier: notifier.NoopNotifier{},
		Summary:  notifier.NewAccumulator(),
		Recorder: rec,
		Core:     core,
		Location: time.UTC,
	})
}

func TestSignalScan_PlacesOrderOnBuySignal(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		DailyData:    bullishBars(40),
		FourHourData: flatBars(5),
		MarketOpen:   true,
	}
	chain := &stubChain{candidates: []model.ContractCandidate{callCandidate("TSLA")}, listed: true}
	exec := &stubExecutor{}
	rec := &captureRecorder{}
	s := newTestScheduler(t, fetcher, chain, exec, rec, []string{"TSLA"})

	s.runSignalScan()

	if len(exec.buys) != 1 {
		t.Fatalf("buys = %v, want one order", exec.buys)
	}
	if exec.qtys[0] != 40 {
		t.Errorf("qty = %d, want 40 (10%% of 100000 at 2.50 premium)", exec.qtys[0])
	}
	if len(rec.trades) != 1 || rec.trades[0].Side != "buy" {
		t.Fatalf("trades = %+v, want one buy", rec.trades)
	}
	if rec.trades[0].OrderID != "order-1" {
		t.Errorf("OrderID = %q", rec.trades[0].OrderID)
	}
	if len(rec.signals) != 1 || !rec.signals[0].Approved {
		t.Errorf("signals = %+v, want one approved record", rec.signals)
	}
}

func TestSignalScan_MarketClosed(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		DailyData:  bullishBars(40),
		MarketOpen: false,
	}
	chain := &stubChain{candidates: []model.ContractCandidate{callCandidate("TSLA")}, listed: true}
	exec := &stubExecutor{}
	s := newTestScheduler(t, fetcher, chain, exec, &captureRecorder{}, []string{"TSLA"})

	s.runSignalScan()

	if len(exec.buys) != 0 {
		t.Errorf("expected no orders on a closed market, got %v", exec.buys)
	}
}

func TestSignalScan_RespectsPositionLimit(t *testing.T) {
	account := &model.AccountSnapshot{PortfolioValue: 100000, Status: "ACTIVE"}
	for _, sym := range []string{"AAPL", "MSFT", "AMD", "NVDA"} {
		account.Positions = append(account.Positions, model.Position{
			Symbol: sym + "260116C00100000", Qty: 1, CostBasis: 250,
		})
	}
	fetcher := &marketdata.MockFetcher{
		DailyData:    bullishBars(40),
		FourHourData: flatBars(5),
		AccountData:  account,
		MarketOpen:   true,
	}
	chain := &stubChain{candidates: []model.ContractCandidate{callCandidate("TSLA")}, listed: true}
	exec := &stubExecutor{}
	rec := &captureRecorder{}
	s := newTestScheduler(t, fetcher, chain, exec, rec, []string{"TSLA"})

	s.runSignalScan()

	if len(exec.buys) != 0 {
		t.Fatalf("expected no orders at the position limit, got %v", exec.buys)
	}
	if len(rec.signals) != 1 || rec.signals[0].Approved {
		t.Fatalf("signals = %+v, want one unapproved record", rec.signals)
	}
	if rec.signals[0].Reasoning != "open position limit reached" {
		t.Errorf("Reasoning = %q", rec.signals[0].Reasoning)
	}
}

func TestSignalScan_SkipsHeldUnderlying(t *testing.T) {
	account := &model.AccountSnapshot{
		PortfolioValue: 100000,
		Status:         "ACTIVE",
		Positions: []model.Position{
			{Symbol: "TSLA260116C00250000", Qty: 1, CostBasis: 250},
		},
	}
	fetcher := &marketdata.MockFetcher{
		DailyData:    bullishBars(40),
		FourHourData: flatBars(5),
		AccountData:  account,
		MarketOpen:   true,
	}
	chain := &stubChain{candidates: []model.ContractCandidate{callCandidate("TSLA")}, listed: true}
	exec := &stubExecutor{}
	s := newTestScheduler(t, fetcher, chain, exec, &captureRecorder{}, []string{"TSLA"})

	s.runSignalScan()

	if len(exec.buys) != 0 {
		t.Errorf("expected no orders while holding the underlying, got %v", exec.buys)
	}
}

func TestPremarketScan_UpdatesWatchlist(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		SnapshotData: map[string]marketdata.Snapshot{
			"TSLA": {Symbol: "TSLA", Latest: 110, PrevClose: 100},
		},
		MarketOpen: true,
	}
	chain := &stubChain{listed: true}
	rec := &captureRecorder{}
	s := newTestScheduler(t, fetcher, chain, &stubExecutor{}, rec, []string{"SPY"})

	s.runPremarketScan()

	got := s.Watchlist()
	if len(got) < 2 || got[0] != "SPY" {
		t.Fatalf("watchlist = %v, want core first plus movers", got)
	}
	if len(rec.scans) != 1 {
		t.Fatalf("scans = %+v, want one record", rec.scans)
	}
	if len(rec.scans[0].Picks) == 0 || rec.scans[0].Picks[0] != "TSLA" {
		t.Errorf("Picks = %v, want TSLA first", rec.scans[0].Picks)
	}
}

func TestRunPremarketNow_SkipsNonMarketDay(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		SnapshotData: map[string]marketdata.Snapshot{
			"TSLA": {Symbol: "TSLA", Latest: 110, PrevClose: 100},
		},
		MarketOpen: false,
	}
	rec := &captureRecorder{}
	s := newTestScheduler(t, fetcher, &stubChain{listed: true}, &stubExecutor{}, rec, []string{"SPY"})

	s.RunPremarketNow()

	if got := s.Watchlist(); len(got) != 1 || got[0] != "SPY" {
		t.Errorf("watchlist = %v, want the core list untouched", got)
	}
	if len(rec.scans) != 0 {
		t.Errorf("scans = %+v, want none on a closed day", rec.scans)
	}
}

func TestSummary_RecordsAndResets(t *testing.T) {
	fetcher := &marketdata.MockFetcher{MarketOpen: true}
	rec := &captureRecorder{}
	s := newTestScheduler(t, fetcher, &stubChain{}, &stubExecutor{}, rec, nil)

	s.d.Summary.RecordTrade(notifier.TradeEvent{Symbol: "TSLA260116C00100000", Side: "buy", Qty: 2, Price: 2.5})

	s.runSummary()

	if len(rec.summaries) != 1 {
		t.Fatalf("summaries = %+v, want one record", rec.summaries)
	}
	if rec.summaries[0].TradeCount != 1 {
		t.Errorf("TradeCount = %d, want 1", rec.summaries[0].TradeCount)
	}
	if after := s.d.Summary.Build(nil); len(after.Trades) != 0 {
		t.Errorf("accumulator not reset, trades = %+v", after.Trades)
	}
}

func TestFridayClose_FlattensAllPositions(t *testing.T) {
	account := &model.AccountSnapshot{
		PortfolioValue: 100000,
		Status:         "ACTIVE",
		Positions: []model.Position{
			{Symbol: "TSLA260116C00250000", Qty: 2, CurrentPrice: 3.0, UnrealizedPL: 120},
			{Symbol: "SPY", Qty: 10, CurrentPrice: 500},
		},
	}
	fetcher := &marketdata.MockFetcher{AccountData: account, MarketOpen: true}
	exec := &stubExecutor{}
	rec := &captureRecorder{}
	s := newTestScheduler(t, fetcher, &stubChain{}, exec, rec, nil)

	s.runFridayClose()

	if len(exec.sells) != 2 || exec.sells[0] != "TSLA260116C00250000" || exec.sells[1] != "SPY" {
		t.Fatalf("sells = %v, want both positions flattened", exec.sells)
	}
	if len(rec.trades) != 2 || rec.trades[0].Reason != "friday_close" || rec.trades[1].Reason != "friday_close" {
		t.Fatalf("trades = %+v, want two friday_close sells", rec.trades)
	}
}

func TestRegisterAll_BadSpec(t *testing.T) {
	s := newTestScheduler(t, &marketdata.MockFetcher{}, &stubChain{}, &stubExecutor{}, &captureRecorder{}, nil)
	err := s.RegisterAll(CronSpecs{
		Premarket:     "not a cron spec",
		OpenScan:      "0 45 9 * * 1-5",
		RecurringScan: "0 0,30 10-15 * * 1-5",
		Track:         "0 */5 9-16 * * 1-5",
		FridayClose:   "0 0 15 * * 5",
		Summary:       "0 15 16 * * 1-5",
	})
	if err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestSignalScan_BackfillsMissedPremarket(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		DailyData:    flatBars(40),
		FourHourData: flatBars(5),
		MarketOpen:   true,
	}
	chain := &stubChain{listed: true}
	rec := &captureRecorder{}
	s := newTestScheduler(t, fetcher, chain, &stubExecutor{}, rec, []string{"TSLA"})

	s.runSignalScan()
	if len(rec.scans) != 1 {
		t.Fatalf("scans = %d, want premarket backfill before first scan", len(rec.scans))
	}

	s.runSignalScan()
	if len(rec.scans) != 1 {
		t.Errorf("scans = %d, want no second backfill the same day", len(rec.scans))
	}
}
