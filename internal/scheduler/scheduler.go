package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

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

// Bar counts fetched per symbol on every scan. Enough history for the
// slowest indicator (MACD 26+9) with headroom.
const (
	dailyLookback    = 60
	fourHourLookback = 60
)

// Deps are the components the scheduler drives.
type Deps struct {
	Fetcher   marketdata.Fetcher
	Engine    *strategy.Engine
	Selector  *options.Selector
	Risk      *risk.Engine
	Executor  trading.Executor
	Tracker   *trading.Tracker
	Scanner   *scanner.Scanner
	Filter    *llm.Filter
	Notifier  notifier.Notifier
	Summary   *notifier.Accumulator
	Recorder  recorder.Recorder
	Core      []string
	Location  *time.Location
}

// Scheduler manages all cron tasks and carries the intraday watchlist
// between them.
type Scheduler struct {
	cron *cron.Cron
	d    Deps

	mu        sync.Mutex
	watchlist []string
	scanDay   time.Time
}

// NewScheduler creates a scheduler running in the given market timezone.
func NewScheduler(d Deps) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(d.Location)),
		d:         d,
		watchlist: d.Core,
	}
}

// CronSpecs holds the six job schedules, in cron format with seconds.
type CronSpecs struct {
	Premarket     string
	OpenScan      string
	RecurringScan string
	Track         string
	FridayClose   string
	Summary       string
}

// RegisterAll registers the full trading day: pre-market scan, opening and
// recurring signal scans, position tracking, the Friday flatten, and the
// evening summary.
func (s *Scheduler) RegisterAll(specs CronSpecs) error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"premarket_scan", specs.Premarket, s.runPremarketScan},
		{"open_scan", specs.OpenScan, s.runSignalScan},
		{"recurring_scan", specs.RecurringScan, s.runSignalScan},
		{"position_track", specs.Track, s.runTrack},
		{"friday_close", specs.FridayClose, s.runFridayClose},
		{"daily_summary", specs.Summary, s.runSummary},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, j.fn); err != nil {
			return fmt.Errorf("register %s: %w", j.name, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunPremarketNow executes the pre-market scan immediately, used at startup
// so the watchlist is populated without waiting for the next cron fire.
func (s *Scheduler) RunPremarketNow() {
	s.runPremarketScan()
}

// Watchlist returns the symbols the next signal scan will cover.
func (s *Scheduler) Watchlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.watchlist))
	copy(out, s.watchlist)
	return out
}

func (s *Scheduler) setWatchlist(symbols []string) {
	s.mu.Lock()
	s.watchlist = symbols
	s.scanDay = time.Now().In(s.d.Location)
	s.mu.Unlock()
}

// scannedToday reports whether the pre-market scan already ran this trading
// day, so a missed scan can be backfilled before the first signal pass.
func (s *Scheduler) scannedToday() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().In(s.d.Location)
	return s.scanDay.Year() == now.Year() && s.scanDay.YearDay() == now.YearDay()
}

// isMarketDay consults the exchange calendar. Calendar errors fail open so a
// flaky API call never silently halts a trading day.
func (s *Scheduler) isMarketDay() bool {
	open, err := s.d.Fetcher.IsMarketDay(time.Now().In(s.d.Location))
	if err != nil {
		log.Warn().Err(err).Msg("calendar check failed, assuming market day")
		return true
	}
	if !open {
		log.Debug().Msg("market closed today, skipping")
	}
	return open
}

func (s *Scheduler) runPremarketScan() {
	if !s.isMarketDay() {
		return
	}
	log.Info().Msg("running pre-market scan")
	watchlist, picks := s.d.Scanner.BuildWatchlist(s.d.Core)
	s.setWatchlist(watchlist)
	s.d.Summary.RecordScannerPicks(picks)
	if err := s.d.Recorder.RecordScan(&recorder.ScanRecord{Picks: picks, Watchlist: watchlist}); err != nil {
		log.Error().Err(err).Msg("record scan")
	}
}

func (s *Scheduler) runSignalScan() {
	if !s.isMarketDay() {
		return
	}
	if !s.scannedToday() {
		log.Info().Msg("pre-market scan missed, backfilling")
		s.runPremarketScan()
	}
	account, err := s.d.Fetcher.Account()
	if err != nil {
		log.Error().Err(err).Msg("fetch account, skipping scan")
		return
	}
	openCount := 0
	held := make(map[string]bool)
	for _, pos := range account.Positions {
		if model.IsOptionSymbol(pos.Symbol) {
			openCount++
			held[model.UnderlyingOf(pos.Symbol)] = true
		}
	}
	available := account.PortfolioValue

	watchlist := s.Watchlist()
	log.Info().Int("symbols", len(watchlist)).Int("open_positions", openCount).Msg("running signal scan")
	for _, symbol := range watchlist {
		signal, daily, fourHour, ok := s.evaluate(symbol)
		if !ok {
			continue
		}
		if !signal.Direction.Entry() {
			s.recordSignal(signal, false, "")
			continue
		}
		s.d.Summary.RecordSignal(signal)
		if held[symbol] {
			log.Debug().Str("symbol", symbol).Msg("already holding, skipping entry")
			s.recordSignal(signal, false, "already holding a position on this underlying")
			continue
		}
		if !s.d.Risk.CanOpenPosition(available, openCount) {
			log.Info().Str("symbol", symbol).Msg("position limit reached, skipping entry")
			s.recordSignal(signal, false, "open position limit reached")
			continue
		}

		decision := s.d.Filter.Review(signal, daily, fourHour, account)
		s.recordSignal(signal, decision.Approved, decision.Reasoning)
		if !decision.Approved {
			log.Info().Str("symbol", symbol).Str("reasoning", decision.Reasoning).Msg("trade vetoed")
			continue
		}

		if spent := s.enter(symbol, signal, available); spent > 0 {
			openCount++
			held[symbol] = true
			available -= spent
		}
	}

	// Catch fresh exits immediately instead of waiting for the next tick.
	actions, err := s.d.Tracker.Track()
	if err != nil {
		log.Error().Err(err).Msg("post-scan tracking failed")
		return
	}
	s.recordExits(actions)
}

// evaluate fetches bars and computes the signal for one symbol. A failed
// four-hour fetch degrades to daily bars rather than skipping the symbol.
func (s *Scheduler) evaluate(symbol string) (model.Signal, []model.Bar, []model.Bar, bool) {
	daily, err := s.d.Fetcher.DailyBars(symbol, dailyLookback)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("daily bars fetch failed")
		return model.Signal{}, nil, nil, false
	}
	fourHour, err := s.d.Fetcher.FourHourBars(symbol, fourHourLookback)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("four-hour bars fetch failed, using daily only")
		fourHour = nil
	}
	signal := s.d.Engine.Calculate(symbol, daily, fourHour)
	log.Debug().Str("symbol", symbol).Str("direction", string(signal.Direction)).
		Int("score", signal.Score).Msg("signal computed")
	return signal, daily, fourHour, true
}

// enter selects a contract, sizes the position, and submits the order.
// Returns the capital committed, or 0 when no order was placed.
func (s *Scheduler) enter(symbol string, signal model.Signal, accountValue float64) float64 {
	contract, err := s.d.Selector.Select(symbol, signal.Direction)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("contract selection failed")
		return 0
	}
	if contract == nil {
		log.Info().Str("symbol", symbol).Msg("no viable contract")
		return 0
	}
	qty := s.d.Risk.PositionSize(accountValue, contract.EstimatedCost)
	if qty < 1 {
		log.Info().Str("symbol", symbol).Float64("premium", contract.EstimatedCost).
			Msg("premium exceeds position budget")
		return 0
	}
	orderID, err := s.d.Executor.BuyToOpen(contract, qty)
	if err != nil {
		log.Error().Err(err).Str("contract", contract.Symbol).Msg("order failed")
		return 0
	}
	s.d.Tracker.RegisterOpen(contract.Symbol)
	log.Info().Str("contract", contract.Symbol).Int("qty", qty).
		Float64("premium", contract.EstimatedCost).Str("order_id", orderID).Msg("position opened")

	s.d.Summary.RecordTrade(notifier.TradeEvent{
		Symbol: contract.Symbol,
		Side:   "buy",
		Qty:    qty,
		Price:  contract.EstimatedCost,
		Reason: fmt.Sprintf("%s entry", signal.Direction),
	})
	if err := s.d.Recorder.RecordTrade(&recorder.TradeRecord{
		Symbol:     contract.Symbol,
		Underlying: contract.Underlying,
		Side:       "buy",
		Qty:        qty,
		Price:      contract.EstimatedCost,
		Reason:     fmt.Sprintf("%s entry", signal.Direction),
		OrderID:    orderID,
	}); err != nil {
		log.Error().Err(err).Msg("record trade")
	}
	return contract.EstimatedCost * float64(qty) * 100
}

func (s *Scheduler) runTrack() {
	if !s.isMarketDay() {
		return
	}
	actions, err := s.d.Tracker.Track()
	if err != nil {
		log.Error().Err(err).Msg("position tracking failed")
		return
	}
	s.recordExits(actions)
}

func (s *Scheduler) runFridayClose() {
	if !s.isMarketDay() {
		return
	}
	log.Info().Msg("running weekend flatten")
	actions, err := s.d.Tracker.CloseAll("friday_close")
	if err != nil {
		log.Error().Err(err).Msg("weekend flatten failed")
		return
	}
	s.recordExits(actions)
}

func (s *Scheduler) recordExits(actions []trading.Action) {
	for _, a := range actions {
		s.d.Summary.RecordTrade(notifier.TradeEvent{
			Symbol: a.Symbol,
			Side:   "sell",
			Qty:    int(a.Qty),
			Price:  a.Price,
			Reason: a.Reason,
			PnL:    a.UnrealizedPL,
		})
		if err := s.d.Recorder.RecordTrade(&recorder.TradeRecord{
			Symbol: a.Symbol,
			Side:   "sell",
			Qty:    int(a.Qty),
			Price:  a.Price,
			Reason: a.Reason,
			PnL:    a.UnrealizedPL,
		}); err != nil {
			log.Error().Err(err).Msg("record trade")
		}
	}
}

func (s *Scheduler) runSummary() {
	if !s.isMarketDay() {
		return
	}
	account, err := s.d.Fetcher.Account()
	if err != nil {
		log.Error().Err(err).Msg("fetch account for summary")
		account = nil
	}
	summary := s.d.Summary.Build(account)
	body := notifier.FormatDailySummary(summary)
	subject := fmt.Sprintf("Trading summary %s", summary.GeneratedAt.In(s.d.Location).Format("2006-01-02"))
	if err := s.d.Notifier.Send(subject, body); err != nil {
		log.Error().Err(err).Str("notifier", s.d.Notifier.Name()).Msg("send summary")
	}

	rec := &recorder.SummaryRecord{
		UnrealizedPL: summary.UnrealizedPL,
		TradeCount:   len(summary.Trades),
		SignalCount:  len(summary.Signals),
	}
	if account != nil {
		rec.PortfolioValue = account.PortfolioValue
		rec.BuyingPower = account.BuyingPower
		rec.Cash = account.Cash
		rec.OpenPositions = len(account.Positions)
	}
	if err := s.d.Recorder.RecordSummary(rec); err != nil {
		log.Error().Err(err).Msg("record summary")
	}
	s.d.Summary.Reset()
}

func (s *Scheduler) recordSignal(sig model.Signal, approved bool, reasoning string) {
	if err := s.d.Recorder.RecordSignal(&recorder.SignalRecord{
		Symbol:    sig.Symbol,
		Direction: sig.Direction,
		Score:     sig.Score,
		Reasons:   sig.Reasons,
		Approved:  approved,
		Reasoning: reasoning,
	}); err != nil {
		log.Error().Err(err).Msg("record signal")
	}
}
