package trading

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/marketdata"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/risk"
)

// Action describes an exit the tracker performed.
type Action struct {
	Symbol       string
	Reason       string
	Qty          float64
	Price        float64
	UnrealizedPL float64
}

// Tracker monitors open positions and closes any that trip an exit rule.
type Tracker struct {
	fetcher marketdata.Fetcher
	risk    *risk.Engine
	exec    Executor
	store   *OpenDateStore
	loc     *time.Location
	now     func() time.Time
}

// NewTracker wires a tracker over live account state.
func NewTracker(fetcher marketdata.Fetcher, riskEngine *risk.Engine, exec Executor, store *OpenDateStore, loc *time.Location) *Tracker {
	return &Tracker{
		fetcher: fetcher,
		risk:    riskEngine,
		exec:    exec,
		store:   store,
		loc:     loc,
		now:     time.Now,
	}
}

// Track runs the exit checks over every open position and returns the exits
// it performed. Positions opened today are skipped entirely so same-day
// round trips never trigger pattern day trader flags. A position whose close
// fails stays tracked and is retried on the next cycle.
func (t *Tracker) Track() ([]Action, error) {
	account, err := t.fetcher.Account()
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	var actions []Action
	today := t.now().In(t.loc)
	for _, pos := range account.Positions {
		if pos.Symbol == "" {
			continue
		}
		if opened, ok := t.store.OpenDate(pos.Symbol); ok {
			if sameDay(opened.In(t.loc), today) {
				log.Debug().Str("symbol", pos.Symbol).Msg("opened today, skipping exit checks")
				continue
			}
			pos.OpenedAt = &opened
		}
		exit, reason := t.risk.ShouldExit(pos)
		if !exit {
			continue
		}
		log.Info().Str("symbol", pos.Symbol).Str("reason", reason).Msg("exit triggered")
		if err := t.exec.SellToClose(pos.Symbol); err != nil {
			log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("exit failed, position stays tracked")
			continue
		}
		t.store.Remove(pos.Symbol)
		actions = append(actions, Action{
			Symbol:       pos.Symbol,
			Reason:       reason,
			Qty:          pos.Qty,
			Price:        pos.CurrentPrice,
			UnrealizedPL: pos.UnrealizedPL,
		})
	}
	return actions, nil
}

// CloseAll cancels outstanding open orders, then liquidates every open
// position with the given reason, regardless of exit rules. Used for the
// weekend flattening run.
func (t *Tracker) CloseAll(reason string) ([]Action, error) {
	if _, err := t.exec.CancelOpenOrders(); err != nil {
		log.Warn().Err(err).Msg("cancel open orders failed")
	}
	account, err := t.fetcher.Account()
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	var actions []Action
	for _, pos := range account.Positions {
		if pos.Symbol == "" {
			continue
		}
		if err := t.exec.SellToClose(pos.Symbol); err != nil {
			log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("close failed")
			continue
		}
		t.store.Remove(pos.Symbol)
		actions = append(actions, Action{
			Symbol:       pos.Symbol,
			Reason:       reason,
			Qty:          pos.Qty,
			Price:        pos.CurrentPrice,
			UnrealizedPL: pos.UnrealizedPL,
		})
	}
	return actions, nil
}

// RegisterOpen records a freshly opened position for hold-time tracking.
func (t *Tracker) RegisterOpen(symbol string) {
	t.store.Register(symbol, t.now().UTC())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
