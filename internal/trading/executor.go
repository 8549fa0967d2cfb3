package trading

import (
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// RetryPolicy controls how order submissions are retried on failure.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy retries three times with a short pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Executor places and closes option orders.
type Executor interface {
	// BuyToOpen submits a day limit order for qty contracts at the
	// contract's estimated cost and returns the broker order ID.
	BuyToOpen(contract *model.SelectedContract, qty int) (string, error)
	// SellToClose liquidates the entire position for the given symbol.
	SellToClose(symbol string) error
	// CancelOpenOrders cancels all outstanding open orders and returns
	// the number cancelled.
	CancelOpenOrders() (int, error)
}

// AlpacaExecutor implements Executor on the Alpaca trading API.
type AlpacaExecutor struct {
	client *alpaca.Client
	retry  RetryPolicy
	sleep  func(time.Duration)
}

// NewAlpacaExecutor creates an executor with the given retry policy.
func NewAlpacaExecutor(client *alpaca.Client, retry RetryPolicy) *AlpacaExecutor {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &AlpacaExecutor{client: client, retry: retry, sleep: time.Sleep}
}

func (e *AlpacaExecutor) BuyToOpen(contract *model.SelectedContract, qty int) (string, error) {
	if contract == nil || contract.Symbol == "" {
		return "", errors.New("no contract symbol")
	}
	if qty < 1 {
		return "", fmt.Errorf("invalid quantity %d", qty)
	}
	price := contract.EstimatedCost
	if price <= 0 {
		return "", fmt.Errorf("no usable price for %s", contract.Symbol)
	}
	qtyDec := decimal.NewFromInt(int64(qty))
	limit := decimal.NewFromFloat(price).Round(2)

	var lastErr error
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		order, err := e.client.PlaceOrder(alpaca.PlaceOrderRequest{
			Symbol:         contract.Symbol,
			Qty:            &qtyDec,
			Side:           alpaca.Buy,
			Type:           alpaca.Limit,
			TimeInForce:    alpaca.Day,
			LimitPrice:     &limit,
			PositionIntent: alpaca.BuyToOpen,
		})
		if err == nil {
			log.Info().
				Str("symbol", contract.Symbol).
				Int("qty", qty).
				Str("limit", limit.String()).
				Str("order_id", order.ID).
				Msg("order submitted")
			return order.ID, nil
		}
		lastErr = err
		log.Warn().Err(err).
			Str("symbol", contract.Symbol).
			Int("attempt", attempt).
			Msg("buy order failed")
		if attempt < e.retry.MaxAttempts {
			e.sleep(e.retry.Delay)
		}
	}
	return "", fmt.Errorf("place order %s: %w", contract.Symbol, lastErr)
}

func (e *AlpacaExecutor) SellToClose(symbol string) error {
	if symbol == "" {
		return errors.New("no symbol")
	}
	var lastErr error
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		_, err := e.client.ClosePosition(symbol, alpaca.ClosePositionRequest{})
		if err == nil {
			log.Info().Str("symbol", symbol).Msg("position closed")
			return nil
		}
		lastErr = err
		log.Warn().Err(err).
			Str("symbol", symbol).
			Int("attempt", attempt).
			Msg("close position failed")
		if attempt < e.retry.MaxAttempts {
			e.sleep(e.retry.Delay)
		}
	}
	return fmt.Errorf("close position %s: %w", symbol, lastErr)
}

// CancelOpenOrders lists open orders and cancels each one. Individual cancel
// failures are logged and skipped; only a listing failure is an error.
func (e *AlpacaExecutor) CancelOpenOrders() (int, error) {
	orders, err := e.client.GetOrders(alpaca.GetOrdersRequest{Status: "open", Limit: 500})
	if err != nil {
		return 0, fmt.Errorf("list open orders: %w", err)
	}
	cancelled := 0
	for _, order := range orders {
		if err := e.client.CancelOrder(order.ID); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID).Msg("cancel order failed")
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		log.Info().Int("cancelled", cancelled).Msg("open orders cancelled")
	}
	return cancelled, nil
}
