package options

import (
	"testing"
	"time"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

type stubChain struct {
	candidates []model.ContractCandidate
	err        error
	calls      int
}

func (s *stubChain) Candidates(string, model.OptionType, int, int) ([]model.ContractCandidate, error) {
	s.calls++
	return s.candidates, s.err
}

func (s *stubChain) HasContracts(string) (bool, error) {
	return len(s.candidates) > 0, s.err
}

func candidate(symbol string, oi, vol int64, bid, ask float64, delta float64) model.ContractCandidate {
	c := model.ContractCandidate{
		Symbol:       symbol,
		Underlying:   "TSLA",
		Type:         model.Call,
		Strike:       300,
		Expiration:   time.Now().AddDate(0, 1, 0),
		Bid:          bid,
		Ask:          ask,
		OpenInterest: oi,
		Volume:       vol,
	}
	if delta != 0 {
		c.Greeks = &model.Greeks{Delta: delta}
	}
	return c
}

func TestSelect_NoTradeSkipsChain(t *testing.T) {
	chain := &stubChain{}
	sel := NewSelector(chain, DefaultCriteria())
	got, err := sel.Select("TSLA", model.NoTrade)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil contract, got %+v", got)
	}
	if chain.calls != 0 {
		t.Error("expected no chain lookup for NO_TRADE")
	}
}

func TestSelect_RanksByLiquidityThenSpread(t *testing.T) {
	chain := &stubChain{candidates: []model.ContractCandidate{
		candidate("TSLA260116C00290000", 500, 100, 5.00, 5.50, 0.40),
		candidate("TSLA260116C00300000", 500, 300, 4.00, 4.40, 0.35), // most liquid
		candidate("TSLA260116C00310000", 500, 100, 3.00, 3.10, 0.30), // tighter spread, less liquid
	}}
	sel := NewSelector(chain, DefaultCriteria())
	got, err := sel.Select("TSLA", model.BuyCall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Symbol != "TSLA260116C00300000" {
		t.Fatalf("expected most liquid contract, got %+v", got)
	}
	if got.EstimatedCost != 4.40 {
		t.Errorf("expected estimated cost from ask, got %.2f", got.EstimatedCost)
	}
}

func TestSelect_SpreadBreaksLiquidityTie(t *testing.T) {
	chain := &stubChain{candidates: []model.ContractCandidate{
		candidate("TSLA260116C00290000", 500, 100, 4.00, 5.00, 0.40),
		candidate("TSLA260116C00300000", 500, 100, 4.90, 5.00, 0.40),
	}}
	sel := NewSelector(chain, DefaultCriteria())
	got, err := sel.Select("TSLA", model.BuyCall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Symbol != "TSLA260116C00300000" {
		t.Fatalf("expected tightest spread on liquidity tie, got %+v", got)
	}
}

func TestSelect_Filters(t *testing.T) {
	chain := &stubChain{candidates: []model.ContractCandidate{
		candidate("TSLA260116C00280000", 50, 1000, 5.00, 5.10, 0.40),  // OI too low
		candidate("TSLA260116C00290000", 500, 1000, 5.00, 5.10, 0.90), // delta too high
		candidate("TSLA260116C00300000", 500, 1000, 5.00, 5.10, 0.10), // delta too low
	}}
	sel := NewSelector(chain, DefaultCriteria())
	got, err := sel.Select("TSLA", model.BuyCall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected all candidates filtered out, got %+v", got)
	}
}

func TestSelect_MissingGreeksPassDeltaFilter(t *testing.T) {
	chain := &stubChain{candidates: []model.ContractCandidate{
		candidate("TSLA260116C00300000", 500, 100, 5.00, 5.10, 0),
	}}
	sel := NewSelector(chain, DefaultCriteria())
	got, err := sel.Select("TSLA", model.BuyCall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected contract without greeks to pass")
	}
}

func TestSelect_PutDeltaUsesAbsoluteValue(t *testing.T) {
	chain := &stubChain{candidates: []model.ContractCandidate{
		candidate("TSLA260116P00300000", 500, 100, 5.00, 5.10, -0.40),
	}}
	sel := NewSelector(chain, DefaultCriteria())
	got, err := sel.Select("TSLA", model.BuyPut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected negative-delta put inside the band to pass")
	}
}

func TestSelect_EstimatedCostFallsBackToBid(t *testing.T) {
	chain := &stubChain{candidates: []model.ContractCandidate{
		candidate("TSLA260116C00300000", 500, 100, 4.00, 0, 0.40),
	}}
	sel := NewSelector(chain, DefaultCriteria())
	got, err := sel.Select("TSLA", model.BuyCall)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.EstimatedCost != 4.00 {
		t.Fatalf("expected bid fallback, got %+v", got)
	}
}

func TestSpreadScore(t *testing.T) {
	if s := spreadScore(model.ContractCandidate{Bid: 4.0, Ask: 0}); s != 1.0 {
		t.Errorf("expected worst score on missing ask, got %.2f", s)
	}
	if s := spreadScore(model.ContractCandidate{Bid: 9.0, Ask: 11.0}); s != 0.2 {
		t.Errorf("expected spread 0.2, got %.2f", s)
	}
}
