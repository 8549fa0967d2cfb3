package options

import (
	"fmt"
	"math"
	"sort"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// Criteria narrows the chain to viable contracts before ranking.
type Criteria struct {
	DTEMin          int
	DTEMax          int
	DeltaMin        float64
	DeltaMax        float64
	MinOpenInterest int64
}

// DefaultCriteria returns the standard contract filters: two weeks to two
// months out, moderate delta, and a minimum open interest floor.
func DefaultCriteria() Criteria {
	return Criteria{
		DTEMin:          14,
		DTEMax:          60,
		DeltaMin:        0.25,
		DeltaMax:        0.60,
		MinOpenInterest: 100,
	}
}

// Selector picks the best contract for an entry signal: filter by expiry
// window, delta band, and open interest, then rank by liquidity and spread.
type Selector struct {
	chain ChainFetcher
	Criteria
}

// NewSelector returns a Selector over the given chain source.
func NewSelector(chain ChainFetcher, c Criteria) *Selector {
	return &Selector{chain: chain, Criteria: c}
}

// Select returns the best contract for the signal direction, or nil when no
// contract passes the filters. NO_TRADE signals yield nil without a chain
// lookup.
func (s *Selector) Select(underlying string, direction model.Direction) (*model.SelectedContract, error) {
	if !direction.Entry() {
		return nil, nil
	}
	typ := model.OptionTypeFor(direction)
	candidates, err := s.chain.Candidates(underlying, typ, s.DTEMin, s.DTEMax)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates %s: %w", underlying, err)
	}
	viable := s.filter(candidates)
	if len(viable) == 0 {
		return nil, nil
	}
	rank(viable)
	best := viable[0]

	estCost := best.Ask
	if estCost <= 0 {
		estCost = best.Bid
	}
	if estCost < 0 {
		estCost = 0
	}
	return &model.SelectedContract{
		Symbol:        best.Symbol,
		Underlying:    best.Underlying,
		Type:          best.Type,
		Strike:        best.Strike,
		Expiration:    best.Expiration,
		EstimatedCost: estCost,
		Bid:           best.Bid,
		Ask:           best.Ask,
		OpenInterest:  best.OpenInterest,
		Greeks:        best.Greeks,
	}, nil
}

// filter drops contracts below the open interest floor and, when greeks are
// available, outside the delta band. Contracts without greeks pass the delta
// check.
func (s *Selector) filter(candidates []model.ContractCandidate) []model.ContractCandidate {
	out := make([]model.ContractCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.OpenInterest < s.MinOpenInterest {
			continue
		}
		if c.Greeks != nil {
			delta := math.Abs(c.Greeks.Delta)
			if delta < s.DeltaMin || delta > s.DeltaMax {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// rank orders candidates by liquidity descending, breaking ties on tighter
// spread.
func rank(candidates []model.ContractCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		li, lj := liquidityScore(candidates[i]), liquidityScore(candidates[j])
		if li != lj {
			return li > lj
		}
		return spreadScore(candidates[i]) < spreadScore(candidates[j])
	})
}

// liquidityScore weights volume double against open interest.
func liquidityScore(c model.ContractCandidate) int64 {
	return c.OpenInterest + 2*c.Volume
}

// spreadScore is the bid-ask spread as a fraction of the midpoint; an
// unusable quote scores worst at 1.
func spreadScore(c model.ContractCandidate) float64 {
	if c.Ask <= 0 {
		return 1.0
	}
	mid := (c.Bid + c.Ask) / 2
	if mid <= 0 {
		return 1.0
	}
	return (c.Ask - c.Bid) / mid
}
