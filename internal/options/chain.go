package options

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	md "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog/log"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

// maxContractsPerChain caps how many contracts we pull per underlying.
const maxContractsPerChain = 500

// ChainFetcher provides option contract candidates for an underlying symbol.
type ChainFetcher interface {
	// Candidates returns tradable contracts of the given type expiring
	// between dteMin and dteMax days out, with quotes, open interest,
	// volume, and greeks populated where available.
	Candidates(underlying string, typ model.OptionType, dteMin, dteMax int) ([]model.ContractCandidate, error)
	// HasContracts reports whether the underlying has any active listed
	// options at all.
	HasContracts(underlying string) (bool, error)
}

// AlpacaChainFetcher implements ChainFetcher by joining three Alpaca
// endpoints: the contracts list for open interest, the snapshot chain for
// quotes and greeks, and daily option bars for volume.
type AlpacaChainFetcher struct {
	trading *alpaca.Client
	data    *md.Client
	feed    md.OptionFeed
}

// NewAlpacaChainFetcher creates a chain fetcher from configured clients.
func NewAlpacaChainFetcher(trading *alpaca.Client, data *md.Client, feed md.OptionFeed) *AlpacaChainFetcher {
	if feed == "" {
		feed = md.Indicative
	}
	return &AlpacaChainFetcher{trading: trading, data: data, feed: feed}
}

func (f *AlpacaChainFetcher) Candidates(underlying string, typ model.OptionType, dteMin, dteMax int) ([]model.ContractCandidate, error) {
	today := civil.DateOf(time.Now())
	gte := today.AddDays(dteMin)
	lte := today.AddDays(dteMax)

	contracts, err := f.trading.GetOptionContracts(alpaca.GetOptionContractsRequest{
		UnderlyingSymbols: underlying,
		Status:            alpaca.OptionStatusActive,
		ExpirationDateGTE: gte,
		ExpirationDateLTE: lte,
		Type:              alpacaOptionType(typ),
		TotalLimit:        maxContractsPerChain,
	})
	if err != nil {
		return nil, fmt.Errorf("get option contracts %s: %w", underlying, err)
	}
	if len(contracts) == 0 {
		return nil, nil
	}

	chain, err := f.data.GetOptionChain(underlying, md.GetOptionChainRequest{
		Feed:              f.feed,
		Type:              md.OptionType(typ),
		ExpirationDateGte: gte,
		ExpirationDateLte: lte,
	})
	if err != nil {
		return nil, fmt.Errorf("get option chain %s: %w", underlying, err)
	}

	candidates := make([]model.ContractCandidate, 0, len(contracts))
	symbols := make([]string, 0, len(contracts))
	for _, c := range contracts {
		if !c.Tradable {
			continue
		}
		snap, ok := chain[c.Symbol]
		if !ok || snap.LatestQuote == nil {
			continue
		}
		cand := model.ContractCandidate{
			Symbol:     c.Symbol,
			Underlying: c.UnderlyingSymbol,
			Type:       typ,
			Strike:     c.StrikePrice.InexactFloat64(),
			Expiration: c.ExpirationDate.In(time.UTC),
			Bid:        snap.LatestQuote.BidPrice,
			Ask:        snap.LatestQuote.AskPrice,
		}
		if c.OpenInterest != nil {
			cand.OpenInterest = c.OpenInterest.IntPart()
		}
		if snap.Greeks != nil {
			cand.Greeks = &model.Greeks{
				Delta: snap.Greeks.Delta,
				Gamma: snap.Greeks.Gamma,
				Theta: snap.Greeks.Theta,
				Vega:  snap.Greeks.Vega,
				IV:    snap.ImpliedVolatility,
			}
		}
		candidates = append(candidates, cand)
		symbols = append(symbols, c.Symbol)
	}

	f.fillVolumes(candidates, symbols)
	return candidates, nil
}

// fillVolumes attaches the latest daily bar volume per contract. Volume only
// affects ranking, so a failed lookup is logged and left at zero.
func (f *AlpacaChainFetcher) fillVolumes(candidates []model.ContractCandidate, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	bars, err := f.data.GetMultiOptionBars(symbols, md.GetOptionBarsRequest{
		TimeFrame: md.OneDay,
		Start:     time.Now().AddDate(0, 0, -5),
	})
	if err != nil {
		log.Warn().Err(err).Msg("option volume lookup failed, ranking on open interest only")
		return
	}
	for i := range candidates {
		if b := bars[candidates[i].Symbol]; len(b) > 0 {
			candidates[i].Volume = int64(b[len(b)-1].Volume)
		}
	}
}

func (f *AlpacaChainFetcher) HasContracts(underlying string) (bool, error) {
	contracts, err := f.trading.GetOptionContracts(alpaca.GetOptionContractsRequest{
		UnderlyingSymbols: underlying,
		Status:            alpaca.OptionStatusActive,
		TotalLimit:        1,
		PageLimit:         1,
	})
	if err != nil {
		return false, fmt.Errorf("get option contracts %s: %w", underlying, err)
	}
	return len(contracts) > 0, nil
}

func alpacaOptionType(typ model.OptionType) alpaca.OptionType {
	if typ == model.Put {
		return alpaca.OptionTypePut
	}
	return alpaca.OptionTypeCall
}
