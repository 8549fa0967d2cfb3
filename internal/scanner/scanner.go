package scanner

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/marketdata"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/options"
)

// Scanner finds pre-market movers worth adding to the day's watchlist.
type Scanner struct {
	fetcher  marketdata.Fetcher
	chain    options.ChainFetcher
	universe []string
	topN     int
}

// New creates a scanner over the given symbol universe.
func New(fetcher marketdata.Fetcher, chain options.ChainFetcher, universe []string, topN int) *Scanner {
	return &Scanner{fetcher: fetcher, chain: chain, universe: universe, topN: topN}
}

// TopMovers returns up to topN symbols from the universe ranked by absolute
// percent move from the previous close, keeping only symbols with listed
// options. When snapshots come back empty the universe order itself is the
// fallback ranking.
func (s *Scanner) TopMovers() []string {
	ranked := s.rankedMovers()
	out := make([]string, 0, s.topN)
	for _, sym := range ranked {
		if s.hasOptions(sym) {
			out = append(out, sym)
			if len(out) >= s.topN {
				return out
			}
		}
	}
	// Backfill from the universe when too few movers qualified.
	for _, sym := range s.universe {
		if contains(out, sym) {
			continue
		}
		if s.hasOptions(sym) {
			out = append(out, sym)
			if len(out) >= s.topN {
				break
			}
		}
	}
	return out
}

// BuildWatchlist merges the core watchlist with today's movers, core symbols
// first, deduplicated. The movers are returned separately so callers can
// report them.
func (s *Scanner) BuildWatchlist(core []string) (watchlist, movers []string) {
	movers = s.TopMovers()
	out := make([]string, 0, len(core)+len(movers))
	for _, sym := range core {
		if !contains(out, sym) {
			out = append(out, sym)
		}
	}
	for _, sym := range movers {
		if !contains(out, sym) {
			out = append(out, sym)
		}
	}
	log.Info().Strs("watchlist", out).Strs("movers", movers).Msg("daily watchlist built")
	return out, movers
}

// rankedMovers sorts the universe by absolute percent change descending,
// considering twice topN so the options filter has room to drop some.
func (s *Scanner) rankedMovers() []string {
	snaps, err := s.fetcher.Snapshots(s.universe)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot scan failed, falling back to universe order")
		return nil
	}
	type mover struct {
		symbol string
		absPct float64
	}
	movers := make([]mover, 0, len(snaps))
	for sym, snap := range snaps {
		movers = append(movers, mover{symbol: sym, absPct: math.Abs(snap.ChangePct())})
	}
	sort.Slice(movers, func(i, j int) bool {
		if movers[i].absPct != movers[j].absPct {
			return movers[i].absPct > movers[j].absPct
		}
		return movers[i].symbol < movers[j].symbol
	})
	limit := s.topN * 2
	if limit > len(movers) {
		limit = len(movers)
	}
	out := make([]string, 0, limit)
	for _, m := range movers[:limit] {
		out = append(out, m.symbol)
	}
	return out
}

func (s *Scanner) hasOptions(symbol string) bool {
	ok, err := s.chain.HasContracts(symbol)
	if err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("options listing check failed")
		return false
	}
	return ok
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
