package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/marketdata"
	"github.com/rmotgi1227/AlpacaTrading-Bot/internal/model"
)

const systemPrompt = `You are a conservative options trade reviewer for a momentum-based swing trading bot.

You will receive a proposed trade signal along with:
- Technical signal details (type, score, reasons)
- Recent price action (daily and 4-hour OHLCV bars)
- Current portfolio state (value, buying power, open positions)
- Recent news headlines

Your job: decide whether to APPROVE or REJECT the trade.

REJECT if:
- News contradicts the signal direction (e.g., bearish signal on strong earnings beat)
- The signal is weak or conflicting (low score, mixed reasons)
- Portfolio is overexposed to this sector or correlated positions
- Price action shows the move may already be exhausted

APPROVE if the technical signal aligns with price action and news context.

Respond with ONLY valid JSON, no other text:
{"decision": "APPROVE" or "REJECT", "reasoning": "one sentence explanation"}`

const maxHeadlines = 5

// Decision is the reviewer's verdict on a proposed trade.
type Decision struct {
	Approved  bool
	Reasoning string
}

// Filter asks a language model to sanity-check entry signals against price
// action, portfolio state, and news. Every failure mode approves the trade,
// so a broken reviewer never stalls the bot.
type Filter struct {
	completer Completer
	fetcher   marketdata.Fetcher
	enabled   bool
	timeout   time.Duration
}

// NewFilter wires the reviewer. A disabled filter approves everything.
func NewFilter(completer Completer, fetcher marketdata.Fetcher, enabled bool, timeout time.Duration) *Filter {
	return &Filter{completer: completer, fetcher: fetcher, enabled: enabled, timeout: timeout}
}

// Review asks the model whether to take the trade.
func (f *Filter) Review(sig model.Signal, daily, fourHour []model.Bar, account *model.AccountSnapshot) Decision {
	if !f.enabled || f.completer == nil {
		return Decision{Approved: true, Reasoning: "LLM filter disabled"}
	}

	headlines, err := f.fetcher.Headlines(sig.Symbol, maxHeadlines)
	if err != nil {
		log.Debug().Err(err).Str("symbol", sig.Symbol).Msg("headline fetch failed")
		headlines = nil
	}
	prompt := buildPrompt(sig, daily, fourHour, account, headlines)

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	text, err := f.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("LLM filter failed, approving")
		return Decision{Approved: true, Reasoning: fmt.Sprintf("LLM filter error, fail-open: %v", err)}
	}
	return parseDecision(text)
}

func buildPrompt(sig model.Signal, daily, fourHour []model.Bar, account *model.AccountSnapshot, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SYMBOL: %s\n", sig.Symbol)
	fmt.Fprintf(&b, "SIGNAL: %s (score=%d)\n", sig.Direction, sig.Score)
	fmt.Fprintf(&b, "REASONS: %s\n\n", strings.Join(sig.Reasons, ", "))
	writeBars(&b, "Daily bars", daily)
	b.WriteString("\n")
	writeBars(&b, "4-hour bars", fourHour)
	b.WriteString("\nPORTFOLIO:\n")
	if account != nil {
		fmt.Fprintf(&b, "  Value: $%.2f\n", account.PortfolioValue)
		fmt.Fprintf(&b, "  Buying power: $%.2f\n", account.BuyingPower)
		fmt.Fprintf(&b, "  Open positions: %d\n", len(account.Positions))
		for i, pos := range account.Positions {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "    %s P&L=%.2f\n", pos.Symbol, pos.UnrealizedPL)
		}
	} else {
		b.WriteString("  unavailable\n")
	}
	b.WriteString("\n")
	if len(headlines) > 0 {
		b.WriteString("RECENT NEWS:\n")
		for _, h := range headlines {
			fmt.Fprintf(&b, "  - %s\n", h)
		}
	} else {
		b.WriteString("RECENT NEWS: none available\n")
	}
	return b.String()
}

func writeBars(b *strings.Builder, label string, bars []model.Bar) {
	if len(bars) == 0 {
		fmt.Fprintf(b, "%s: no data\n", label)
		return
	}
	if len(bars) > 5 {
		bars = bars[len(bars)-5:]
	}
	fmt.Fprintf(b, "%s (last %d bars):\n", label, len(bars))
	for _, bar := range bars {
		fmt.Fprintf(b, "  O=%.2f H=%.2f L=%.2f C=%.2f V=%.0f\n",
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}
}

var (
	decisionRe  = regexp.MustCompile(`(?i)"decision"\s*:\s*"(APPROVE|REJECT)"`)
	reasoningRe = regexp.MustCompile(`"reasoning"\s*:\s*"([^"]*)"`)
)

// parseDecision reads the model's JSON verdict, falling back to a regex scan
// when the response has extra text around it, and approving when neither
// works.
func parseDecision(text string) Decision {
	var raw struct {
		Decision  string `json:"decision"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err == nil {
		switch strings.ToUpper(raw.Decision) {
		case "APPROVE":
			return Decision{Approved: true, Reasoning: raw.Reasoning}
		case "REJECT":
			return Decision{Approved: false, Reasoning: raw.Reasoning}
		}
	}
	if m := decisionRe.FindStringSubmatch(text); m != nil {
		reasoning := ""
		if r := reasoningRe.FindStringSubmatch(text); r != nil {
			reasoning = r[1]
		}
		return Decision{Approved: strings.EqualFold(m[1], "APPROVE"), Reasoning: reasoning}
	}
	log.Warn().Str("response", truncate(text, 200)).Msg("unparseable LLM response, approving")
	return Decision{Approved: true, Reasoning: "LLM response unparseable, fail-open"}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
