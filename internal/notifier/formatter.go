package notifier

import (
	"fmt"
	"strings"
)

// FormatDailySummary renders the summary as the plain text email body.
func FormatDailySummary(s Summary) string {
	var b strings.Builder

	b.WriteString("Swing Options Bot - Daily Summary\n")
	b.WriteString("Generated: " + s.GeneratedAt.Format("2006-01-02 15:04:05 MST") + "\n\n")

	b.WriteString("--- Portfolio ---\n")
	if s.Account != nil {
		fmt.Fprintf(&b, "Portfolio value: $%.2f\n", s.Account.PortfolioValue)
		fmt.Fprintf(&b, "Buying power:   $%.2f\n", s.Account.BuyingPower)
		fmt.Fprintf(&b, "Unrealized P&L: $%.2f\n", s.UnrealizedPL)
	} else {
		b.WriteString("unavailable\n")
	}

	b.WriteString("\n--- Open Positions ---\n")
	if s.Account != nil {
		for _, p := range s.Account.Positions {
			fmt.Fprintf(&b, "  %s  qty=%.0f  mv=$%.2f  P&L=$%.2f\n",
				p.Symbol, p.Qty, p.MarketValue, p.UnrealizedPL)
		}
		if len(s.Account.Positions) == 0 {
			b.WriteString("  none\n")
		}
	}

	b.WriteString("\n--- Trades Today ---\n")
	for _, t := range s.Trades {
		line := fmt.Sprintf("  %s  %s %s qty=%d", t.At.Format("15:04"), t.Side, t.Symbol, t.Qty)
		if t.Price > 0 {
			line += fmt.Sprintf(" @ $%.2f", t.Price)
		}
		if t.Reason != "" {
			line += " (" + t.Reason + ")"
		}
		if t.PnL != 0 {
			line += fmt.Sprintf(" P&L=$%.2f", t.PnL)
		}
		b.WriteString(line + "\n")
	}
	if len(s.Trades) == 0 {
		b.WriteString("  none\n")
	}

	b.WriteString("\n--- Signals Today ---\n")
	for _, sig := range s.Signals {
		fmt.Fprintf(&b, "  %s  %s  score=%d\n", sig.Symbol, sig.Direction, sig.Score)
	}
	if len(s.Signals) == 0 {
		b.WriteString("  none\n")
	}

	b.WriteString("\n--- Scanner Picks (Pre-market) ---\n")
	if len(s.ScannerPicks) > 0 {
		b.WriteString("  " + strings.Join(s.ScannerPicks, ", ") + "\n")
	} else {
		b.WriteString("  none\n")
	}

	return b.String()
}
