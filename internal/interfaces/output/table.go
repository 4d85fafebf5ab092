package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/sawpanic/venuerank/internal/application/selector"
)

// RenderResult prints a human-readable comparison table for one cycle:
// the ranked survivors first, then the excluded venues with reasons.
func RenderResult(w io.Writer, res *selector.Result) {
	switch res.Outcome {
	case selector.OutcomeSelected:
		fmt.Fprintf(w, "[%s] %s -> %s (confidence %.2f%%, risk %s)\n",
			res.Timestamp.Format("15:04:05"), res.Symbol,
			res.ChosenVenueID, res.ConfidencePct, res.RiskLevel)
	default:
		fmt.Fprintf(w, "[%s] %s -> %s: %s\n",
			res.Timestamp.Format("15:04:05"), res.Symbol, res.Outcome, res.Reason)
	}

	if len(res.Candidates) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("#", "Venue", "Score", "Profit %", "Volatility %", "Trend %", "Spread %", "Risk")

		for i, c := range res.Candidates {
			table.Append(
				fmt.Sprintf("%d", i+1),
				c.VenueID,
				fmt.Sprintf("%.4f", c.Score.Composite),
				fmt.Sprintf("%.2f", c.Score.ProfitPotentialPct),
				fmt.Sprintf("%.2f", c.Risk.VolatilityPct),
				fmt.Sprintf("%+.2f", c.Risk.TrendPct),
				fmt.Sprintf("%.4f", c.Liquidity.SpreadPct),
				fmt.Sprintf("%.3f", c.Risk.RiskScore),
			)
		}
		table.Render()
	}

	for venueID, reason := range res.Exclusions {
		fmt.Fprintf(w, "  excluded %s: %s\n", venueID, reason)
	}
}
