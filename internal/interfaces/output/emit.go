package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sawpanic/venuerank/internal/application/selector"
)

// Emitter writes cycle results to machine-readable artifacts so replays
// can be diffed and fed into downstream tooling.
type Emitter struct{}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// EmitResultJSON writes the full cycle result, exclusions included.
func (e *Emitter) EmitResultJSON(filePath string, res *selector.Result) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// EmitCandidatesCSV writes one row per ranked candidate.
func (e *Emitter) EmitCandidatesCSV(filePath string, res *selector.Result) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"rank", "venue", "composite", "profit_potential_pct",
		"volatility_pct", "trend_pct", "spread_pct", "risk_score", "passes_gate",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, c := range res.Candidates {
		row := []string{
			strconv.Itoa(i + 1),
			c.VenueID,
			strconv.FormatFloat(c.Score.Composite, 'f', 4, 64),
			strconv.FormatFloat(c.Score.ProfitPotentialPct, 'f', 2, 64),
			strconv.FormatFloat(c.Risk.VolatilityPct, 'f', 4, 64),
			strconv.FormatFloat(c.Risk.TrendPct, 'f', 4, 64),
			strconv.FormatFloat(c.Liquidity.SpreadPct, 'f', 4, 64),
			strconv.FormatFloat(c.Risk.RiskScore, 'f', 4, 64),
			strconv.FormatBool(c.PassesSafetyGate),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}
