package selector

import (
	"time"

	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/gates"
	"github.com/sawpanic/venuerank/internal/domain/scoring"
)

// Outcome tags the terminal state of one evaluation cycle.
type Outcome string

const (
	// OutcomeSelected means at least one venue passed the safety gate and
	// the top-ranked one was chosen.
	OutcomeSelected Outcome = "selected"
	// OutcomeNoneEligible means every venue was evaluated but none met the
	// zero-loss criteria. An explicit result, not an error.
	OutcomeNoneEligible Outcome = "none_eligible"
	// OutcomeAllFailed means every venue failed to fetch or score.
	OutcomeAllFailed Outcome = "all_failed"
)

// RiskLevel is the coarse banding of a candidate's risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// riskLevelFor bands a [0,1] risk score: low below 0.3, medium below 0.7.
func riskLevelFor(riskScore float64) RiskLevel {
	switch {
	case riskScore < 0.3:
		return RiskLow
	case riskScore < 0.7:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Candidate is one venue's computed metrics and score for a single cycle.
type Candidate struct {
	VenueID          string                    `json:"venue_id"`
	Risk             analysis.RiskMetrics      `json:"risk"`
	Liquidity        analysis.LiquidityMetrics `json:"liquidity"`
	Score            scoring.Score             `json:"score"`
	Gate             gates.Result              `json:"gate"`
	PassesSafetyGate bool                      `json:"passes_safety_gate"`
}

// Result is the full outcome of one evaluation cycle.
type Result struct {
	CycleID   string        `json:"cycle_id"`
	Symbol    string        `json:"symbol"`
	Timestamp time.Time     `json:"timestamp"`
	Elapsed   time.Duration `json:"elapsed"`

	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`

	// ChosenVenueID is empty unless Outcome is OutcomeSelected.
	ChosenVenueID string    `json:"chosen_venue_id,omitempty"`
	ConfidencePct float64   `json:"confidence_pct,omitempty"`
	RiskLevel     RiskLevel `json:"risk_level,omitempty"`

	// Candidates holds the gate-passing venues, ranked best-first.
	Candidates []Candidate `json:"candidates"`

	// Exclusions maps each dropped venue to the reason it fell out of the
	// cycle (fetch failure, analyzer exclusion, or gate failure).
	Exclusions map[string]string `json:"exclusions,omitempty"`
}

// Chosen returns the winning candidate, nil unless one was selected.
func (r *Result) Chosen() *Candidate {
	if r.Outcome != OutcomeSelected || len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}
