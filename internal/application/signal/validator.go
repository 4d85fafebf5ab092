package signal

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/venuerank/internal/application/selector"
)

// Prediction is the black-box forecast verdict for one symbol.
type Prediction struct {
	Valid         bool    `json:"valid"`
	ConfidencePct float64 `json:"confidence_pct"`
	Signal        string  `json:"signal"` // "buy", "sell" or "hold"
}

// Provider produces predictions from a feature vector. The engine never
// looks inside the model; it only consumes the verdict.
type Provider interface {
	Validate(ctx context.Context, features map[string]float64) (Prediction, error)
}

// Decision is the trade-validation outcome handed to the order flow.
type Decision struct {
	Approved      bool     `json:"approved"`
	VenueID       string   `json:"venue_id,omitempty"`
	ConfidencePct float64  `json:"confidence_pct"`
	Signal        string   `json:"signal,omitempty"`
	Reasons       []string `json:"reasons,omitempty"`
}

// defaultMinConfidencePct is the model confidence required before an
// entry is approved.
const defaultMinConfidencePct = 98.0

// TradeValidator combines a selection result with a prediction verdict to
// approve or reject a proposed trade. It places no orders.
type TradeValidator struct {
	provider      Provider
	minConfidence float64
}

// NewTradeValidator builds a validator around the given provider. A
// non-positive minConfidencePct falls back to the 98% default.
func NewTradeValidator(provider Provider, minConfidencePct float64) *TradeValidator {
	if minConfidencePct <= 0 {
		minConfidencePct = defaultMinConfidencePct
	}
	return &TradeValidator{provider: provider, minConfidence: minConfidencePct}
}

// Approve validates a proposed trade side against the cycle result and the
// prediction provider. Rejections carry every failed check, not just the
// first one.
func (v *TradeValidator) Approve(ctx context.Context, res *selector.Result, side string) (Decision, error) {
	decision := Decision{}

	chosen := res.Chosen()
	if chosen == nil {
		decision.Reasons = append(decision.Reasons, "no venue selected this cycle")
		return decision, nil
	}
	decision.VenueID = chosen.VenueID

	pred, err := v.provider.Validate(ctx, featuresFor(chosen))
	if err != nil {
		return decision, fmt.Errorf("prediction provider: %w", err)
	}
	decision.ConfidencePct = pred.ConfidencePct
	decision.Signal = pred.Signal

	if !pred.Valid {
		decision.Reasons = append(decision.Reasons, "prediction marked invalid")
	}
	if pred.ConfidencePct < v.minConfidence {
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("confidence %.1f%% below required %.1f%%", pred.ConfidencePct, v.minConfidence))
	}
	if pred.Signal != side {
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("prediction %q does not support %q", pred.Signal, side))
	}

	decision.Approved = len(decision.Reasons) == 0
	log.Debug().Str("venue", decision.VenueID).Str("side", side).
		Bool("approved", decision.Approved).Float64("confidence", pred.ConfidencePct).
		Msg("trade validation")
	return decision, nil
}

// featuresFor flattens the winning candidate into the feature vector the
// provider expects.
func featuresFor(c *selector.Candidate) map[string]float64 {
	return map[string]float64{
		"volatility_pct": c.Risk.VolatilityPct,
		"trend_pct":      c.Risk.TrendPct,
		"risk_score":     c.Risk.RiskScore,
		"spread_pct":     c.Liquidity.SpreadPct,
		"composite":      c.Score.Composite,
	}
}
