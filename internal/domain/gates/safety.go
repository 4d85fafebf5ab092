package gates

import (
	"fmt"
	"math"

	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/venue"
)

// Reason records the verdict of a single safety clause.
type Reason struct {
	Name    string  `json:"name"`
	Passed  bool    `json:"passed"`
	Value   float64 `json:"value"`
	Limit   float64 `json:"limit"`
	Message string  `json:"message"`
}

// Result is the full safety-gate verdict for one candidate. A candidate
// failing any clause is excluded from ranking outright, never merely
// penalized.
type Result struct {
	Passed        bool     `json:"passed"`
	OverallReason string   `json:"overall_reason"`
	Reasons       []Reason `json:"reasons"`
}

// GlobalThresholds are the engine-wide safety limits. The stricter of the
// global and per-venue limit applies for each clause.
type GlobalThresholds struct {
	VolatilityCeilingPct float64 `yaml:"volatility_ceiling_pct"`
	SpreadCeilingPct     float64 `yaml:"spread_ceiling_pct"`
	MinLiquidityQuote    float64 `yaml:"min_liquidity_quote"`
	MaxRiskScore         float64 `yaml:"max_risk_score"`
}

// DefaultGlobalThresholds are the stock zero-loss limits: 2% volatility,
// 0.1% spread, 100k quote liquidity, 0.7 risk score.
func DefaultGlobalThresholds() GlobalThresholds {
	return GlobalThresholds{
		VolatilityCeilingPct: 2.0,
		SpreadCeilingPct:     0.1,
		MinLiquidityQuote:    100_000,
		MaxRiskScore:         0.7,
	}
}

// SafetyGate is the hard admission filter evaluated before ranking.
type SafetyGate struct {
	global GlobalThresholds
}

// NewSafetyGate builds a gate with the given global limits.
func NewSafetyGate(global GlobalThresholds) *SafetyGate {
	return &SafetyGate{global: global}
}

// Check runs every clause and collects per-clause reasons even after the
// first failure, so exclusion logs stay explainable. windowQuoteVolume is
// the traded quote volume over the evaluation window.
func (g *SafetyGate) Check(prof *venue.Profile, risk analysis.RiskMetrics, liq analysis.LiquidityMetrics, windowQuoteVolume float64) Result {
	t := prof.Thresholds

	volCeiling := math.Min(t.VolatilityCeilingPct, g.global.VolatilityCeilingPct)
	spreadCeiling := math.Min(t.SpreadCeilingPct, g.global.SpreadCeilingPct)
	liquidityFloor := math.Max(t.MinLiquidityQuote, g.global.MinLiquidityQuote)
	riskCeiling := math.Min(t.MaxRiskScore, g.global.MaxRiskScore)

	res := Result{Passed: true}
	res.add("volatility", risk.VolatilityPct <= volCeiling, risk.VolatilityPct, volCeiling,
		"volatility %.2f%% vs ceiling %.2f%%")
	res.add("spread", liq.SpreadPct <= spreadCeiling, liq.SpreadPct, spreadCeiling,
		"spread %.4f%% vs ceiling %.4f%%")
	res.add("liquidity", windowQuoteVolume >= liquidityFloor, windowQuoteVolume, liquidityFloor,
		"window volume %.0f vs floor %.0f")
	res.add("risk_score", risk.RiskScore <= riskCeiling, risk.RiskScore, riskCeiling,
		"risk score %.3f vs ceiling %.3f")

	if res.Passed {
		res.OverallReason = "all safety clauses passed"
	}
	return res
}

func (r *Result) add(name string, passed bool, value, limit float64, format string) {
	reason := Reason{
		Name:    name,
		Passed:  passed,
		Value:   value,
		Limit:   limit,
		Message: fmt.Sprintf(format, value, limit),
	}
	r.Reasons = append(r.Reasons, reason)

	if !passed {
		r.Passed = false
		if r.OverallReason == "" {
			r.OverallReason = fmt.Sprintf("blocked by %s: %s", name, reason.Message)
		}
	}
}
