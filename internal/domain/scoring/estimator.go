package scoring

import (
	"math"

	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/market"
	"github.com/sawpanic/venuerank/internal/domain/venue"
)

// Score is the weighted composite for one venue, with per-component
// attribution so rankings stay explainable.
type Score struct {
	Composite          float64 `json:"composite"`            // [0,1]
	ProfitPotentialPct float64 `json:"profit_potential_pct"` // composite * 100, 2dp

	// Normalized sub-scores, pre-weighting. All in [0,1], higher = better.
	VolatilityScore float64 `json:"volatility_score"`
	TrendScore      float64 `json:"trend_score"`
	PositionScore   float64 `json:"position_score"`
	LiquidityScore  float64 `json:"liquidity_score"`
	ExtraScore      float64 `json:"extra_score"`
}

// Estimator folds risk and liquidity metrics into a single composite score
// using the venue's weight profile. Heterogeneous venues share one ranking
// formula: every raw metric is normalized to [0,1] before weighting, and
// venue nuance lives entirely in the weight vector plus one pluggable
// extra factor.
type Estimator struct{}

// NewEstimator creates a stateless composite estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate computes the composite score for one venue candidate. No
// in-formula penalty for marginal spread or volume: candidates in that
// territory are excluded by the safety gate before ranking, so a score
// discount there would never be observable.
func (e *Estimator) Estimate(prof *venue.Profile, snap *market.Snapshot, risk analysis.RiskMetrics, liq analysis.LiquidityMetrics) Score {
	price := snap.LastPrice()

	s := Score{
		VolatilityScore: volatilityScore(risk.VolatilityPct, prof.Thresholds.VolatilityCeilingPct),
		TrendScore:      trendScore(risk.TrendPct),
		PositionScore:   positionScore(price, risk.Support, risk.Resistance),
		LiquidityScore:  liquidityScore(prof, liq),
		ExtraScore:      prof.ExtraFactor(snap, risk, liq),
	}

	w := prof.Weights
	composite := w.Volatility*s.VolatilityScore +
		w.Trend*s.TrendScore +
		w.Position*s.PositionScore +
		w.Liquidity*s.LiquidityScore +
		w.Extra*s.ExtraScore

	s.Composite = clamp01(composite)
	s.ProfitPotentialPct = math.Round(s.Composite*100*100) / 100
	return s
}

// volatilityScore maps calm markets to 1 and anything at or beyond the
// venue's ceiling to 0.
func volatilityScore(volatilityPct, ceilingPct float64) float64 {
	if ceilingPct <= 0 {
		return 0
	}
	return math.Max(0, 1-volatilityPct/ceilingPct)
}

// trendScore maps the trend percentage from [-100,100] onto [0,1], flat
// markets landing on 0.5.
func trendScore(trendPct float64) float64 {
	return clamp01((trendPct + 100) / 200)
}

// positionScore rewards proximity to support or resistance, whichever is
// nearer: buy near support, sell near resistance.
func positionScore(price, support, resistance float64) float64 {
	if price <= 0 {
		return 0
	}
	supportDist := (price - support) / price
	resistanceDist := (resistance - price) / price
	return clamp01(1 - math.Min(supportDist, resistanceDist))
}

// liquidityScore is the binary IsLiquid flag by default. Venues that opt
// into continuous liquidity get a depth/spread blend instead, which keeps
// deep-but-wide and tight-but-thin books distinguishable.
func liquidityScore(prof *venue.Profile, liq analysis.LiquidityMetrics) float64 {
	if !prof.ContinuousLiquidity {
		if liq.IsLiquid {
			return 1
		}
		return 0
	}

	t := prof.Thresholds
	spreadPart := 1 - math.Min(liq.SpreadPct/t.SpreadCeilingPct, 1)
	depthPart := 1.0
	if t.MinLiquidityQuote > 0 {
		depthPart = math.Min(liq.MinDepth()/t.MinLiquidityQuote, 1)
	}
	return clamp01(0.5*spreadPart + 0.5*depthPart)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
