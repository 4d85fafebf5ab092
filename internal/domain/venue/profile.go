package venue

import (
	"fmt"
	"math"

	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/market"
)

// WeightSumTolerance is the allowed deviation of a weight vector from 1.0.
const WeightSumTolerance = 0.001

// Weights is the per-venue scoring weight vector. All components are
// non-negative and must sum to 1.0 within WeightSumTolerance.
type Weights struct {
	Volatility float64 `yaml:"volatility" json:"volatility"`
	Trend      float64 `yaml:"trend" json:"trend"`
	Position   float64 `yaml:"position" json:"position"`
	Liquidity  float64 `yaml:"liquidity" json:"liquidity"`
	Extra      float64 `yaml:"extra" json:"extra"`
}

// Sum returns the total weight allocation.
func (w Weights) Sum() float64 {
	return w.Volatility + w.Trend + w.Position + w.Liquidity + w.Extra
}

// Validate rejects negative components and weight sums outside tolerance.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"volatility": w.Volatility,
		"trend":      w.Trend,
		"position":   w.Position,
		"liquidity":  w.Liquidity,
		"extra":      w.Extra,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %f", name, v)
		}
	}
	if diff := math.Abs(w.Sum() - 1.0); diff > WeightSumTolerance {
		return fmt.Errorf("weights sum to %.4f, want 1.0 ± %.3f", w.Sum(), WeightSumTolerance)
	}
	return nil
}

// Thresholds are the per-venue safety ceilings and floors.
type Thresholds struct {
	VolatilityCeilingPct float64 `yaml:"volatility_ceiling_pct" json:"volatility_ceiling_pct"`
	SpreadCeilingPct     float64 `yaml:"spread_ceiling_pct" json:"spread_ceiling_pct"`
	MinLiquidityQuote    float64 `yaml:"min_liquidity_quote" json:"min_liquidity_quote"`
	MaxRiskScore         float64 `yaml:"max_risk_score" json:"max_risk_score"`
}

// Validate rejects thresholds that would make the gate vacuous or
// impossible to pass.
func (t Thresholds) Validate() error {
	if t.VolatilityCeilingPct <= 0 {
		return fmt.Errorf("volatility ceiling must be positive, got %f", t.VolatilityCeilingPct)
	}
	if t.SpreadCeilingPct <= 0 {
		return fmt.Errorf("spread ceiling must be positive, got %f", t.SpreadCeilingPct)
	}
	if t.MinLiquidityQuote < 0 {
		return fmt.Errorf("min liquidity must be non-negative, got %f", t.MinLiquidityQuote)
	}
	if t.MaxRiskScore <= 0 || t.MaxRiskScore > 1 {
		return fmt.Errorf("max risk score must be in (0,1], got %f", t.MaxRiskScore)
	}
	return nil
}

// FactorFunc is a venue-specific sub-score in [0,1]. It sees the raw
// snapshot plus the derived metrics so factors like funding-rate quality
// or depth imbalance stay one-liners.
type FactorFunc func(snap *market.Snapshot, risk analysis.RiskMetrics, liq analysis.LiquidityMetrics) float64

// Profile is the static per-venue configuration. Immutable after
// construction and shared safely across concurrent evaluations.
type Profile struct {
	ID         string
	Weights    Weights
	Thresholds Thresholds

	// ContinuousLiquidity switches the liquidity sub-score from the binary
	// IsLiquid flag to a depth/spread blend.
	ContinuousLiquidity bool

	extraFactor FactorFunc
}

// NewProfile validates and builds a venue profile. A nil factor gets the
// neutral default (always 1.0). Weight-sum violations are configuration
// errors, fatal to this venue's registration only.
func NewProfile(id string, weights Weights, thresholds Thresholds, opts ...Option) (*Profile, error) {
	if id == "" {
		return nil, fmt.Errorf("venue id must not be empty")
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("venue %s: %w", id, err)
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("venue %s: %w", id, err)
	}

	p := &Profile{
		ID:          id,
		Weights:     weights,
		Thresholds:  thresholds,
		extraFactor: NeutralFactor,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Option customizes a profile at construction time.
type Option func(*Profile)

// WithExtraFactor installs a venue-specific factor function.
func WithExtraFactor(fn FactorFunc) Option {
	return func(p *Profile) {
		if fn != nil {
			p.extraFactor = fn
		}
	}
}

// WithContinuousLiquidity enables the depth/spread liquidity blend.
func WithContinuousLiquidity() Option {
	return func(p *Profile) { p.ContinuousLiquidity = true }
}

// ExtraFactor evaluates the venue-specific sub-score, clamped to [0,1].
func (p *Profile) ExtraFactor(snap *market.Snapshot, risk analysis.RiskMetrics, liq analysis.LiquidityMetrics) float64 {
	return math.Min(math.Max(p.extraFactor(snap, risk, liq), 0), 1)
}
