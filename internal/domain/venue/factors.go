package venue

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/market"
)

// Built-in extra factors, referenced by name from venue configuration.
// Each returns a quality score in [0,1], higher = better.

// NeutralFactor is the default for venues with no special factor.
func NeutralFactor(_ *market.Snapshot, _ analysis.RiskMetrics, _ analysis.LiquidityMetrics) float64 {
	return 1.0
}

// FundingQualityFactor rewards funding rates near zero on derivatives
// venues. A |rate| of 0.01% or more scores zero.
func FundingQualityFactor(snap *market.Snapshot, _ analysis.RiskMetrics, _ analysis.LiquidityMetrics) float64 {
	return 1 - math.Min(math.Abs(snap.FundingRatePct)/0.01, 1)
}

// DepthImbalanceFactor rewards balanced books. A one-sided book scores
// zero, a perfectly symmetric one scores 1.
func DepthImbalanceFactor(_ *market.Snapshot, _ analysis.RiskMetrics, liq analysis.LiquidityMetrics) float64 {
	total := liq.BidVolume + liq.AskVolume
	if total <= 0 {
		return 0
	}
	return 1 - math.Abs(liq.BidVolume-liq.AskVolume)/total
}

// latencyBudget is the gateway round-trip beyond which a venue's latency
// factor bottoms out.
const latencyBudget = 2 * time.Second

// LatencyQualityFactor penalizes slow gateway round-trips. Snapshots with
// no recorded latency score 1.
func LatencyQualityFactor(snap *market.Snapshot, _ analysis.RiskMetrics, _ analysis.LiquidityMetrics) float64 {
	if snap.FetchLatency <= 0 {
		return 1.0
	}
	return 1 - math.Min(float64(snap.FetchLatency)/float64(latencyBudget), 1)
}

var factorRegistry = map[string]FactorFunc{
	"":                NeutralFactor,
	"default":         NeutralFactor,
	"funding_quality": FundingQualityFactor,
	"depth_imbalance": DepthImbalanceFactor,
	"latency_quality": LatencyQualityFactor,
}

// FactorByName resolves a configured factor name to its implementation.
func FactorByName(name string) (FactorFunc, error) {
	fn, ok := factorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown extra factor %q", name)
	}
	return fn, nil
}
