package venue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/market"
)

func validWeights() Weights {
	return Weights{Volatility: 0.25, Trend: 0.30, Position: 0.20, Liquidity: 0.15, Extra: 0.10}
}

func validThresholds() Thresholds {
	return Thresholds{
		VolatilityCeilingPct: 2.0,
		SpreadCeilingPct:     0.1,
		MinLiquidityQuote:    100_000,
		MaxRiskScore:         0.7,
	}
}

func TestNewProfile_Valid(t *testing.T) {
	prof, err := NewProfile("binance", validWeights(), validThresholds())
	require.NoError(t, err)
	assert.Equal(t, "binance", prof.ID)

	// Default factor is neutral.
	got := prof.ExtraFactor(&market.Snapshot{}, analysis.RiskMetrics{}, analysis.LiquidityMetrics{})
	assert.Equal(t, 1.0, got)
}

func TestNewProfile_RejectsBadWeights(t *testing.T) {
	cases := []struct {
		name    string
		weights Weights
	}{
		{"sum too low", Weights{Volatility: 0.2, Trend: 0.2, Position: 0.2, Liquidity: 0.2, Extra: 0.1}},
		{"sum too high", Weights{Volatility: 0.4, Trend: 0.3, Position: 0.2, Liquidity: 0.15, Extra: 0.1}},
		{"negative component", Weights{Volatility: -0.1, Trend: 0.5, Position: 0.2, Liquidity: 0.3, Extra: 0.1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProfile("x", tc.weights, validThresholds())
			assert.Error(t, err)
		})
	}
}

func TestNewProfile_ToleratesRoundingError(t *testing.T) {
	w := Weights{Volatility: 0.2, Trend: 0.2, Position: 0.2, Liquidity: 0.2, Extra: 0.2005}
	_, err := NewProfile("x", w, validThresholds())
	require.NoError(t, err)
}

func TestNewProfile_RejectsBadThresholds(t *testing.T) {
	th := validThresholds()
	th.MaxRiskScore = 1.5
	_, err := NewProfile("x", validWeights(), th)
	assert.Error(t, err)

	th = validThresholds()
	th.SpreadCeilingPct = 0
	_, err = NewProfile("x", validWeights(), th)
	assert.Error(t, err)
}

func TestNewProfile_EmptyID(t *testing.T) {
	_, err := NewProfile("", validWeights(), validThresholds())
	assert.Error(t, err)
}

func TestExtraFactor_Clamped(t *testing.T) {
	prof, err := NewProfile("x", validWeights(), validThresholds(),
		WithExtraFactor(func(*market.Snapshot, analysis.RiskMetrics, analysis.LiquidityMetrics) float64 {
			return 3.7
		}))
	require.NoError(t, err)

	got := prof.ExtraFactor(&market.Snapshot{}, analysis.RiskMetrics{}, analysis.LiquidityMetrics{})
	assert.Equal(t, 1.0, got)
}

func TestFundingQualityFactor(t *testing.T) {
	risk := analysis.RiskMetrics{}
	liq := analysis.LiquidityMetrics{}

	assert.Equal(t, 1.0, FundingQualityFactor(&market.Snapshot{}, risk, liq))
	assert.InDelta(t, 0.5, FundingQualityFactor(&market.Snapshot{FundingRatePct: 0.005}, risk, liq), 0.0001)
	assert.Equal(t, 0.0, FundingQualityFactor(&market.Snapshot{FundingRatePct: -0.02}, risk, liq))
}

func TestDepthImbalanceFactor(t *testing.T) {
	risk := analysis.RiskMetrics{}

	balanced := analysis.LiquidityMetrics{BidVolume: 500, AskVolume: 500}
	assert.Equal(t, 1.0, DepthImbalanceFactor(nil, risk, balanced))

	oneSided := analysis.LiquidityMetrics{BidVolume: 1000, AskVolume: 0}
	assert.Equal(t, 0.0, DepthImbalanceFactor(nil, risk, oneSided))

	emptyBook := analysis.LiquidityMetrics{}
	assert.Equal(t, 0.0, DepthImbalanceFactor(nil, risk, emptyBook))
}

func TestLatencyQualityFactor(t *testing.T) {
	risk := analysis.RiskMetrics{}
	liq := analysis.LiquidityMetrics{}

	assert.Equal(t, 1.0, LatencyQualityFactor(&market.Snapshot{}, risk, liq))
	assert.InDelta(t, 0.5, LatencyQualityFactor(&market.Snapshot{FetchLatency: time.Second}, risk, liq), 0.0001)
	assert.Equal(t, 0.0, LatencyQualityFactor(&market.Snapshot{FetchLatency: 5 * time.Second}, risk, liq))
}

func TestFactorByName(t *testing.T) {
	for _, name := range []string{"", "default", "funding_quality", "depth_imbalance", "latency_quality"} {
		fn, err := FactorByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}

	_, err := FactorByName("nonsense")
	assert.Error(t, err)
}
