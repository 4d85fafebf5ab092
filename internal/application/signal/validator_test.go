package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/venuerank/internal/application/selector"
	"github.com/sawpanic/venuerank/internal/domain/analysis"
	"github.com/sawpanic/venuerank/internal/domain/scoring"
)

type stubProvider struct {
	pred        Prediction
	err         error
	gotFeatures map[string]float64
}

func (s *stubProvider) Validate(_ context.Context, features map[string]float64) (Prediction, error) {
	s.gotFeatures = features
	return s.pred, s.err
}

func selectedResult() *selector.Result {
	return &selector.Result{
		Outcome:       selector.OutcomeSelected,
		ChosenVenueID: "binance",
		Candidates: []selector.Candidate{{
			VenueID:   "binance",
			Risk:      analysis.RiskMetrics{VolatilityPct: 1.2, TrendPct: 3.0, RiskScore: 0.2},
			Liquidity: analysis.LiquidityMetrics{SpreadPct: 0.05},
			Score:     scoring.Score{Composite: 0.85},
		}},
	}
}

func TestApprove_AllChecksPass(t *testing.T) {
	provider := &stubProvider{pred: Prediction{Valid: true, ConfidencePct: 99.2, Signal: "buy"}}
	v := NewTradeValidator(provider, 0)

	dec, err := v.Approve(context.Background(), selectedResult(), "buy")
	require.NoError(t, err)

	assert.True(t, dec.Approved)
	assert.Empty(t, dec.Reasons)
	assert.Equal(t, "binance", dec.VenueID)
	assert.Equal(t, 99.2, dec.ConfidencePct)

	// The candidate's metrics reach the model as a flat feature vector.
	assert.Equal(t, 1.2, provider.gotFeatures["volatility_pct"])
	assert.Equal(t, 0.85, provider.gotFeatures["composite"])
}

func TestApprove_CollectsEveryRejection(t *testing.T) {
	provider := &stubProvider{pred: Prediction{Valid: false, ConfidencePct: 55.0, Signal: "sell"}}
	v := NewTradeValidator(provider, 0)

	dec, err := v.Approve(context.Background(), selectedResult(), "buy")
	require.NoError(t, err)

	assert.False(t, dec.Approved)
	require.Len(t, dec.Reasons, 3)
	assert.Contains(t, dec.Reasons[0], "invalid")
	assert.Contains(t, dec.Reasons[1], "below required 98.0%")
	assert.Contains(t, dec.Reasons[2], `does not support "buy"`)
}

func TestApprove_ConfidenceJustUnderThreshold(t *testing.T) {
	provider := &stubProvider{pred: Prediction{Valid: true, ConfidencePct: 97.9, Signal: "buy"}}
	v := NewTradeValidator(provider, 0)

	dec, err := v.Approve(context.Background(), selectedResult(), "buy")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	require.Len(t, dec.Reasons, 1)
}

func TestApprove_CustomThreshold(t *testing.T) {
	provider := &stubProvider{pred: Prediction{Valid: true, ConfidencePct: 80.0, Signal: "buy"}}
	v := NewTradeValidator(provider, 75.0)

	dec, err := v.Approve(context.Background(), selectedResult(), "buy")
	require.NoError(t, err)
	assert.True(t, dec.Approved)
}

func TestApprove_NoVenueSelected(t *testing.T) {
	provider := &stubProvider{}
	v := NewTradeValidator(provider, 0)

	res := &selector.Result{Outcome: selector.OutcomeNoneEligible}
	dec, err := v.Approve(context.Background(), res, "buy")
	require.NoError(t, err)

	assert.False(t, dec.Approved)
	require.Len(t, dec.Reasons, 1)
	assert.Contains(t, dec.Reasons[0], "no venue selected")
	assert.Nil(t, provider.gotFeatures, "provider must not be consulted without a venue")
}

func TestApprove_ProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("model offline")}
	v := NewTradeValidator(provider, 0)

	_, err := v.Approve(context.Background(), selectedResult(), "buy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prediction provider")
}
