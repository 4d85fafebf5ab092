package facade

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sawpanic/venuerank/internal/domain/market"
)

// GuardConfig tunes the per-venue gateway guard.
type GuardConfig struct {
	RequestsPerSecond   float64 `yaml:"requests_per_second"`
	Burst               int     `yaml:"burst"`
	ConsecutiveFailures uint32  `yaml:"consecutive_failures"`
	OpenTimeoutSeconds  int     `yaml:"open_timeout_seconds"`
}

// DefaultGuardConfig allows 5 rps with small bursts and opens the breaker
// after 5 straight failures for 30s.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		RequestsPerSecond:   5,
		Burst:               10,
		ConsecutiveFailures: 5,
		OpenTimeoutSeconds:  30,
	}
}

// GuardedGateway wraps a venue gateway with a token-bucket rate limiter
// and a circuit breaker. A slow or flapping venue burns its own budget and
// trips its own breaker without touching the other venues' evaluations.
type GuardedGateway struct {
	inner   Gateway
	venueID string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuardedGateway decorates a gateway for one venue.
func NewGuardedGateway(venueID string, inner Gateway, cfg GuardConfig) *GuardedGateway {
	settings := gobreaker.Settings{
		Name:    venueID,
		Timeout: time.Duration(cfg.OpenTimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("venue", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("gateway breaker state change")
		},
	}

	return &GuardedGateway{
		inner:   inner,
		venueID: venueID,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (g *GuardedGateway) execute(ctx context.Context, op string, fn func() (interface{}, error)) (interface{}, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate wait for %s: %w", op, g.venueID, err)
	}
	out, err := g.breaker.Execute(fn)
	if err != nil {
		return nil, fmt.Errorf("%s via %s: %w", op, g.venueID, err)
	}
	return out, nil
}

// FetchRecentTrades implements Gateway.
func (g *GuardedGateway) FetchRecentTrades(ctx context.Context, symbol string, limit int) ([]market.Trade, error) {
	out, err := g.execute(ctx, "trades", func() (interface{}, error) {
		return g.inner.FetchRecentTrades(ctx, symbol, limit)
	})
	if err != nil {
		return nil, err
	}
	return out.([]market.Trade), nil
}

// FetchOHLCV implements Gateway.
func (g *GuardedGateway) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error) {
	out, err := g.execute(ctx, "ohlcv", func() (interface{}, error) {
		return g.inner.FetchOHLCV(ctx, symbol, timeframe, limit)
	})
	if err != nil {
		return nil, err
	}
	return out.([]market.Candle), nil
}

// FetchOrderBook implements Gateway.
func (g *GuardedGateway) FetchOrderBook(ctx context.Context, symbol string, depth int) (market.OrderBook, error) {
	out, err := g.execute(ctx, "order book", func() (interface{}, error) {
		return g.inner.FetchOrderBook(ctx, symbol, depth)
	})
	if err != nil {
		return market.OrderBook{}, err
	}
	return out.(market.OrderBook), nil
}

// FetchFundingRate passes through when the wrapped gateway has the
// capability, guarded by the same limiter and breaker.
func (g *GuardedGateway) FetchFundingRate(ctx context.Context, symbol string) (float64, error) {
	fp, ok := g.inner.(FundingRateProvider)
	if !ok {
		return 0, fmt.Errorf("venue %s has no funding rate capability", g.venueID)
	}
	out, err := g.execute(ctx, "funding rate", func() (interface{}, error) {
		return fp.FetchFundingRate(ctx, symbol)
	})
	if err != nil {
		return 0, err
	}
	return out.(float64), nil
}
