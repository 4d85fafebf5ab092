package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/sawpanic/venuerank/internal/domain/market"
)

// MinCandles is the shortest OHLCV window the analyzer accepts. The
// support/resistance calculation needs a full 20-bar trailing window.
const MinCandles = 20

var (
	// ErrInsufficientData means the snapshot carried fewer than MinCandles
	// bars. The venue is excluded for the cycle rather than scored with
	// degenerate values.
	ErrInsufficientData = errors.New("insufficient ohlcv data")

	// ErrInvalidBook means the order book was empty or its best bid was
	// non-positive, making the spread undefined.
	ErrInvalidBook = errors.New("invalid order book")
)

// RiskMetrics captures per-venue volatility and trend over the OHLCV window.
type RiskMetrics struct {
	VolatilityPct float64 `json:"volatility_pct"` // (max high - min low) / min low * 100
	TrendPct      float64 `json:"trend_pct"`      // (last close - first close) / first close * 100
	Support       float64 `json:"support"`        // min close, trailing 20 bars
	Resistance    float64 `json:"resistance"`     // max close, trailing 20 bars
	RiskScore     float64 `json:"risk_score"`     // [0,1], 0.7*|vol| + 0.3*|trend|, over 100
}

// LiquidityMetrics captures order-book depth and spread.
type LiquidityMetrics struct {
	BidVolume float64 `json:"bid_volume"`
	AskVolume float64 `json:"ask_volume"`
	SpreadPct float64 `json:"spread_pct"` // (best ask - best bid) / best bid * 100
	IsLiquid  bool    `json:"is_liquid"`
}

// MinDepth returns the thinner side of the book.
func (l LiquidityMetrics) MinDepth() float64 {
	return math.Min(l.BidVolume, l.AskVolume)
}

// Analyzer derives risk and liquidity metrics from a raw snapshot. It is
// stateless and shared safely across concurrent evaluations.
type Analyzer struct {
	spreadCeilingPct float64 // liquidity flag: spread must stay below this
	liquidityFloor   float64 // liquidity flag: min(bid,ask) depth must reach this
}

// NewAnalyzer builds an analyzer with the venue's spread ceiling (%) and
// liquidity floor (quote currency).
func NewAnalyzer(spreadCeilingPct, liquidityFloor float64) *Analyzer {
	return &Analyzer{
		spreadCeilingPct: spreadCeilingPct,
		liquidityFloor:   liquidityFloor,
	}
}

// Risk computes RiskMetrics from the snapshot's OHLCV window. Returns
// ErrInsufficientData when fewer than MinCandles bars are present.
func (a *Analyzer) Risk(snap *market.Snapshot) (RiskMetrics, error) {
	if len(snap.Candles) < MinCandles {
		return RiskMetrics{}, fmt.Errorf("%w: got %d candles, need %d",
			ErrInsufficientData, len(snap.Candles), MinCandles)
	}

	maxHigh := snap.Candles[0].High
	minLow := snap.Candles[0].Low
	for _, c := range snap.Candles {
		maxHigh = math.Max(maxHigh, c.High)
		minLow = math.Min(minLow, c.Low)
	}
	if minLow <= 0 {
		return RiskMetrics{}, fmt.Errorf("%w: non-positive low %.8f", ErrInsufficientData, minLow)
	}

	closes := snap.Closes()
	firstClose := closes[0]
	lastClose := closes[len(closes)-1]
	if firstClose <= 0 {
		return RiskMetrics{}, fmt.Errorf("%w: non-positive close %.8f", ErrInsufficientData, firstClose)
	}

	volatility := (maxHigh - minLow) / minLow * 100
	trend := (lastClose - firstClose) / firstClose * 100

	// Support/resistance over the trailing 20 closes only.
	trailing := closes[len(closes)-MinCandles:]
	support := trailing[0]
	resistance := trailing[0]
	for _, c := range trailing {
		support = math.Min(support, c)
		resistance = math.Max(resistance, c)
	}

	return RiskMetrics{
		VolatilityPct: volatility,
		TrendPct:      trend,
		Support:       support,
		Resistance:    resistance,
		RiskScore:     riskScore(volatility, trend),
	}, nil
}

// Liquidity computes LiquidityMetrics from the snapshot's order book.
// Returns ErrInvalidBook when the book is empty or the best bid is
// non-positive. Depth sums cover whatever levels the gateway returned, so
// callers should request a consistent depth across venues.
func (a *Analyzer) Liquidity(snap *market.Snapshot) (LiquidityMetrics, error) {
	book := snap.Book
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return LiquidityMetrics{}, fmt.Errorf("%w: empty side (bids=%d asks=%d)",
			ErrInvalidBook, len(book.Bids), len(book.Asks))
	}

	bestBid := book.Bids[0].Price
	bestAsk := book.Asks[0].Price
	if bestBid <= 0 {
		return LiquidityMetrics{}, fmt.Errorf("%w: best bid %.8f", ErrInvalidBook, bestBid)
	}

	var bidVolume, askVolume float64
	for _, lvl := range book.Bids {
		bidVolume += lvl.Size
	}
	for _, lvl := range book.Asks {
		askVolume += lvl.Size
	}

	spread := (bestAsk - bestBid) / bestBid * 100
	liquid := spread < a.spreadCeilingPct && math.Min(bidVolume, askVolume) >= a.liquidityFloor

	return LiquidityMetrics{
		BidVolume: bidVolume,
		AskVolume: askVolume,
		SpreadPct: spread,
		IsLiquid:  liquid,
	}, nil
}

// riskScore weighs volatility over trend and clamps to [0,1].
func riskScore(volatility, trend float64) float64 {
	score := (math.Abs(volatility)*0.7 + math.Abs(trend)*0.3) / 100
	return clamp01(score)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
