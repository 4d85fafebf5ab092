package facade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/venuerank/internal/domain/market"
)

// Gateway is the per-venue market-data capability the engine consumes.
// Implementations own connectivity, auth and venue quirks; the engine only
// sees typed data or an error.
type Gateway interface {
	FetchRecentTrades(ctx context.Context, symbol string, limit int) ([]market.Trade, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error)
	FetchOrderBook(ctx context.Context, symbol string, depth int) (market.OrderBook, error)
}

// FundingRateProvider is an optional capability for derivatives venues.
type FundingRateProvider interface {
	FetchFundingRate(ctx context.Context, symbol string) (float64, error)
}

// OrderGateway is the trading capability. The scoring engine never calls
// it; it exists so venue adapters can satisfy one registration surface.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, symbol, side, orderType string, amount, price float64) (string, error)
	CancelOrder(ctx context.Context, orderID, symbol string) error
}

// FetchSpec pins the shape of every snapshot request. Using one spec for
// all venues keeps depth sums and windows comparable across candidates.
type FetchSpec struct {
	TradeLimit  int    `yaml:"trade_limit"`
	Timeframe   string `yaml:"timeframe"`
	CandleLimit int    `yaml:"candle_limit"`
	BookDepth   int    `yaml:"book_depth"`
}

// DefaultFetchSpec requests 100 trades, 24 hourly candles and the top-20
// book.
func DefaultFetchSpec() FetchSpec {
	return FetchSpec{
		TradeLimit:  100,
		Timeframe:   "1h",
		CandleLimit: 24,
		BookDepth:   20,
	}
}

// SnapshotSource hands the selector one assembled snapshot per venue.
type SnapshotSource interface {
	Snapshot(ctx context.Context, venueID, symbol string) (*market.Snapshot, error)
}

// Facade assembles snapshots from registered per-venue gateways. It is the
// only component that talks to gateways; everything above it is pure math.
type Facade struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
	spec     FetchSpec
}

// NewFacade creates an empty facade using the given fetch spec.
func NewFacade(spec FetchSpec) *Facade {
	return &Facade{
		gateways: make(map[string]Gateway),
		spec:     spec,
	}
}

// Register installs a venue gateway. Later registrations for the same id
// replace earlier ones.
func (f *Facade) Register(venueID string, gw Gateway) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gateways[venueID] = gw
}

// Venues returns the registered venue ids.
func (f *Facade) Venues() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]string, 0, len(f.gateways))
	for id := range f.gateways {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot fetches trades, OHLCV and the order book for one venue and
// stitches them into a snapshot. Any fetch error fails the whole snapshot;
// the selector treats that as exclusion for the cycle, not a cycle abort.
func (f *Facade) Snapshot(ctx context.Context, venueID, symbol string) (*market.Snapshot, error) {
	f.mu.RLock()
	gw, ok := f.gateways[venueID]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no gateway registered for venue %s", venueID)
	}

	start := time.Now()

	trades, err := gw.FetchRecentTrades(ctx, symbol, f.spec.TradeLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	candles, err := gw.FetchOHLCV(ctx, symbol, f.spec.Timeframe, f.spec.CandleLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch ohlcv: %w", err)
	}
	book, err := gw.FetchOrderBook(ctx, symbol, f.spec.BookDepth)
	if err != nil {
		return nil, fmt.Errorf("fetch order book: %w", err)
	}

	snap := &market.Snapshot{
		VenueID:      venueID,
		Symbol:       symbol,
		Trades:       trades,
		Candles:      candles,
		Book:         book,
		FetchLatency: time.Since(start),
	}

	// Funding rate is best-effort: venues without the capability, or a
	// failing funding endpoint, leave the rate at zero.
	if fp, ok := gw.(FundingRateProvider); ok {
		rate, err := fp.FetchFundingRate(ctx, symbol)
		if err != nil {
			log.Debug().Err(err).Str("venue", venueID).Str("symbol", symbol).
				Msg("funding rate unavailable")
		} else {
			snap.FundingRatePct = rate
		}
	}

	return snap, nil
}
