package facade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/venuerank/internal/domain/market"
)

type stubGateway struct {
	trades  []market.Trade
	candles []market.Candle
	book    market.OrderBook

	tradesErr  error
	candlesErr error
	bookErr    error

	gotTradeLimit  int
	gotTimeframe   string
	gotCandleLimit int
	gotDepth       int
}

func (s *stubGateway) FetchRecentTrades(_ context.Context, _ string, limit int) ([]market.Trade, error) {
	s.gotTradeLimit = limit
	return s.trades, s.tradesErr
}

func (s *stubGateway) FetchOHLCV(_ context.Context, _ string, timeframe string, limit int) ([]market.Candle, error) {
	s.gotTimeframe = timeframe
	s.gotCandleLimit = limit
	return s.candles, s.candlesErr
}

func (s *stubGateway) FetchOrderBook(_ context.Context, _ string, depth int) (market.OrderBook, error) {
	s.gotDepth = depth
	return s.book, s.bookErr
}

// fundingGateway adds the optional derivatives capability.
type fundingGateway struct {
	stubGateway
	rate    float64
	rateErr error
}

func (f *fundingGateway) FetchFundingRate(context.Context, string) (float64, error) {
	return f.rate, f.rateErr
}

func stubData() ([]market.Trade, []market.Candle, market.OrderBook) {
	trades := []market.Trade{{Price: 100, Amount: 2, Timestamp: time.Unix(1700000000, 0)}}
	candles := []market.Candle{{Open: 99, High: 101, Low: 98, Close: 100, Volume: 10}}
	book := market.OrderBook{
		Bids: []market.BookLevel{{Price: 99.9, Size: 5}},
		Asks: []market.BookLevel{{Price: 100.1, Size: 5}},
	}
	return trades, candles, book
}

func TestFacade_SnapshotAssembly(t *testing.T) {
	trades, candles, book := stubData()
	gw := &stubGateway{trades: trades, candles: candles, book: book}

	f := NewFacade(DefaultFetchSpec())
	f.Register("binance", gw)

	snap, err := f.Snapshot(context.Background(), "binance", "BTC/USDT")
	require.NoError(t, err)

	assert.Equal(t, "binance", snap.VenueID)
	assert.Equal(t, "BTC/USDT", snap.Symbol)
	assert.Equal(t, trades, snap.Trades)
	assert.Equal(t, candles, snap.Candles)
	assert.Equal(t, book, snap.Book)
	assert.Zero(t, snap.FundingRatePct)
	assert.GreaterOrEqual(t, snap.FetchLatency, time.Duration(0))

	// The fetch spec pins every request shape.
	assert.Equal(t, 100, gw.gotTradeLimit)
	assert.Equal(t, "1h", gw.gotTimeframe)
	assert.Equal(t, 24, gw.gotCandleLimit)
	assert.Equal(t, 20, gw.gotDepth)
}

func TestFacade_FundingRateBestEffort(t *testing.T) {
	trades, candles, book := stubData()

	f := NewFacade(DefaultFetchSpec())
	f.Register("bybit", &fundingGateway{
		stubGateway: stubGateway{trades: trades, candles: candles, book: book},
		rate:        0.0042,
	})
	f.Register("okx", &fundingGateway{
		stubGateway: stubGateway{trades: trades, candles: candles, book: book},
		rateErr:     errors.New("endpoint down"),
	})

	snap, err := f.Snapshot(context.Background(), "bybit", "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, 0.0042, snap.FundingRatePct)

	// A failing funding endpoint never fails the snapshot.
	snap, err = f.Snapshot(context.Background(), "okx", "BTC/USDT")
	require.NoError(t, err)
	assert.Zero(t, snap.FundingRatePct)
}

func TestFacade_FetchErrorsAreWrapped(t *testing.T) {
	trades, candles, _ := stubData()
	boom := errors.New("boom")

	cases := []struct {
		name string
		gw   *stubGateway
		want string
	}{
		{"trades", &stubGateway{tradesErr: boom}, "fetch trades"},
		{"ohlcv", &stubGateway{trades: trades, candlesErr: boom}, "fetch ohlcv"},
		{"book", &stubGateway{trades: trades, candles: candles, bookErr: boom}, "fetch order book"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFacade(DefaultFetchSpec())
			f.Register("kucoin", tc.gw)

			_, err := f.Snapshot(context.Background(), "kucoin", "BTC/USDT")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestFacade_UnknownVenue(t *testing.T) {
	f := NewFacade(DefaultFetchSpec())
	_, err := f.Snapshot(context.Background(), "ghost", "BTC/USDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gateway registered")
}

func TestFacade_Venues(t *testing.T) {
	f := NewFacade(DefaultFetchSpec())
	assert.Empty(t, f.Venues())

	f.Register("binance", &stubGateway{})
	f.Register("okx", &stubGateway{})
	assert.ElementsMatch(t, []string{"binance", "okx"}, f.Venues())
}
