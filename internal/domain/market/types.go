package market

import "time"

// Trade is a single executed trade reported by a venue.
type Trade struct {
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Candle is one OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// BookLevel is one price level of an order book side.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook holds top-of-book depth. Bids are expected best-first
// (descending price), asks best-first (ascending price).
type OrderBook struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// Snapshot is the raw per-venue market state for one evaluation cycle.
// It is assembled by the gateway layer, consumed once by the analyzer,
// and discarded after scoring.
type Snapshot struct {
	VenueID string    `json:"venue_id"`
	Symbol  string    `json:"symbol"`
	Trades  []Trade   `json:"trades"`
	Candles []Candle  `json:"candles"`
	Book    OrderBook `json:"book"`

	// FundingRatePct is the current funding rate for derivatives venues,
	// zero for venues that have none.
	FundingRatePct float64 `json:"funding_rate_pct,omitempty"`

	// FetchLatency is how long the gateway round-trip took, recorded by
	// the facade when the snapshot is assembled.
	FetchLatency time.Duration `json:"fetch_latency,omitempty"`
}

// LastPrice returns the most recent trade price, falling back to the last
// close when no trades are present. Zero when the snapshot is empty.
func (s *Snapshot) LastPrice() float64 {
	if n := len(s.Trades); n > 0 {
		return s.Trades[n-1].Price
	}
	if n := len(s.Candles); n > 0 {
		return s.Candles[n-1].Close
	}
	return 0
}

// QuoteVolume approximates the traded quote-currency volume over the
// candle window (sum of base volume priced at each bar's close).
func (s *Snapshot) QuoteVolume() float64 {
	var total float64
	for _, c := range s.Candles {
		total += c.Volume * c.Close
	}
	return total
}

// Closes returns the close series, oldest-first.
func (s *Snapshot) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}
