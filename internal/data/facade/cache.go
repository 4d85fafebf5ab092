package facade

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/venuerank/internal/domain/market"
)

// CachedSource decorates a SnapshotSource with a short-TTL Redis cache so
// back-to-back evaluations of the same symbol reuse one gateway round-trip
// per venue. The cache is ephemeral working state, not history.
type CachedSource struct {
	inner  SnapshotSource
	client redis.Cmdable
	ttl    time.Duration
}

// NewCachedSource wraps a source with the given Redis client and TTL.
func NewCachedSource(inner SnapshotSource, client redis.Cmdable, ttl time.Duration) *CachedSource {
	return &CachedSource{inner: inner, client: client, ttl: ttl}
}

// Snapshot serves from cache when a fresh entry exists, otherwise fetches
// through and stores the result. Cache failures degrade to a plain fetch.
func (c *CachedSource) Snapshot(ctx context.Context, venueID, symbol string) (*market.Snapshot, error) {
	key := snapshotKey(venueID, symbol)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var snap market.Snapshot
		if uerr := json.Unmarshal([]byte(raw), &snap); uerr == nil {
			return &snap, nil
		}
		// Corrupt entry: drop it and fetch through.
		c.client.Del(ctx, key)
	case err != redis.Nil:
		log.Warn().Err(err).Str("venue", venueID).Msg("snapshot cache read failed")
	}

	snap, err := c.inner.Snapshot(ctx, venueID, symbol)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(snap); merr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			log.Warn().Err(serr).Str("venue", venueID).Msg("snapshot cache write failed")
		}
	}

	return snap, nil
}

func snapshotKey(venueID, symbol string) string {
	return fmt.Sprintf("venuerank:snapshot:%s:%s", venueID, symbol)
}
