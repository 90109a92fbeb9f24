// Package cache wraps Redis for the read-through caches, seat pub/sub and
// the enrollment event queue. Every operation is best effort: a Redis
// failure is logged and treated as a miss, never surfaced to the request.
// A nil *Cache is valid and behaves as an always-empty cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var errStaleFill = errors.New("cache generation moved")

// Cache is a thin JSON layer over a Redis client.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// New creates a Cache whose entries expire after ttl.
func New(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "cache").Logger(),
	}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// GetJSON decodes the value at key into dst and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		c.Invalidate(ctx, key)
		return false
	}
	return true
}

// Invalidate deletes keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}

// Generation returns the counter stored at genKey, zero when unset. ok is
// false when Redis cannot be read; callers must then skip the fill.
func (c *Cache) Generation(ctx context.Context, genKey string) (gen int64, ok bool) {
	if !c.enabled() {
		return 0, false
	}
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", genKey).Msg("cache generation read failed")
		return 0, false
	}
	return gen, true
}

// SetJSONAtGeneration stores v at key only while genKey still holds gen.
// A Bump that lands between the caller's Generation read and this write
// makes the write a no-op, so a fill computed from older data never
// replaces an invalidation.
func (c *Cache) SetJSONAtGeneration(ctx context.Context, key, genKey string, gen int64, v interface{}) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.log.Debug().Str("key", key).Msg("cache fill skipped, entry invalidated meanwhile")
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Bump advances the generation at genKey and deletes keys in one transaction.
func (c *Cache) Bump(ctx context.Context, genKey string, keys ...string) {
	if !c.enabled() {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", genKey).Strs("keys", keys).Msg("cache bump failed")
	}
}

// Publish sends v as JSON on a pub/sub channel.
func (c *Cache) Publish(ctx context.Context, channel string, v interface{}) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Str("channel", channel).Msg("publish marshal failed")
		return
	}
	if err := c.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		c.log.Warn().Err(err).Str("channel", channel).Msg("publish failed")
	}
}

// Enqueue appends v as JSON to the tail of a Redis list.
func (c *Cache) Enqueue(ctx context.Context, queue string, v interface{}) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Str("queue", queue).Msg("enqueue marshal failed")
		return
	}
	if err := c.rdb.RPush(ctx, queue, raw).Err(); err != nil {
		c.log.Warn().Err(err).Str("queue", queue).Msg("enqueue failed")
	}
}
