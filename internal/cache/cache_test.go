package cache

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Minute, zerolog.New(io.Discard)), mr, rdb
}

func TestCache_SetGetInvalidate(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))

	c.SetJSONAtGeneration(ctx, "k", "k:gen", 0, payload{ID: 1, Name: "one"})
	require.True(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, payload{ID: 1, Name: "one"}, got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	c.Invalidate(ctx, "k")
	assert.False(t, c.GetJSON(ctx, "k", &got))
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	c.SetJSONAtGeneration(ctx, "k", "k:gen", 0, payload{ID: 1})
	mr.FastForward(2 * time.Minute)

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))
}

func TestCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("k", "{not json"))

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))
	assert.False(t, mr.Exists("k"))
}

func TestCache_FillAtCurrentGeneration(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	gen, ok := c.Generation(ctx, "k:gen")
	require.True(t, ok)
	assert.Zero(t, gen)

	c.SetJSONAtGeneration(ctx, "k", "k:gen", gen, payload{ID: 1})
	var got payload
	require.True(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestCache_BumpDefeatsInFlightFill(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	c.SetJSONAtGeneration(ctx, "k", "k:gen", 0, payload{ID: 1})
	gen, ok := c.Generation(ctx, "k:gen")
	require.True(t, ok)

	// An invalidation lands after the generation read but before the fill.
	c.Bump(ctx, "k:gen", "k")
	assert.False(t, mr.Exists("k"))

	c.SetJSONAtGeneration(ctx, "k", "k:gen", gen, payload{ID: 2})
	assert.False(t, mr.Exists("k"), "a fill started before the bump must not be stored")

	gen, ok = c.Generation(ctx, "k:gen")
	require.True(t, ok)
	assert.Equal(t, int64(1), gen)
	c.SetJSONAtGeneration(ctx, "k", "k:gen", gen, payload{ID: 3})

	var got payload
	require.True(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, 3, got.ID)
}

func TestCache_Enqueue(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	c.Enqueue(ctx, "q", payload{ID: 1})
	c.Enqueue(ctx, "q", payload{ID: 2})

	items, err := mr.List("q")
	require.NoError(t, err)
	require.Len(t, items, 2)

	var first payload
	require.NoError(t, json.Unmarshal([]byte(items[0]), &first))
	assert.Equal(t, 1, first.ID)
}

func TestCache_Publish(t *testing.T) {
	c, _, rdb := newTestCache(t)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, "chan")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	c.Publish(ctx, "chan", payload{ID: 9})

	select {
	case msg := <-sub.Channel():
		var got payload
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, 9, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestCache_NilIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))
	assert.NotPanics(t, func() {
		c.SetJSONAtGeneration(ctx, "k", "k:gen", 0, payload{})
		c.Invalidate(ctx, "k")
		c.Publish(ctx, "chan", payload{})
		c.Enqueue(ctx, "q", payload{})
		c.Bump(ctx, "k:gen", "k")
	})
	_, ok := c.Generation(ctx, "k:gen")
	assert.False(t, ok)
}

func TestCache_RedisDownIsMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	c := New(rdb, time.Minute, zerolog.New(io.Discard))
	ctx := context.Background()
	c.SetJSONAtGeneration(ctx, "k", "k:gen", 0, payload{ID: 1})
	mr.Close()

	var got payload
	assert.False(t, c.GetJSON(ctx, "k", &got))
	assert.NotPanics(t, func() { c.Invalidate(ctx, "k") })
	_, ok := c.Generation(ctx, "k:gen")
	assert.False(t, ok, "an unreadable generation must disable the fill")
}
