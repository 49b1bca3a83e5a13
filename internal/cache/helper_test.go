package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func withMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
}

func TestAside(t *testing.T) {
	withMiniredis(t)

	fetches := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			fetches++
			*dest = payload{Name: "stew", Count: 2}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(context.Background(), "recipe:1", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "stew", first.Name)

	// Second read is served from the cache.
	var second payload
	require.NoError(t, Aside(context.Background(), "recipe:1", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first, second)

	Invalidate(context.Background(), "recipe:1")

	var third payload
	require.NoError(t, Aside(context.Background(), "recipe:1", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, fetches, "invalidation forces a refetch")
}

func TestAsideWithoutRedis(t *testing.T) {
	SetClient(nil)

	var dest payload
	err := Aside(context.Background(), "recipe:2", &dest, time.Minute, func() error {
		dest = payload{Name: "soup", Count: 1}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "soup", dest.Name)
}

func TestGetSetJSON(t *testing.T) {
	withMiniredis(t)

	found, err := GetJSON(context.Background(), "missing", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(context.Background(), "hit", payload{Name: "pie", Count: 3}, time.Minute))

	var got payload
	found, err = GetJSON(context.Background(), "hit", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "pie", Count: 3}, got)
}
