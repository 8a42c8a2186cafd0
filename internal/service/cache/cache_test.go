package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "b", []byte("2"), 0))

	b, ok, err := c.GetBytes(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "a")
	assert.False(t, ok)

	_, ok, _ = c.GetBytes(ctx, "b")
	assert.True(t, ok, "zero ttl never expires")
}

func TestTTLCacheSweepAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	_ = c.SetBytes(ctx, "x", []byte("x"), time.Second)
	_ = c.SetBytes(ctx, "y", []byte("y"), time.Hour)
	_ = c.SetBytes(ctx, "z", []byte("z"), time.Hour)
	now = now.Add(time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete(ctx, "y"))
	_, ok, _ := c.GetBytes(ctx, "y")
	assert.False(t, ok)
}

func TestTTLCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	buf := []byte("abc")
	_ = c.SetBytes(ctx, "k", buf, 0)
	buf[0] = 'z'

	got, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "jobs")

	mock.ExpectSet("jobs:1", []byte("v"), time.Hour).SetVal("OK")
	require.NoError(t, c.SetBytes(ctx, "1", []byte("v"), time.Hour))

	mock.ExpectGet("jobs:1").SetVal("v")
	b, ok, err := c.GetBytes(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	mock.ExpectGet("jobs:2").RedisNil()
	_, ok, err = c.GetBytes(ctx, "2")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet("jobs:3").SetErr(errors.New("down"))
	_, _, err = c.GetBytes(ctx, "3")
	assert.Error(t, err)

	mock.ExpectDel("jobs:1").SetVal(1)
	require.NoError(t, c.Delete(ctx, "1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
