package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

func TestRedisClaims(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	c := NewClaims(logger.Nop(), rdb, "test:")
	defer c.Close()
	ctx := context.Background()

	ok, err := c.Claim(ctx, "notify:email:u1:2025-01-06", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("test:notify:email:u1:2025-01-06"))

	ok, err = c.Claim(ctx, "notify:email:u1:2025-01-06", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Release(ctx, "notify:email:u1:2025-01-06"))
	ok, err = c.Claim(ctx, "notify:email:u1:2025-01-06", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Hour)
	ok, err = c.Claim(ctx, "notify:email:u1:2025-01-06", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryClaims(t *testing.T) {
	c := NewMemoryClaims().(*memoryClaims)
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := c.Claim(ctx, "k", time.Minute)
	assert.True(t, ok)
	ok, _ = c.Claim(ctx, "k", time.Minute)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = c.Claim(ctx, "k", time.Minute)
	assert.True(t, ok)

	require.NoError(t, c.Release(ctx, "k"))
	ok, _ = c.Claim(ctx, "k", time.Minute)
	assert.True(t, ok)
}
