package data

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	for want := int64(1); want <= 3; want++ {
		n, err := IncrWindow(ctx, rdb, "1.2.3.4", time.Minute, now)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := IncrWindow(ctx, rdb, "5.6.7.8", time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = IncrWindow(ctx, rdb, "1.2.3.4", time.Minute, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "next window starts over")

	for _, k := range mr.Keys() {
		assert.Greater(t, mr.TTL(k), time.Duration(0))
	}
}
