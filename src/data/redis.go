package data

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const ratePrefix = "ratelimit:"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// IncrWindow counts a hit for key in the fixed window containing now and
// returns the count so far. The counter expires with its window.
func IncrWindow(ctx context.Context, rdb redis.Cmdable, key string, window time.Duration, now time.Time) (int64, error) {
	bucket := now.UnixNano() / int64(window)
	k := ratePrefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
