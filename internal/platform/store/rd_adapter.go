package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"curtaincall/internal/platform/store/rd"
)

// newRDAdapter wraps an existing *rd.RD and returns the store.Cache seam
func newRDAdapter(r *rd.RD) Cache {
	return &redisAdapter{inner: r}
}

// redisAdapter adapts *rd.RD to the store.Cache interface
type redisAdapter struct {
	inner *rd.RD
}

var _ Cache = (*redisAdapter)(nil)

func (a *redisAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := a.inner.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (a *redisAdapter) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return a.inner.Client.Set(ctx, key, val, ttl).Err()
}

func (a *redisAdapter) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return a.inner.Client.Del(ctx, keys...).Err()
}

// InvalidatePattern deletes keys matching a redis glob in SCAN batches
// and returns how many keys were removed
func (a *redisAdapter) InvalidatePattern(ctx context.Context, glob string) (int, error) {
	const scanCount = 256

	deleted := 0
	flush := func(batch []string) error {
		if len(batch) == 0 {
			return nil
		}
		n, err := a.inner.Client.Del(ctx, batch...).Result()
		deleted += int(n)
		return err
	}

	iter := a.inner.Client.Scan(ctx, 0, glob, scanCount).Iterator()
	batch := make([]string, 0, scanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanCount {
			if err := flush(batch); err != nil {
				return deleted, err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if err := flush(batch); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Ping verifies connectivity with redis
func (a *redisAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil redis adapter")
	}
	return a.inner.Ping(ctx)
}

func (a *redisAdapter) Close() error { return a.inner.Close() }
