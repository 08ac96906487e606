package redisinfra

import (
	"context"
	"errors"
	"time"

	"github.com/event-locator/internal/domain"
	"github.com/redis/go-redis/v9"
)

// KV exposes the string and list primitives the notification store needs.
// A missing key on Get is reported as domain.ErrNotFound.
type KV struct {
	client redis.Cmdable
}

func NewKV(client redis.Cmdable) *KV {
	return &KV{client: client}
}

func (k *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return k.client.Set(ctx, key, value, ttl).Err()
}

func (k *KV) Get(ctx context.Context, key string) (string, error) {
	v, err := k.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	return v, err
}

func (k *KV) Del(ctx context.Context, key string) error {
	return k.client.Del(ctx, key).Err()
}

func (k *KV) LPush(ctx context.Context, key, value string) error {
	return k.client.LPush(ctx, key, value).Err()
}

func (k *KV) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return k.client.LRange(ctx, key, start, stop).Result()
}

func (k *KV) LTrim(ctx context.Context, key string, start, stop int64) error {
	return k.client.LTrim(ctx, key, start, stop).Err()
}

func (k *KV) LRem(ctx context.Context, key string, count int64, value string) error {
	return k.client.LRem(ctx, key, count, value).Err()
}

func (k *KV) LLen(ctx context.Context, key string) (int64, error) {
	return k.client.LLen(ctx, key).Result()
}

// PushCapped prepends value to the list at key and trims it to the newest
// capacity entries inside a single MULTI/EXEC, so the list never stays over
// the cap between the two commands.
func (k *KV) PushCapped(ctx context.Context, key, value string, capacity int64) error {
	_, err := k.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, value)
		p.LTrim(ctx, key, 0, capacity-1)
		return nil
	})
	return err
}
