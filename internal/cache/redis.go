package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisStore) Get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err = json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

// Set stores v for the base TTL plus jitter and registers the key under every
// non-empty tag.
func (r *RedisStore) Set(ctx context.Context, key string, v any, tags ...string) error {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return r.SetTTL(ctx, key, v, r.baseTTL+jitter, tags...)
}

// SetTTL is Set with an explicit lifetime, for data the backend changes
// without telling the storefront.
func (r *RedisStore) SetTTL(ctx context.Context, key string, v any, ttl time.Duration, tags ...string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, cacheKey(key), data, ttl)
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		pipe.SAdd(ctx, tagKey(tag), cacheKey(key))
		pipe.Expire(ctx, tagKey(tag), ttl)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Revalidate drops every entry registered under the given tags and announces
// each tag on RevalidateChannel. Empty tags are skipped.
func (r *RedisStore) Revalidate(ctx context.Context, tags ...string) error {
	var errs []error
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if err := r.revalidate(ctx, tag); err != nil {
			errs = append(errs, fmt.Errorf("revalidate %s: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

func (r *RedisStore) revalidate(ctx context.Context, tag string) error {
	keys, err := r.client.SMembers(ctx, tagKey(tag)).Result()
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, tagKey(tag))
	pipe.Publish(ctx, RevalidateChannel, tag)
	_, err = pipe.Exec(ctx)
	return err
}

func cacheKey(key string) string {
	return fmt.Sprintf("storefront:cache:%s", key)
}

func tagKey(tag string) string {
	return fmt.Sprintf("storefront:tag:%s", tag)
}
