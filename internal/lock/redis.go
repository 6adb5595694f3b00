package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/redis/go-redis/v9"
)

var ErrNoSessionKey = errors.New("session has no cache id")

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard serialises cart creation per browser across requests and
// replicas. The winner publishes the created cart id under a hand-off key so
// losers can adopt it instead of creating their own.
type RedisGuard struct {
	client     *redis.Client
	ttl        time.Duration
	handoffTTL time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		client:     client,
		ttl:        ttl,
		handoffTTL: 2 * ttl,
	}
}

func (g *RedisGuard) Held(ctx context.Context, s *session.Session) (bool, error) {
	key := s.Key()
	if key == "" {
		return false, ErrNoSessionKey
	}
	n, err := g.client.Exists(ctx, lockKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

// Acquire takes the lock with SET NX PX. The lock cookie mirrors the token for
// clients that inspect it.
func (g *RedisGuard) Acquire(ctx context.Context, s *session.Session, token string) (bool, error) {
	key := s.Key()
	if key == "" {
		return false, ErrNoSessionKey
	}
	ok, err := g.client.SetNX(ctx, lockKey(key), token, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	if ok {
		s.SetCreationLock(token)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, s *session.Session, token string) error {
	s.RemoveCreationLock()
	key := s.Key()
	if key == "" {
		return ErrNoSessionKey
	}
	if err := releaseScript.Run(ctx, g.client, []string{lockKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("release lock failed: %w", err)
	}
	return nil
}

func (g *RedisGuard) Publish(ctx context.Context, s *session.Session, cartID string) error {
	key := s.Key()
	if key == "" {
		return ErrNoSessionKey
	}
	if err := g.client.Set(ctx, handoffKey(key), cartID, g.handoffTTL).Err(); err != nil {
		return fmt.Errorf("publish cart failed: %w", err)
	}
	return nil
}

// Lookup returns the cart id published by the lock holder, or "" when none.
func (g *RedisGuard) Lookup(ctx context.Context, s *session.Session) (string, error) {
	key := s.Key()
	if key == "" {
		return "", ErrNoSessionKey
	}
	cartID, err := g.client.Get(ctx, handoffKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return cartID, nil
}

func lockKey(sessionKey string) string {
	return fmt.Sprintf("storefront:cart-lock:%s", sessionKey)
}

func handoffKey(sessionKey string) string {
	return fmt.Sprintf("storefront:cart-handoff:%s", sessionKey)
}
