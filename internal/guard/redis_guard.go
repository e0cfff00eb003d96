package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

const keyPrefix = "devconnector:guard:"

// ErrNotHeld means the key expired or was taken over before Release.
var ErrNotHeld = errors.New("guard no longer held")

var releaseScript = redisv9.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard hands out short-lived exclusive keys. A key that is never
// released expires after ttl, so a crashed request cannot block its
// resource for longer than that.
type RedisGuard struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redisv9.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisGuard{
		client: client,
		ttl:    ttl,
	}
}

// Acquire stores a fresh token under key. The token must be passed back to
// Release.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key(key), token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis acquire guard failed: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release deletes key only while it still holds token.
func (g *RedisGuard) Release(ctx context.Context, key, token string) error {
	deleted, err := releaseScript.Run(ctx, g.client, []string{g.key(key)}, token).Int64()
	if err != nil {
		return fmt.Errorf("redis release guard failed: %w", err)
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}

func (g *RedisGuard) key(key string) string {
	return keyPrefix + key
}
