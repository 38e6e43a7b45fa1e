package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayCache remembers one-time webhook tokens in Redis so redelivered
// payloads can be told apart from fresh ones. Entries expire on their
// own; the cache never needs cleanup.
type ReplayCache struct {
	client *redis.Client
}

func NewReplayCache(addr string) (*ReplayCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ReplayCache{client: client}, nil
}

// Remember records a token with the given TTL. Returns true when the
// token was not yet present; SetNX makes the check-and-record a single
// atomic operation.
func (c *ReplayCache) Remember(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	fresh, err := c.client.SetNX(ctx, "token:"+token, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record token: %w", err)
	}
	return fresh, nil
}

func (c *ReplayCache) Close() error {
	return c.client.Close()
}
