package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nil is the sentinel returned by Get on a cache miss.
const Nil = redis.Nil

// Client is a thin wrapper over go-redis used for optional read-through
// caching. The service runs fine without it; callers hold a nil *Client when
// no Redis address is configured.
type Client struct {
	rdb *redis.Client
}

func NewClient(addr string) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func (c *Client) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *Client) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
