package redis

import (
	"context"
	"fmt"

	"finance-tracker-backend/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Client is the single Redis connection shared by the analytics cache and the
// bot session store. It satisfies redis.Cmdable.
type Client struct {
	*redis.Client
}

// Open подключается к Redis и проверяет соединение
func Open(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("redis host is not configured")
	}

	c := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr(), err)
	}

	return &Client{Client: c}, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
