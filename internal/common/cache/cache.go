package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ft:"

// ErrCacheMiss возвращается, когда ключа нет в кэше
var ErrCacheMiss = errors.New("cache miss")

// CacheService stores JSON documents under the ft: namespace.
type CacheService struct {
	redisClient redis.Cmdable
}

func NewCacheService(redisClient redis.Cmdable) *CacheService {
	return &CacheService{redisClient: redisClient}
}

func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redisClient.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	// Битая запись считается промахом, ее перезапишет следующий Set
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrCacheMiss
	}
	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	return c.redisClient.Set(ctx, key, data, ttl).Err()
}

// AnalyticsKey возвращает ключ кэша аналитики аккаунта
func AnalyticsKey(userID int64) string {
	return fmt.Sprintf("%sanalytics:%d", keyPrefix, userID)
}

// InvalidateAccountCache сбрасывает все, что кэшируется на аккаунт
func (c *CacheService) InvalidateAccountCache(ctx context.Context, userID int64) error {
	if err := c.redisClient.Del(ctx, AnalyticsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate account %d: %w", userID, err)
	}
	return nil
}
