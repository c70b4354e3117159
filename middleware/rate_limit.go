package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"mailprobe/config"
	"mailprobe/utils"
)

// RateLimiter throttles API clients per key prefix (per IP for requests
// that somehow reach here unauthenticated).
func RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.AppConfig.RateLimitMax,
		Expiration: config.AppConfig.RateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			if prefix, ok := c.Locals("apiKeyPrefix").(string); ok {
				return utils.GenerateRateLimitKey(prefix, c.Route().Path)
			}
			return utils.GenerateRateLimitKey(c.IP(), c.Route().Path)
		},
		LimitReached: func(c *fiber.Ctx) error {
			utils.LogEvent("rate_limit_hit", map[string]interface{}{
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get("User-Agent"),
			})

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests. Please slow down.",
				"retry_after": config.AppConfig.RateLimitWindow.String(),
			})
		},
		Storage: SharedStorage(),
	})
}

var (
	storageOnce sync.Once
	storage     fiber.Storage
)

// SharedStorage returns the process-wide fiber.Storage: Redis when
// enabled, otherwise nil so the limiter falls back to its in-memory
// store. The verdict cache uses the same storage.
func SharedStorage() fiber.Storage {
	storageOnce.Do(func() {
		if config.AppConfig.Redis.Enabled {
			storage = NewRedisStorage(config.AppConfig.Redis)
		}
	})
	return storage
}

// RedisStorage implements fiber.Storage for Redis
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(config config.RedisConfig) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     config.Address,
			Password: config.Password,
			DB:       config.DB,
		}),
	}
}

func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return r.client.Set(context.Background(), key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

func (r *RedisStorage) Reset() error {
	return r.client.FlushDB(context.Background()).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
