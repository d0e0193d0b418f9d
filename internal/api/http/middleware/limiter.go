package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"
)

// NewLimiterWithRedis shares the sliding window across API instances.
func NewLimiterWithRedis(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	if limit <= 0 {
		limit = 20
	}
	if window <= 0 {
		window = 30 * time.Second
	}
	storage := fiberredis.NewFromConnection(rdb)
	return limiter.New(limiter.Config{
		Storage: storage,

		// sliding window
		Max:               limit,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// LoginLimiter throttles credential attempts per client IP in process memory.
// The account lockout in the auth service covers distributed attacks.
func LoginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many login attempts"})
		},
	})
}
