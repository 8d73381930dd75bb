package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/zhandosm/baraholka/internal/pkg/env"
	"github.com/zhandosm/baraholka/internal/pkg/token"
	"github.com/zhandosm/baraholka/internal/pkg/usercontext"
)

// NewRateLimiter builds the sliding-window limiter shared by all API
// groups. Counters live in Redis so limits hold across instances. The
// limit is advisory: requests racing past it by a small margin are
// acceptable.
func NewRateLimiter(max int, window time.Duration) fiber.Handler {
	storage := redis.New(redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     mustAtoi(env.GetEnv("CACHE_PORT", "6379"), 6379),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
	})

	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		Storage:           storage,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: limiterKey,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limit_exceeded",
				"message": "too many requests, try again later",
			})
		},
	})
}

// limiterKey buckets requests by user id when a valid bearer token is
// present and by IP otherwise. The limiter runs ahead of the auth
// middleware, so the token is parsed here directly; the revocation list
// is deliberately not consulted for a counter key.
func limiterKey(c *fiber.Ctx) string {
	if uc := usercontext.Get(c); uc.IsAuthenticated() {
		return "u:" + strconv.FormatUint(uint64(uc.UserID), 10)
	}
	if raw := bearerToken(c); raw != "" {
		if claims, err := token.ParseAccessToken(raw); err == nil {
			return "u:" + strconv.FormatUint(uint64(claims.UserID), 10)
		}
	}
	return "ip:" + c.IP()
}

func mustAtoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
