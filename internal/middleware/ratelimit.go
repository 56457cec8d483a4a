package middleware

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"bookmarket/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

var errNoLimiterStore = errors.New("rate limit store not configured")

// limitingEnabled is false under APP_ENV test and development (the default).
func limitingEnabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return false
	}
	return true
}

func limiterKey(bucket, subject string) string {
	return "rl:" + bucket + ":" + subject
}

// CheckRateLimit counts one hit for subject in bucket and reports whether the
// fixed window still has room.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, bucket, subject string, limit int, window time.Duration) (bool, error) {
	if !limitingEnabled() {
		return true, nil
	}
	if rdb == nil {
		return false, errNoLimiterStore
	}

	key := limiterKey(bucket, subject)
	var hits *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		hits = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return hits.Val() <= int64(limit), nil
}

// RateLimit allows limit requests per window for each caller, keyed by user
// ID when authenticated and by client IP otherwise. The bucket defaults to the
// request path. Redis outages let traffic through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, bucket ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, bucket...)
}

// RateLimitWithPolicy is RateLimit with an explicit outage policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, bucket ...string) fiber.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(c *fiber.Ctx) error {
		name := c.Path()
		if len(bucket) > 0 {
			name = bucket[0]
		}
		subject := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			subject = "user:" + uid
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, name, subject, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limiter unavailable",
				"bucket", name, "error", err.Error())
			if policy == FailClosed {
				return models.RespondWithError(c, fiber.StatusServiceUnavailable,
					fiber.NewError(fiber.StatusServiceUnavailable, "Service temporarily unavailable"))
			}
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later"))
		}
		return c.Next()
	}
}
