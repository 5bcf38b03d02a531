package security

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// PaymentRateLimit throttles payment submission endpoints per client.
func (r *RateLimiter) PaymentRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: &redisStore{redis: r.redis, limit: 10, window: time.Minute},
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(429, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// AbuseGuard caps overall request frequency per IP across the API.
func (r *RateLimiter) AbuseGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			key := fmt.Sprintf("abuse:%s", ip)

			count, err := r.redis.Incr(context.Background(), key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(context.Background(), key, time.Minute)
				}
				if count > 120 { // Max 120 requests per minute
					return c.JSON(429, map[string]string{
						"error": "Too many requests",
					})
				}
			}

			return next(c)
		}
	}
}

// redisStore backs echo's rate limiter with a counter per identifier.
type redisStore struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func (s *redisStore) Allow(identifier string) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf("ratelimit:%s", identifier)

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		// Fail open when redis is unavailable.
		return true, nil
	}
	if count == 1 {
		s.redis.Expire(ctx, key, s.window)
	}

	return count <= s.limit, nil
}
