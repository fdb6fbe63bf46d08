package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware applies a fixed per-user window on expensive
// routes (the generation call is the costly hop). A nil client disables
// limiting so the service degrades gracefully when redis is down.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if rdb == nil || limit <= 0 {
			return ctx.Next()
		}

		userId, _ := ctx.Locals("user_id").(string)
		if userId == "" {
			return ctx.Next()
		}

		key := fmt.Sprintf("ratelimit:chat:%s", userId)
		count, err := rdb.Incr(ctx.Context(), key).Result()
		if err != nil {
			// Redis outage must not take chat down with it.
			return ctx.Next()
		}
		if count == 1 {
			rdb.Expire(ctx.Context(), key, window)
		}

		if count > int64(limit) {
			return ctx.Status(fiber.StatusTooManyRequests).
				JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many chat requests, slow down."))
		}

		return ctx.Next()
	}
}
