package service

import (
	"context"
	"time"

	"ai-docchat-be/internal/apperror"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/unitofwork"
)

// UsageGuard enforces the rolling 24h generation quota. The window is
// anchored on the last reset stamp, not calendar days.
type UsageGuard struct {
	dailyLimit int
	logger     logger.ILogger
}

func NewUsageGuard(dailyLimit int, log logger.ILogger) *UsageGuard {
	return &UsageGuard{dailyLimit: dailyLimit, logger: log}
}

// Verify resets an expired window, then rejects the turn with a
// LimitExceededError once the counter hits the limit. A per-user
// override takes precedence over the configured default; a limit of
// zero or less means unmetered.
func (g *UsageGuard) Verify(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) error {
	limit := g.dailyLimit
	if user.AiDailyLimitOverride != nil {
		limit = *user.AiDailyLimitOverride
	}
	if limit <= 0 {
		return nil
	}

	now := time.Now()
	resetAt := user.AiDailyUsageLastReset.Add(24 * time.Hour)
	if now.After(resetAt) {
		if err := uow.UserRepository().ResetAiUsage(ctx, user.Id, now); err != nil {
			return apperror.NewPersistence("Failed to reset AI usage window.", err)
		}
		user.AiDailyUsage = 0
		user.AiDailyUsageLastReset = now
		resetAt = now.Add(24 * time.Hour)
	}

	if user.AiDailyUsage >= limit {
		g.logger.Warn("UsageGuard", "Daily AI usage limit reached", map[string]interface{}{
			"user_id": user.Id.String(),
			"used":    user.AiDailyUsage,
			"limit":   limit,
		})
		return &dto.LimitExceededError{
			Limit:      limit,
			Used:       user.AiDailyUsage,
			ResetAfter: resetAt,
		}
	}

	return nil
}
