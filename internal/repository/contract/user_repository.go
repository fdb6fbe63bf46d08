package contract

import (
	"context"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateApiKeys writes the (already encrypted) provider keys. A nil
	// pointer leaves the stored key untouched.
	UpdateApiKeys(ctx context.Context, userId uuid.UUID, geminiKey, grokKey *string) error

	// IncrementAiUsage bumps the daily counter by one.
	IncrementAiUsage(ctx context.Context, userId uuid.UUID) error

	// ResetAiUsage zeroes the counter and stamps the reset time.
	ResetAiUsage(ctx context.Context, userId uuid.UUID, resetAt time.Time) error
}
