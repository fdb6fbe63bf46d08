package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the already-resolved identity this service works with. The
// provider API keys are stored encrypted; the credential resolver is the
// only reader and decrypts them per turn.
type User struct {
	Id       uuid.UUID
	Email    string
	FullName string

	GeminiApiKey *string // encrypted, nil when never configured
	GrokApiKey   *string // encrypted, nil when never configured

	AiDailyUsage          int
	AiDailyUsageLastReset time.Time
	AiDailyLimitOverride  *int // Nullable override

	CreatedAt time.Time
	UpdatedAt time.Time
}
