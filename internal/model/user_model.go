package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email    string    `gorm:"type:text;not null;uniqueIndex"`
	FullName string    `gorm:"type:text;not null"`

	GeminiApiKey *string `gorm:"type:text"` // encrypted at rest
	GrokApiKey   *string `gorm:"type:text"` // encrypted at rest

	AiDailyUsage          int       `gorm:"default:0"`
	AiDailyUsageLastReset time.Time `gorm:"autoCreateTime"`
	AiDailyLimitOverride  *int

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
