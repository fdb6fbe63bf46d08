package contract

import (
	"context"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	// Upsert inserts or fully replaces the session document keyed on
	// (user_id, session_id) in a single atomic statement.
	Upsert(ctx context.Context, session *entity.ChatSession) error

	// DeleteByUserAndSession removes the row matching BOTH identifiers in
	// one statement and reports whether a row was removed. No separate
	// existence check, so a concurrent save/delete pair resolves cleanly.
	DeleteByUserAndSession(ctx context.Context, userId uuid.UUID, sessionId string) (bool, error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
