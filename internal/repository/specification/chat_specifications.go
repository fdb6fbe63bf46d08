package specification

import (
	"gorm.io/gorm"
)

// BySessionKey filters by the caller-supplied opaque session identifier.
// Always pair with UserOwnedBy; the session key alone is not unique
// across users.
type BySessionKey struct {
	SessionID string
}

func (s BySessionKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}
