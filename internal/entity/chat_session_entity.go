package entity

import (
	"time"

	"github.com/google/uuid"
)

// MessagePart is one content part. Only the first part's text is
// required to be non-empty for the message to be valid.
type MessagePart struct {
	Text string `json:"text"`
}

// Message is one persisted conversation message. References and
// thinking are carried only for role=model.
type Message struct {
	Role       string                   `json:"role"`
	Parts      []MessagePart            `json:"parts"`
	Timestamp  time.Time                `json:"timestamp"`
	References []map[string]interface{} `json:"references,omitempty"`
	Thinking   *string                  `json:"thinking,omitempty"`
}

// ChatSession is the durable conversation document, unique per
// (UserId, SessionId). Saves replace Messages wholesale.
type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	SessionId string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}
