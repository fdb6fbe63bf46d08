package dto

import (
	"time"

	"github.com/google/uuid"
)

// MessagePartDTO is one content part of a chat message. The first part
// must carry non-empty text for the message to be persistable.
type MessagePartDTO struct {
	Text string `json:"text"`
}

// MessageDTO mirrors the client-side message envelope. References and
// thinking are only meaningful on model messages.
type MessageDTO struct {
	Role       string                   `json:"role"`
	Parts      []MessagePartDTO         `json:"parts"`
	Timestamp  time.Time                `json:"timestamp"`
	References []map[string]interface{} `json:"references,omitempty"`
	Thinking   *string                  `json:"thinking,omitempty"`
}

// ChatMessageRequest is one user turn. History must be a JSON array;
// a non-array body fails parsing at the boundary.
type ChatMessageRequest struct {
	Message          string       `json:"message" validate:"required"`
	History          []MessageDTO `json:"history"`
	SessionId        string       `json:"sessionId" validate:"required"`
	SystemPrompt     string       `json:"systemPrompt"`
	IsRagEnabled     bool         `json:"isRagEnabled"`
	LlmProvider      string       `json:"llmProvider"`
	LlmModelName     string       `json:"llmModelName"`
	EnableMultiQuery *bool        `json:"enableMultiQuery"` // nil means true
}

type ChatMessageReply struct {
	Reply MessageDTO `json:"reply"`
}

type SaveHistoryRequest struct {
	SessionId string       `json:"sessionId" validate:"required"`
	Messages  []MessageDTO `json:"messages"`
}

// SaveHistoryResponse always carries a fresh NewSessionId for the caller
// to start its next conversation with. SavedSessionId is nil when nothing
// valid was persisted.
type SaveHistoryResponse struct {
	SavedSessionId *string `json:"savedSessionId"`
	NewSessionId   string  `json:"newSessionId"`
}

type SessionSummaryResponse struct {
	SessionId    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
	Preview      string    `json:"preview"`
}

type GetSessionResponse struct {
	SessionId string       `json:"sessionId"`
	Messages  []MessageDTO `json:"messages"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type UpdateCredentialsRequest struct {
	GeminiApiKey *string `json:"geminiApiKey"`
	GrokApiKey   *string `json:"grokApiKey"`
}

// ChatTurnCompletedMessage is the async payload published after each
// successful generation turn; the consumer bumps the usage counter.
type ChatTurnCompletedMessage struct {
	UserId       uuid.UUID `json:"user_id"`
	SessionId    string    `json:"session_id"`
	LlmProvider  string    `json:"llm_provider"`
	PerformedRag bool      `json:"performed_rag"`
}

// --- Limit Exceeded Error Types ---

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily AI usage limit exceeded"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}
