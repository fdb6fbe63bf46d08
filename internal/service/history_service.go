package service

import (
	"context"
	"strings"
	"time"

	"ai-docchat-be/internal/apperror"
	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"

	"github.com/google/uuid"
)

// IHistoryService defines the session persistence interface
type IHistoryService interface {
	Save(ctx context.Context, userId uuid.UUID, request *dto.SaveHistoryRequest) (*dto.SaveHistoryResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error)
	Get(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.GetSessionResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, sessionId string) error
}

type historyService struct {
	uowFactory     unitofwork.RepositoryFactory
	summaries      *memory.SummaryCache
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewHistoryService(
	uowFactory unitofwork.RepositoryFactory,
	summaries *memory.SummaryCache,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IHistoryService {
	return &historyService{
		uowFactory:     uowFactory,
		summaries:      summaries,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Save replaces the session document with the filtered message list.
// The response always carries a fresh session identifier for the
// client's next conversation, whether or not anything was written.
func (hs *historyService) Save(ctx context.Context, userId uuid.UUID, request *dto.SaveHistoryRequest) (*dto.SaveHistoryResponse, error) {
	if strings.TrimSpace(request.SessionId) == "" {
		return nil, apperror.NewInvalidRequest("Session ID is required.")
	}

	newSessionId := uuid.New().String()

	valid := filterValidMessages(request.Messages)
	if len(valid) == 0 {
		hs.logger.Info("HistoryService", "No valid messages, skipping write", map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": request.SessionId,
		})
		return &dto.SaveHistoryResponse{SavedSessionId: nil, NewSessionId: newSessionId}, nil
	}

	uow := hs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: request.SessionId,
		Messages:  valid,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uow.ChatSessionRepository().Upsert(ctx, session); err != nil {
		return nil, apperror.NewPersistence("Failed to save chat history.", err)
	}

	hs.summaries.Invalidate(userId.String())

	hs.publishEvent(ctx, events.TypeChatSessionSaved, map[string]interface{}{
		"user_id":       userId.String(),
		"session_id":    request.SessionId,
		"message_count": len(valid),
	})

	saved := request.SessionId
	return &dto.SaveHistoryResponse{SavedSessionId: &saved, NewSessionId: newSessionId}, nil
}

// List returns the user's sessions newest-first as lightweight summaries.
func (hs *historyService) List(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error) {
	if cached, found := hs.summaries.Get(userId.String()); found {
		return cached, nil
	}

	uow := hs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: constant.SessionListLimit},
	)
	if err != nil {
		return nil, apperror.NewPersistence("Failed to list chat sessions.", err)
	}

	summaries := make([]*dto.SessionSummaryResponse, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, &dto.SessionSummaryResponse{
			SessionId:    s.SessionId,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: len(s.Messages),
			Preview:      derivePreview(s.Messages),
		})
	}

	hs.summaries.Save(userId.String(), summaries)

	return summaries, nil
}

// Get returns the full message list for one owned session.
func (hs *historyService) Get(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.GetSessionResponse, error) {
	uow := hs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.BySessionKey{SessionID: sessionId},
	)
	if err != nil {
		return nil, apperror.NewPersistence("Failed to load chat session.", err)
	}
	if sess == nil {
		return nil, apperror.NewNotFound("Chat session not found or access denied.")
	}

	return &dto.GetSessionResponse{
		SessionId: sess.SessionId,
		Messages:  toMessageDTOs(sess.Messages),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}, nil
}

// Delete removes one owned session. The ownership check and the delete
// are a single statement, so a row belonging to another user reads as
// not-found rather than forbidden.
func (hs *historyService) Delete(ctx context.Context, userId uuid.UUID, sessionId string) error {
	uow := hs.uowFactory.NewUnitOfWork(ctx)

	deleted, err := uow.ChatSessionRepository().DeleteByUserAndSession(ctx, userId, sessionId)
	if err != nil {
		return apperror.NewPersistence("Failed to delete chat session.", err)
	}
	if !deleted {
		return apperror.NewNotFound("Session not found or you do not have permission to delete it.")
	}

	hs.summaries.Invalidate(userId.String())

	hs.publishEvent(ctx, events.TypeChatSessionDeleted, map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId,
	})

	return nil
}

func (hs *historyService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if hs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := hs.eventPublisher.Publish(ctx, evt); err != nil {
		hs.logger.Warn("HistoryService", "Failed to publish session event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

// filterValidMessages keeps only persistable messages: a role, a first
// part with text, and a timestamp. References and thinking survive only
// on model messages.
func filterValidMessages(messages []dto.MessageDTO) []entity.Message {
	valid := make([]entity.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "" || len(m.Parts) == 0 || m.Parts[0].Text == "" || m.Timestamp.IsZero() {
			continue
		}

		parts := make([]entity.MessagePart, 0, len(m.Parts))
		for _, p := range m.Parts {
			parts = append(parts, entity.MessagePart{Text: p.Text})
		}

		msg := entity.Message{
			Role:      m.Role,
			Parts:     parts,
			Timestamp: m.Timestamp,
		}
		if m.Role == constant.ChatMessageRoleModel {
			msg.References = m.References
			msg.Thinking = m.Thinking
		}
		valid = append(valid, msg)
	}
	return valid
}

// derivePreview titles a session from its first user message, cut at
// the preview length. The ellipsis is appended whenever the cut fills
// the full length, so an exactly-75-char message also gets one.
func derivePreview(messages []entity.Message) string {
	for _, m := range messages {
		if m.Role != constant.ChatMessageRoleUser {
			continue
		}
		if len(m.Parts) == 0 || m.Parts[0].Text == "" {
			break
		}
		runes := []rune(m.Parts[0].Text)
		if len(runes) > constant.SessionPreviewLength {
			runes = runes[:constant.SessionPreviewLength]
		}
		preview := string(runes)
		if len(runes) == constant.SessionPreviewLength {
			preview += constant.SessionPreviewEllipsis
		}
		return preview
	}
	return constant.SessionPreviewFallback
}

func toMessageDTOs(messages []entity.Message) []dto.MessageDTO {
	out := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		parts := make([]dto.MessagePartDTO, 0, len(m.Parts))
		for _, p := range m.Parts {
			parts = append(parts, dto.MessagePartDTO{Text: p.Text})
		}
		out = append(out, dto.MessageDTO{
			Role:       m.Role,
			Parts:      parts,
			Timestamp:  m.Timestamp,
			References: m.References,
			Thinking:   m.Thinking,
		})
	}
	return out
}
