package mapper

import (
	"encoding/json"
	"fmt"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) (*entity.ChatSession, error) {
	if s == nil {
		return nil, nil
	}

	var messages []entity.Message
	if len(s.Messages) > 0 {
		if err := json.Unmarshal(s.Messages, &messages); err != nil {
			return nil, fmt.Errorf("unmarshal session messages: %w", err)
		}
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		SessionId: s.SessionId,
		Messages:  messages,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) (*model.ChatSession, error) {
	if s == nil {
		return nil, nil
	}

	messages := s.Messages
	if messages == nil {
		messages = []entity.Message{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal session messages: %w", err)
	}

	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		SessionId: s.SessionId,
		Messages:  datatypes.JSON(raw),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}
