package service

import (
	"strings"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/pkg/logger"
)

// ModeSelector decides the effective retrieval flag for a turn. The
// knowledge-check flow has a rigid prompt contract; retrieved context
// would corrupt its opening exchange, so retrieval is forced off there
// no matter what the caller asked for.
type ModeSelector struct {
	logger logger.ILogger
}

func NewModeSelector(log logger.ILogger) *ModeSelector {
	return &ModeSelector{logger: log}
}

// Effective returns the retrieval flag to actually use. The override
// fires only on the first turn (empty history) of a knowledge check.
func (s *ModeSelector) Effective(sessionId, systemPrompt string, historyLen int, requested bool) bool {
	isKnowledgeCheckStart := strings.Contains(systemPrompt, constant.KnowledgeCheckIdentifier) && historyLen == 0
	if isKnowledgeCheckStart {
		s.logger.Info("ModeSelector", "Knowledge check start detected, forcing RAG off", map[string]interface{}{
			"session_id": sessionId,
		})
		return false
	}
	return requested
}
