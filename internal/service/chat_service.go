package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-docchat-be/internal/apperror"
	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/crypto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/genai"

	"github.com/google/uuid"
)

// IChatService defines the chat orchestration interface
type IChatService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, request *dto.ChatMessageRequest) (*dto.ChatMessageReply, error)
	UpdateCredentials(ctx context.Context, userId uuid.UUID, request *dto.UpdateCredentialsRequest) error
}

// chatService coordinates one generation turn: quota check, mode
// selection, credential resolution, the generation call, and the reply
// envelope. It never writes chat history; persistence is the client's
// explicit follow-up call.
type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	genClient        genai.GenerationClient
	modeSelector     *ModeSelector
	credResolver     *CredentialResolver
	usageGuard       *UsageGuard
	publisherService IPublisherService
	cipher           *crypto.Cipher
	credCache        *memory.CredentialCache
	defaultProvider  string
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	genClient genai.GenerationClient,
	modeSelector *ModeSelector,
	credResolver *CredentialResolver,
	usageGuard *UsageGuard,
	publisherService IPublisherService,
	cipher *crypto.Cipher,
	credCache *memory.CredentialCache,
	defaultProvider string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		genClient:        genClient,
		modeSelector:     modeSelector,
		credResolver:     credResolver,
		usageGuard:       usageGuard,
		publisherService: publisherService,
		cipher:           cipher,
		credCache:        credCache,
		defaultProvider:  defaultProvider,
		logger:           log,
	}
}

// SendMessage processes one user turn and returns the model reply.
func (cs *chatService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.ChatMessageRequest) (*dto.ChatMessageReply, error) {
	message := strings.TrimSpace(request.Message)
	if message == "" {
		return nil, apperror.NewInvalidRequest("Message text is required.")
	}
	if strings.TrimSpace(request.SessionId) == "" {
		return nil, apperror.NewInvalidRequest("Session ID is required.")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.NewPersistence("Failed to load user account.", err)
	}
	if user == nil {
		return nil, apperror.NewNotFound("User account not found.")
	}

	if err := cs.usageGuard.Verify(ctx, uow, user); err != nil {
		return nil, err
	}

	provider := request.LlmProvider
	if provider == "" {
		provider = cs.defaultProvider
	}

	performRag := cs.modeSelector.Effective(request.SessionId, request.SystemPrompt, len(request.History), request.IsRagEnabled)

	bundle, err := cs.credResolver.Resolve(user, provider)
	if err != nil {
		return nil, err
	}

	enableMultiQuery := true
	if request.EnableMultiQuery != nil {
		enableMultiQuery = *request.EnableMultiQuery
	}

	var modelName *string
	if request.LlmModelName != "" {
		modelName = &request.LlmModelName
	}

	history := make([]genai.HistoryMessage, 0, len(request.History))
	for _, m := range request.History {
		parts := make([]genai.MessagePart, 0, len(m.Parts))
		for _, p := range m.Parts {
			parts = append(parts, genai.MessagePart{Text: p.Text})
		}
		history = append(history, genai.HistoryMessage{Role: m.Role, Parts: parts})
	}

	cs.logger.Info("ChatService", "Dispatching generation request", map[string]interface{}{
		"user_id":      userId.String(),
		"session_id":   request.SessionId,
		"llm_provider": provider,
		"perform_rag":  performRag,
		"history_len":  len(request.History),
	})

	result, err := cs.genClient.GenerateChatResponse(ctx, &genai.GenerateRequest{
		UserId:           userId.String(),
		Query:            message,
		ChatHistory:      history,
		LlmProvider:      provider,
		LlmModelName:     modelName,
		SystemPrompt:     request.SystemPrompt,
		PerformRag:       performRag,
		EnableMultiQuery: enableMultiQuery,
		ApiKeys: genai.ApiKeys{
			Gemini: bundle.GeminiKey,
			Grok:   bundle.GrokKey,
		},
	})
	if err != nil {
		return nil, err
	}

	replyText := result.Text
	if replyText == "" {
		replyText = constant.EmptyReplyPlaceholder
	}

	references := result.References
	if references == nil {
		references = []map[string]interface{}{}
	}

	thinking := result.Thinking
	if thinking != nil && *thinking == "" {
		thinking = nil
	}

	cs.publishTurnCompleted(ctx, userId, request.SessionId, provider, performRag)

	return &dto.ChatMessageReply{
		Reply: dto.MessageDTO{
			Role:       constant.ChatMessageRoleModel,
			Parts:      []dto.MessagePartDTO{{Text: replyText}},
			Timestamp:  time.Now(),
			References: references,
			Thinking:   thinking,
		},
	}, nil
}

// publishTurnCompleted hands the usage bump to the async consumer. A
// publish failure only loses one counter tick, so it is logged and
// swallowed rather than failing the turn.
func (cs *chatService) publishTurnCompleted(ctx context.Context, userId uuid.UUID, sessionId, provider string, performedRag bool) {
	payload := dto.ChatTurnCompletedMessage{
		UserId:       userId,
		SessionId:    sessionId,
		LlmProvider:  provider,
		PerformedRag: performedRag,
	}

	msgJson, err := json.Marshal(payload)
	if err != nil {
		cs.logger.Warn("ChatService", "Failed to marshal turn-completed message", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return
	}

	if err := cs.publisherService.Publish(ctx, msgJson); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish turn-completed message", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
}

// UpdateCredentials encrypts and stores the supplied provider keys. A
// nil field is left untouched; an empty string clears the stored key.
func (cs *chatService) UpdateCredentials(ctx context.Context, userId uuid.UUID, request *dto.UpdateCredentialsRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	geminiKey, err := cs.encryptKey(request.GeminiApiKey)
	if err != nil {
		return err
	}
	grokKey, err := cs.encryptKey(request.GrokApiKey)
	if err != nil {
		return err
	}

	if err := uow.UserRepository().UpdateApiKeys(ctx, userId, geminiKey, grokKey); err != nil {
		return apperror.NewPersistence("Failed to update API credentials.", err)
	}

	cs.credCache.Invalidate(userId.String())

	cs.logger.Info("ChatService", "Updated stored API credentials", map[string]interface{}{
		"user_id":        userId.String(),
		"gemini_touched": request.GeminiApiKey != nil,
		"grok_touched":   request.GrokApiKey != nil,
	})

	return nil
}

func (cs *chatService) encryptKey(plain *string) (*string, error) {
	if plain == nil {
		return nil, nil
	}
	if *plain == "" {
		// Empty string passes through; the repository maps it to NULL.
		empty := ""
		return &empty, nil
	}
	enc, err := cs.cipher.Encrypt(*plain)
	if err != nil {
		return nil, apperror.NewInternal("Failed to encrypt API credentials.", err)
	}
	return &enc, nil
}
