package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-docchat-be/internal/apperror"
	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type historyFixture struct {
	service   IHistoryService
	sessions  *fakeChatSessionRepo
	summaries *memory.SummaryCache
	userId    uuid.UUID
}

func newHistoryFixture(t *testing.T) *historyFixture {
	t.Helper()

	factory, _, sessions := newFakeFactory()
	summaries := memory.NewSummaryCache()

	return &historyFixture{
		service:   NewHistoryService(factory, summaries, nil, noopLogger{}),
		sessions:  sessions,
		summaries: summaries,
		userId:    uuid.New(),
	}
}

func userMsg(text string) dto.MessageDTO {
	return dto.MessageDTO{
		Role:      constant.ChatMessageRoleUser,
		Parts:     []dto.MessagePartDTO{{Text: text}},
		Timestamp: time.Now(),
	}
}

func modelMsg(text string) dto.MessageDTO {
	thinking := "chain of thought"
	return dto.MessageDTO{
		Role:       constant.ChatMessageRoleModel,
		Parts:      []dto.MessagePartDTO{{Text: text}},
		Timestamp:  time.Now(),
		References: []map[string]interface{}{{"doc_id": "d1"}},
		Thinking:   &thinking,
	}
}

func TestSaveFiltersInvalidMessages(t *testing.T) {
	f := newHistoryFixture(t)

	req := &dto.SaveHistoryRequest{
		SessionId: "sess-1",
		Messages: []dto.MessageDTO{
			userMsg("keep me"),
			{Role: constant.ChatMessageRoleModel, Parts: []dto.MessagePartDTO{{Text: ""}}, Timestamp: time.Now()}, // empty text
			{Role: "", Parts: []dto.MessagePartDTO{{Text: "no role"}}, Timestamp: time.Now()},
			{Role: constant.ChatMessageRoleUser, Parts: nil, Timestamp: time.Now()}, // no parts
			{Role: constant.ChatMessageRoleUser, Parts: []dto.MessagePartDTO{{Text: "no timestamp"}}},
			modelMsg("keep me too"),
		},
	}

	res, err := f.service.Save(context.Background(), f.userId, req)
	assert.NoError(t, err)
	assert.NotNil(t, res.SavedSessionId)
	assert.Equal(t, "sess-1", *res.SavedSessionId)
	assert.Len(t, f.sessions.lastUpsert.Messages, 2)
	assert.Equal(t, "keep me", f.sessions.lastUpsert.Messages[0].Parts[0].Text)
	assert.Equal(t, "keep me too", f.sessions.lastUpsert.Messages[1].Parts[0].Text)
}

func TestSaveMintsFreshSessionId(t *testing.T) {
	f := newHistoryFixture(t)

	req := &dto.SaveHistoryRequest{SessionId: "sess-1", Messages: []dto.MessageDTO{userMsg("hi")}}

	res, err := f.service.Save(context.Background(), f.userId, req)
	assert.NoError(t, err)
	assert.NotEqual(t, "sess-1", res.NewSessionId)
	_, parseErr := uuid.Parse(res.NewSessionId)
	assert.NoError(t, parseErr)
}

func TestSaveNothingValidSkipsWrite(t *testing.T) {
	f := newHistoryFixture(t)

	req := &dto.SaveHistoryRequest{
		SessionId: "sess-1",
		Messages: []dto.MessageDTO{
			{Role: constant.ChatMessageRoleModel, Parts: []dto.MessagePartDTO{{Text: ""}}, Timestamp: time.Now()},
		},
	}

	res, err := f.service.Save(context.Background(), f.userId, req)
	assert.NoError(t, err)
	assert.Nil(t, res.SavedSessionId)
	assert.NotEmpty(t, res.NewSessionId)
	assert.Equal(t, 0, f.sessions.upsertCalls)
}

func TestSaveBlankSessionIdRejected(t *testing.T) {
	f := newHistoryFixture(t)

	_, err := f.service.Save(context.Background(), f.userId, &dto.SaveHistoryRequest{SessionId: "  "})
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestSaveStripsReferencesFromUserMessages(t *testing.T) {
	f := newHistoryFixture(t)

	thinking := "should be dropped"
	req := &dto.SaveHistoryRequest{
		SessionId: "sess-1",
		Messages: []dto.MessageDTO{
			{
				Role:       constant.ChatMessageRoleUser,
				Parts:      []dto.MessagePartDTO{{Text: "user with refs"}},
				Timestamp:  time.Now(),
				References: []map[string]interface{}{{"doc_id": "d1"}},
				Thinking:   &thinking,
			},
			modelMsg("model keeps extras"),
		},
	}

	_, err := f.service.Save(context.Background(), f.userId, req)
	assert.NoError(t, err)

	saved := f.sessions.lastUpsert.Messages
	assert.Nil(t, saved[0].References)
	assert.Nil(t, saved[0].Thinking)
	assert.NotNil(t, saved[1].References)
	assert.NotNil(t, saved[1].Thinking)
}

func TestSaveIsIdempotentPerSessionKey(t *testing.T) {
	f := newHistoryFixture(t)

	req := &dto.SaveHistoryRequest{SessionId: "sess-1", Messages: []dto.MessageDTO{userMsg("v1")}}
	_, err := f.service.Save(context.Background(), f.userId, req)
	assert.NoError(t, err)

	req.Messages = []dto.MessageDTO{userMsg("v1"), modelMsg("v2")}
	_, err = f.service.Save(context.Background(), f.userId, req)
	assert.NoError(t, err)

	assert.Len(t, f.sessions.sessions, 1, "same key must overwrite, not duplicate")
	assert.Len(t, f.sessions.lastUpsert.Messages, 2)
}

func TestListBuildsSummaries(t *testing.T) {
	f := newHistoryFixture(t)

	now := time.Now()
	f.sessions.findAllOut = []*entity.ChatSession{
		{
			SessionId: "sess-new",
			Messages: []entity.Message{
				{Role: constant.ChatMessageRoleModel, Parts: []entity.MessagePart{{Text: "welcome"}}, Timestamp: now},
				{Role: constant.ChatMessageRoleUser, Parts: []entity.MessagePart{{Text: "short question"}}, Timestamp: now},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			SessionId: "sess-old",
			Messages:  []entity.Message{},
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: now.Add(-time.Hour),
		},
	}

	summaries, err := f.service.List(context.Background(), f.userId)
	assert.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, "sess-new", summaries[0].SessionId)
	assert.Equal(t, 2, summaries[0].MessageCount)
	assert.Equal(t, "short question", summaries[0].Preview)
	assert.Equal(t, constant.SessionPreviewFallback, summaries[1].Preview)
}

func TestListQueriesBoundedWindow(t *testing.T) {
	f := newHistoryFixture(t)
	f.sessions.findAllOut = []*entity.ChatSession{}

	_, err := f.service.List(context.Background(), f.userId)
	assert.NoError(t, err)

	var page *specification.Pagination
	for _, s := range f.sessions.findAllSpecs {
		if p, ok := s.(specification.Pagination); ok {
			page = &p
		}
	}
	assert.NotNil(t, page, "listing must bound the result window")
	assert.Equal(t, constant.SessionListLimit, page.Limit)
}

func TestListServesFromCache(t *testing.T) {
	f := newHistoryFixture(t)
	f.sessions.findAllOut = []*entity.ChatSession{}

	_, err := f.service.List(context.Background(), f.userId)
	assert.NoError(t, err)
	_, err = f.service.List(context.Background(), f.userId)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.sessions.findAllHits)
}

func TestSaveInvalidatesListCache(t *testing.T) {
	f := newHistoryFixture(t)
	f.sessions.findAllOut = []*entity.ChatSession{}

	_, err := f.service.List(context.Background(), f.userId)
	assert.NoError(t, err)

	_, err = f.service.Save(context.Background(), f.userId,
		&dto.SaveHistoryRequest{SessionId: "sess-1", Messages: []dto.MessageDTO{userMsg("hi")}})
	assert.NoError(t, err)

	_, err = f.service.List(context.Background(), f.userId)
	assert.NoError(t, err)
	assert.Equal(t, 2, f.sessions.findAllHits)
}

func TestGetReturnsOwnedSession(t *testing.T) {
	f := newHistoryFixture(t)

	_, err := f.service.Save(context.Background(), f.userId,
		&dto.SaveHistoryRequest{SessionId: "sess-1", Messages: []dto.MessageDTO{userMsg("hello"), modelMsg("hi")}})
	assert.NoError(t, err)

	res, err := f.service.Get(context.Background(), f.userId, "sess-1")
	assert.NoError(t, err)
	assert.Equal(t, "sess-1", res.SessionId)
	assert.Len(t, res.Messages, 2)
	assert.Equal(t, "hello", res.Messages[0].Parts[0].Text)
}

func TestGetCrossUserReadsAsNotFound(t *testing.T) {
	f := newHistoryFixture(t)

	_, err := f.service.Save(context.Background(), f.userId,
		&dto.SaveHistoryRequest{SessionId: "sess-1", Messages: []dto.MessageDTO{userMsg("mine")}})
	assert.NoError(t, err)

	otherUser := uuid.New()
	_, err = f.service.Get(context.Background(), otherUser, "sess-1")
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestDeleteRemovesSession(t *testing.T) {
	f := newHistoryFixture(t)

	_, err := f.service.Save(context.Background(), f.userId,
		&dto.SaveHistoryRequest{SessionId: "sess-1", Messages: []dto.MessageDTO{userMsg("bye")}})
	assert.NoError(t, err)

	assert.NoError(t, f.service.Delete(context.Background(), f.userId, "sess-1"))

	_, err = f.service.Get(context.Background(), f.userId, "sess-1")
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestDeleteMissingSessionIsNotFound(t *testing.T) {
	f := newHistoryFixture(t)

	err := f.service.Delete(context.Background(), f.userId, "never-existed")
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestDerivePreview(t *testing.T) {
	long := strings.Repeat("a", 80)
	exact := strings.Repeat("b", 75)
	short := "short text"

	tests := []struct {
		name     string
		messages []entity.Message
		want     string
	}{
		{
			name:     "no messages",
			messages: nil,
			want:     constant.SessionPreviewFallback,
		},
		{
			name: "model only",
			messages: []entity.Message{
				{Role: constant.ChatMessageRoleModel, Parts: []entity.MessagePart{{Text: "welcome"}}},
			},
			want: constant.SessionPreviewFallback,
		},
		{
			name: "short user message untouched",
			messages: []entity.Message{
				{Role: constant.ChatMessageRoleUser, Parts: []entity.MessagePart{{Text: short}}},
			},
			want: short,
		},
		{
			name: "long user message truncated",
			messages: []entity.Message{
				{Role: constant.ChatMessageRoleUser, Parts: []entity.MessagePart{{Text: long}}},
			},
			want: strings.Repeat("a", 75) + "...",
		},
		{
			name: "exactly 75 chars still gets ellipsis",
			messages: []entity.Message{
				{Role: constant.ChatMessageRoleUser, Parts: []entity.MessagePart{{Text: exact}}},
			},
			want: exact + "...",
		},
		{
			name: "skips leading model message",
			messages: []entity.Message{
				{Role: constant.ChatMessageRoleModel, Parts: []entity.MessagePart{{Text: "hi"}}},
				{Role: constant.ChatMessageRoleUser, Parts: []entity.MessagePart{{Text: short}}},
			},
			want: short,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := derivePreview(tt.messages)
			if got != tt.want {
				t.Errorf("derivePreview() = %q, want %q", got, tt.want)
			}
		})
	}
}
