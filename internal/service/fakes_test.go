package service

import (
	"context"
	"time"

	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/contract"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/genai"

	"github.com/google/uuid"
)

// --- logger ---

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// --- repositories ---

type fakeUserRepo struct {
	user    *entity.User
	findErr error

	incrementCalls int
	resetCalls     int
	lastGeminiKey  *string
	lastGrokKey    *string
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.user, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *fakeUserRepo) UpdateApiKeys(ctx context.Context, userId uuid.UUID, geminiKey, grokKey *string) error {
	r.lastGeminiKey = geminiKey
	r.lastGrokKey = grokKey
	return nil
}

func (r *fakeUserRepo) IncrementAiUsage(ctx context.Context, userId uuid.UUID) error {
	r.incrementCalls++
	return nil
}

func (r *fakeUserRepo) ResetAiUsage(ctx context.Context, userId uuid.UUID, resetAt time.Time) error {
	r.resetCalls++
	return nil
}

type fakeChatSessionRepo struct {
	sessions map[string]*entity.ChatSession // keyed by userId|sessionId
	findErr  error

	upsertCalls  int
	lastUpsert   *entity.ChatSession
	findAllOut   []*entity.ChatSession
	findAllHits  int
	findAllSpecs []specification.Specification
}

func sessionKey(userId uuid.UUID, sessionId string) string {
	return userId.String() + "|" + sessionId
}

func (r *fakeChatSessionRepo) Upsert(ctx context.Context, session *entity.ChatSession) error {
	r.upsertCalls++
	r.lastUpsert = session
	if r.sessions == nil {
		r.sessions = map[string]*entity.ChatSession{}
	}
	r.sessions[sessionKey(session.UserId, session.SessionId)] = session
	return nil
}

func (r *fakeChatSessionRepo) DeleteByUserAndSession(ctx context.Context, userId uuid.UUID, sessionId string) (bool, error) {
	key := sessionKey(userId, sessionId)
	if _, ok := r.sessions[key]; !ok {
		return false, nil
	}
	delete(r.sessions, key)
	return true, nil
}

func (r *fakeChatSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var userId uuid.UUID
	var sid string
	for _, s := range specs {
		switch v := s.(type) {
		case specification.UserOwnedBy:
			userId = v.UserID
		case specification.BySessionKey:
			sid = v.SessionID
		}
	}
	if sess, ok := r.sessions[sessionKey(userId, sid)]; ok {
		return sess, nil
	}
	return nil, nil
}

func (r *fakeChatSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.findAllHits++
	r.findAllSpecs = specs
	return r.findAllOut, nil
}

func (r *fakeChatSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessions)), nil
}

// --- unit of work ---

type fakeUow struct {
	users    *fakeUserRepo
	sessions *fakeChatSessionRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository               { return u.users }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository { return u.sessions }

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func newFakeFactory() (*fakeFactory, *fakeUserRepo, *fakeChatSessionRepo) {
	users := &fakeUserRepo{}
	sessions := &fakeChatSessionRepo{sessions: map[string]*entity.ChatSession{}}
	return &fakeFactory{uow: &fakeUow{users: users, sessions: sessions}}, users, sessions
}

// --- generation client ---

type fakeGenClient struct {
	lastRequest *genai.GenerateRequest
	result      *genai.GenerateResult
	err         error
}

func (c *fakeGenClient) GenerateChatResponse(ctx context.Context, req *genai.GenerateRequest) (*genai.GenerateResult, error) {
	c.lastRequest = req
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

// --- publisher ---

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}
