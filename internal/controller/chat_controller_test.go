package controller

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubChatService struct{}

func (stubChatService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.ChatMessageRequest) (*dto.ChatMessageReply, error) {
	return &dto.ChatMessageReply{}, nil
}

func (stubChatService) UpdateCredentials(ctx context.Context, userId uuid.UUID, request *dto.UpdateCredentialsRequest) error {
	return nil
}

type stubHistoryService struct{}

func (stubHistoryService) Save(ctx context.Context, userId uuid.UUID, request *dto.SaveHistoryRequest) (*dto.SaveHistoryResponse, error) {
	return &dto.SaveHistoryResponse{NewSessionId: uuid.New().String()}, nil
}

func (stubHistoryService) List(ctx context.Context, userId uuid.UUID) ([]*dto.SessionSummaryResponse, error) {
	return nil, nil
}

func (stubHistoryService) Get(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.GetSessionResponse, error) {
	return &dto.GetSessionResponse{SessionId: sessionId}, nil
}

func (stubHistoryService) Delete(ctx context.Context, userId uuid.UUID, sessionId string) error {
	return nil
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	// Stand-in for the JWT middleware: identity is already resolved.
	app.Use(func(ctx *fiber.Ctx) error {
		ctx.Locals("user_id", uuid.New().String())
		return ctx.Next()
	})

	c := NewChatController(stubChatService{}, stubHistoryService{}, nil, 0)
	app.Post("/message", c.SendMessage)
	app.Post("/history", c.SaveHistory)
	return app
}

func TestMalformedBodyReturnsBadRequest(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "history sent as string",
			path: "/message",
			body: `{"message":"hi","sessionId":"s1","history":"not-an-array"}`,
		},
		{
			name: "messages sent as object",
			path: "/history",
			body: `{"sessionId":"s1","messages":{"role":"user"}}`,
		},
		{
			name: "truncated json",
			path: "/message",
			body: `{"message":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestWellFormedBodyPasses(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/message",
		strings.NewReader(`{"message":"hi","sessionId":"s1","history":[]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
